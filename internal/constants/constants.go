package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration and session files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DialTimeout bounds TCP connection establishment.
	DialTimeout = 30 * time.Second

	// DialKeepAlive is the keep-alive period for pooled connections.
	DialKeepAlive = 30 * time.Second
)

// Retry limits. Retries are disabled unless a caller opts in.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 30 * time.Second
)

// HTTP headers and content types.
const (
	// HeaderAuthorization carries the bearer token.
	HeaderAuthorization = "Authorization"

	// HeaderContentType is the request/response content type header.
	HeaderContentType = "Content-Type"

	// HeaderAccept is the accepted response content type header.
	HeaderAccept = "Accept"

	// HeaderUserAgent identifies the SDK.
	HeaderUserAgent = "User-Agent"

	// HeaderRequestID correlates a request with server logs.
	HeaderRequestID = "X-Request-ID"

	// ContentTypeJSON is the JSON media type.
	ContentTypeJSON = "application/json"

	// BearerPrefix precedes the access token in the Authorization header.
	BearerPrefix = "Bearer "

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "directus-go/1.0"
)

// API path constants.
const (
	// APIPathAuthLogin for the login endpoint.
	APIPathAuthLogin = "/auth/login"

	// APIPathAuthRefresh for the token refresh endpoint.
	APIPathAuthRefresh = "/auth/refresh"

	// APIPathAuthLogout for the logout endpoint.
	APIPathAuthLogout = "/auth/logout"

	// APIPathAuthPasswordRequest for the password reset request endpoint.
	APIPathAuthPasswordRequest = "/auth/password/request"

	// APIPathAuthPasswordReset for the password reset endpoint.
	APIPathAuthPasswordReset = "/auth/password/reset"

	// APIPathItems for the items endpoint.
	APIPathItems = "/items"

	// APIPathUsers for the users endpoint.
	APIPathUsers = "/users"

	// APIPathUsersMe for the current user endpoint.
	APIPathUsersMe = "/users/me"

	// APIPathUsersInvite for the user invite endpoint.
	APIPathUsersInvite = "/users/invite"

	// APIPathUsersInviteAccept for the invite acceptance endpoint.
	APIPathUsersInviteAccept = "/users/invite/accept"

	// APIPathFiles for the files endpoint.
	APIPathFiles = "/files"
)

// Session storage keys. Each key is stored under the configured auth prefix.
const (
	// KeyRefreshToken holds the refresh token.
	KeyRefreshToken = "directus_refresh"

	// KeyAccessToken holds the access token.
	KeyAccessToken = "directus_access"

	// KeyAccessExpires holds the access token expiry as Unix seconds.
	KeyAccessExpires = "directus_access_expires"

	// SessionTTL is how long persisted session values live in stores that
	// support expiry.
	SessionTTL = 7 * 24 * time.Hour

	// RefreshModeJSON asks Directus to return the refresh token in the body.
	RefreshModeJSON = "json"
)

// Storage modes.
const (
	// StorageSession keeps session values in process memory.
	StorageSession = "session"

	// StorageCookie mirrors session values into HTTP cookies.
	StorageCookie = "cookie"

	// StorageRedis keeps session values in Redis.
	StorageRedis = "redis"

	// StorageNATS keeps session values in a NATS JetStream key-value bucket.
	StorageNATS = "nats"

	// DefaultCookiePath is the cookie path used for session cookies.
	DefaultCookiePath = "/"

	// DefaultNATSBucket is the key-value bucket used when none is configured.
	DefaultNATSBucket = "directus_sessions"
)

// File upload defaults.
const (
	// DefaultFileStorage is the Directus storage adapter used for uploads.
	DefaultFileStorage = "local"

	// MultipartBoundaryPrefix prefixes generated multipart boundaries.
	MultipartBoundaryPrefix = "-------------"
)

// Transport error codes.
const (
	// TransportErrorCode is the generic transport failure code.
	TransportErrorCode = "TRANSPORT_ERROR"

	// TransportTimeoutCode marks timeouts.
	TransportTimeoutCode = "TIMEOUT"

	// TransportCanceledCode marks requests canceled by the caller.
	TransportCanceledCode = "CANCELED"

	// TransportDNSCode marks name resolution failures.
	TransportDNSCode = "DNS_FAILURE"

	// TransportTLSCode marks TLS handshake and certificate failures.
	TransportTLSCode = "TLS_FAILURE"

	// TransportConnectionCode marks dial and connection failures.
	TransportConnectionCode = "CONNECTION_FAILURE"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// TokenPreviewLength is how many characters of a token the CLI shows.
	TokenPreviewLength = 12
)

// CLI settings.
const (
	// CLIConfigDir is the CLI directory under the user's home.
	CLIConfigDir = ".directus"

	// CLIConfigName is the config file name without extension.
	CLIConfigName = "config"

	// CLIConfigFile is the config file name.
	CLIConfigFile = "config.yml"

	// CLISessionFile holds the CLI's persisted session.
	CLISessionFile = "session.yml"

	// EnvPrefix prefixes environment variables read by the CLI.
	EnvPrefix = "DIRECTUS"

	// DefaultCLIPrefix is the auth prefix used by the CLI when none is set.
	DefaultCLIPrefix = "cli_"

	// StorageFile selects the CLI's file-backed session store.
	StorageFile = "file"

	// MinimumArgumentCount is the argument count of KEY VALUE commands.
	MinimumArgumentCount = 2
)

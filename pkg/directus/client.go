package directus

import (
	"context"
	"net/url"
	"time"

	"github.com/fivetwenty-io/directus/pkg/store"
)

// AuthClient covers the /auth and password endpoints.
//
// Operations return nil on success, a *ResponseError carrying the envelope
// when Directus rejected the call, and a *TransportError when no response
// arrived.
type AuthClient interface {
	Login(ctx context.Context, email, password, otp string) error
	Logout(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email, resetURL string) error
	ResetPassword(ctx context.Context, token, password string) error
	Refresh(ctx context.Context) error
	State(ctx context.Context) (AuthState, error)
}

// ItemsClient covers /items/{collection}.
type ItemsClient interface {
	List(ctx context.Context, collection string, query *Query) (*Envelope, error)
	Get(ctx context.Context, collection, id string) (*Envelope, error)
	Create(ctx context.Context, collection string, payload interface{}) (*Envelope, error)
	// Update patches one item, or the whole collection when id is empty.
	Update(ctx context.Context, collection, id string, payload interface{}) (*Envelope, error)
	Delete(ctx context.Context, collection, id string) (*Envelope, error)
	// DeleteMany sends ids (a slice of keys) as the JSON body of one DELETE.
	DeleteMany(ctx context.Context, collection string, ids interface{}) (*Envelope, error)
}

// UsersClient covers /users.
type UsersClient interface {
	List(ctx context.Context, query *Query) (*Envelope, error)
	Get(ctx context.Context, id string) (*Envelope, error)
	Create(ctx context.Context, payload interface{}) (*Envelope, error)
	Update(ctx context.Context, id string, payload interface{}) (*Envelope, error)
	Delete(ctx context.Context, id string) (*Envelope, error)
	DeleteMany(ctx context.Context, ids interface{}) (*Envelope, error)
	Invite(ctx context.Context, email, role, inviteURL string) error
	AcceptInvite(ctx context.Context, password, token string) error
	Me(ctx context.Context, query *Query) (*Envelope, error)
}

// FilesClient covers /files.
type FilesClient interface {
	List(ctx context.Context, query *Query) (*Envelope, error)
	Get(ctx context.Context, id string) (*Envelope, error)
	Upload(ctx context.Context, upload *FileUpload) (*Envelope, error)
	Update(ctx context.Context, id string, payload interface{}) (*Envelope, error)
	Delete(ctx context.Context, id string) (*Envelope, error)
	DeleteMany(ctx context.Context, ids interface{}) (*Envelope, error)
}

// RawClient sends requests to arbitrary API paths.
type RawClient interface {
	Get(ctx context.Context, path string, query url.Values) (*Envelope, error)
	Post(ctx context.Context, path string, payload interface{}) (*Envelope, error)
	Patch(ctx context.Context, path string, payload interface{}) (*Envelope, error)
	Delete(ctx context.Context, path string, payload interface{}) (*Envelope, error)
}

// Client is the Directus API client.
type Client interface {
	RawClient

	Auth() AuthClient
	Items() ItemsClient
	Users() UsersClient
	Files() FilesClient

	// BaseURL returns the normalized base URL.
	BaseURL() string
	// SetToken sets the static bearer token used when no session exists.
	SetToken(token string)
	// Token returns the static bearer token.
	Token() string
	// Close releases the session store's resources, if any.
	Close() error
}

// AuthState describes the session held in the store.
type AuthState string

const (
	// StateUnauthenticated means no refresh token is stored.
	StateUnauthenticated AuthState = "unauthenticated"
	// StateAuthenticated means the stored access token has not expired.
	StateAuthenticated AuthState = "authenticated"
	// StateExpired means a refresh token is stored but the access token expired.
	StateExpired AuthState = "expired"
)

// FileUpload describes a file for Files().Upload. The content is sent from
// memory.
type FileUpload struct {
	Filename string
	Content  []byte
	// ContentType is sniffed from Content when empty.
	ContentType string
	// Folder is the target folder ID; empty means the root folder.
	Folder string
	// Storage is the storage adapter; empty means "local".
	Storage string
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a directus.Client.
//
// # Authentication
//
// A session obtained through Auth().Login is kept in the configured store
// under AuthPrefix and takes precedence. Without a session, StaticToken (or a
// token set later through SetToken) is sent as the bearer token. Without
// either, requests are anonymous.
//
// # Storage
//
// AuthStorage selects the store backend. Store, when set, is used instead
// and AuthStorage is ignored. The cookie backend needs Cookie, redis needs
// Redis, and nats needs NATS.
type Config struct {
	// BaseURL is the Directus project URL (e.g., "https://cms.example.com").
	// A trailing slash is trimmed and "https://" is added when no scheme is
	// present.
	BaseURL string
	// AuthPrefix namespaces the stored session values. Required.
	AuthPrefix string
	// AuthStorage selects the session backend. Empty means session.
	AuthStorage store.Type
	// AuthDomain is the cookie domain for the cookie backend. "/" means no
	// domain attribute.
	AuthDomain string
	// StaticToken is a bearer token used when no session exists.
	StaticToken string

	// Store overrides AuthStorage with a caller-supplied store.
	Store store.Store
	// Cookie binds the cookie backend to one HTTP exchange.
	Cookie *store.CookieConfig
	// Redis configures the redis backend.
	Redis *store.RedisConfig
	// NATS configures the nats backend.
	NATS *store.NATSConfig

	// KeepHeaders keeps transport diagnostics in returned envelopes. By
	// default they are stripped.
	KeepHeaders bool

	// SkipTLSVerify disables certificate verification.
	SkipTLSVerify bool
	// OnlyIPv4 restricts name resolution and dialing to IPv4.
	OnlyIPv4 bool
	// DisableTCPFastOpen turns off TCP fast open, which is otherwise used
	// where the platform supports it.
	DisableTCPFastOpen bool
	// DisableEncoding turns off transparent response decompression.
	DisableEncoding bool

	// HTTPTimeout bounds each request. Zero uses the default.
	HTTPTimeout time.Duration
	// RetryMax is the number of retries for transient failures (>=500, 429,
	// and connection errors). Zero sends each request once.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration

	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// Debug enables request/response logging when a Logger is provided.
	Debug bool
	// Logger is an optional structured logger.
	Logger Logger
}

// DefaultConfig returns a configuration using the session store with no
// cookie domain. Its transport settings are the zero values: headers
// stripped, TLS verified, TCP fast open and response encoding on.
func DefaultConfig(baseURL, authPrefix string) *Config {
	return &Config{
		BaseURL:     baseURL,
		AuthPrefix:  authPrefix,
		AuthStorage: store.TypeSession,
		AuthDomain:  "/",
	}
}

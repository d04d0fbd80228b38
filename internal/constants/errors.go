package constants

import "errors"

// Configuration errors.
var (
	ErrNoBaseURLConfigured = errors.New("no Directus URL configured, use --url or 'directus config set url <url>'")
	ErrNoPrefixConfigured  = errors.New("no auth prefix configured, use --prefix or 'directus config set prefix <prefix>'")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
)

// Session errors.
var (
	ErrNotLoggedIn      = errors.New("not logged in. Use 'directus login' to authenticate first")
	ErrInvalidJWTFormat = errors.New("invalid JWT format")
)

// Validation errors.
var (
	ErrInvalidPayloadJSON = errors.New("payload must be valid JSON")
	ErrInvalidParam       = errors.New("invalid query parameter")
	ErrInvalidMethod      = errors.New("invalid HTTP method")
	ErrNotRegularFile     = errors.New("path is not a regular file")
)

package directus

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
)

// APIError represents one entry of a Directus error response.
type APIError struct {
	Message    string                 `json:"message"              yaml:"message"`
	Extensions map[string]interface{} `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}

// Code returns the error code from the extensions block, if any.
func (e *APIError) Code() string {
	if e.Extensions == nil {
		return ""
	}

	code, _ := e.Extensions["code"].(string)

	return code
}

// Error implements the error interface.
func (e *APIError) Error() string {
	code := e.Code()
	if code == "" {
		return e.Message
	}

	return fmt.Sprintf("%s (code: %s)", e.Message, code)
}

// NewAPIError builds an APIError with a code extension.
func NewAPIError(code, message string) APIError {
	return APIError{
		Message:    message,
		Extensions: map[string]interface{}{"code": code},
	}
}

// ResponseError represents a non-success response from the API.
type ResponseError struct {
	StatusCode int
	Errors     []APIError
	// Envelope is the response that produced the error, with headers stripped
	// according to the client configuration.
	Envelope *Envelope
}

// Error implements the error interface for ResponseError.
func (e *ResponseError) Error() string {
	switch len(e.Errors) {
	case 0:
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("multiple errors (status %d): %v", e.StatusCode, e.Errors)
	}
}

// FirstError returns the first error or nil.
func (e *ResponseError) FirstError() *APIError {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// TransportError describes a request that never produced an HTTP response.
type TransportError struct {
	// Code classifies the failure (TIMEOUT, DNS_FAILURE, TLS_FAILURE, ...).
	Code   string
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Method, e.URL, e.Code, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Common Directus error codes.
const (
	ErrorCodeForbidden            = "FORBIDDEN"
	ErrorCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrorCodeInvalidToken         = "INVALID_TOKEN"
	ErrorCodeTokenExpired         = "TOKEN_EXPIRED"
	ErrorCodeInvalidOTP           = "INVALID_OTP"
	ErrorCodeInvalidPayload       = "INVALID_PAYLOAD"
	ErrorCodeInvalidQuery         = "INVALID_QUERY"
	ErrorCodeRouteNotFound        = "ROUTE_NOT_FOUND"
	ErrorCodeRecordNotUnique      = "RECORD_NOT_UNIQUE"
	ErrorCodeRequestsExceeded     = "REQUESTS_EXCEEDED"
	ErrorCodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
	ErrorCodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"

	// ErrorCodeTransport marks the envelope entry of a request that never
	// produced a response. The entry's "reason" extension holds the
	// TransportError code.
	ErrorCodeTransport = "TRANSPORT_ERROR"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired       = errors.New("config is required")
	ErrBaseURLRequired      = errors.New("base URL is required")
	ErrAuthPrefixRequired   = errors.New("you need to specify the authorization prefix")
	ErrAuthenticationFailed = errors.New("authentication failed: session refresh was rejected")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrUploadRequired       = errors.New("file upload is required")
	ErrFilenameRequired     = errors.New("file name is required")
	ErrCollectionRequired   = errors.New("collection is required")
	ErrIDRequired           = errors.New("id is required")
	ErrNoData               = errors.New("response has no data")
)

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return hasStatusOrCode(err, http.StatusNotFound, ErrorCodeRouteNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrAuthenticationFailed) || errors.Is(err, ErrNotAuthenticated) {
		return true
	}

	return hasStatusOrCode(err, http.StatusUnauthorized,
		ErrorCodeInvalidCredentials, ErrorCodeInvalidToken, ErrorCodeTokenExpired)
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return hasStatusOrCode(err, http.StatusForbidden, ErrorCodeForbidden)
}

// IsTransport checks if the error is a transport failure.
func IsTransport(err error) bool {
	transportErr := &TransportError{}

	return errors.As(err, &transportErr)
}

func hasStatusOrCode(err error, status int, codes ...string) bool {
	respErr := &ResponseError{}
	if errors.As(err, &respErr) {
		if respErr.StatusCode == status {
			return true
		}

		for _, apiErr := range respErr.Errors {
			if slices.Contains(codes, apiErr.Code()) {
				return true
			}
		}

		return false
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return slices.Contains(codes, apiErr.Code())
	}

	return false
}

// ParseResponseError parses an error response from JSON.
func ParseResponseError(statusCode int, data []byte) (*ResponseError, error) {
	var body struct {
		Errors []APIError `json:"errors"`
	}

	err := json.Unmarshal(data, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response error: %w", err)
	}

	return &ResponseError{StatusCode: statusCode, Errors: body.Errors}, nil
}

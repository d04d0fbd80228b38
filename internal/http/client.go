// Package http is the transport layer of the Directus client: request
// building, token attachment, and response capture.
//
// Unlike a typical API client the transport does not turn 4xx and 5xx
// responses into Go errors. Directus error bodies are part of the normal
// result and are decoded by the caller.
package http

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/fivetwenty-io/directus/pkg/directus"
)

// TokenSource resolves the bearer token for a request. GetToken may refresh
// an expired session; PeekToken returns the current token as stored.
type TokenSource interface {
	GetToken(ctx context.Context) (string, error)
	PeekToken(ctx context.Context) (string, error)
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	// Upload, when set, is sent as multipart/form-data instead of Body.
	Upload *directus.FileUpload
	// BypassAuth attaches the stored token without refreshing it.
	BypassAuth bool
	// SkipAuth sends the request without a token.
	SkipAuth bool
	Headers  map[string]string
}

// Response is a captured HTTP response. Meta is populated for every request
// that was sent, including failed ones.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Meta       *directus.ResponseMeta
}

// Client is the HTTP client for the Directus API.
type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
	tokens     TokenSource
	logger     directus.Logger
	debug      bool
	userAgent  string

	transport    TransportConfig
	timeout      time.Duration
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger directus.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig enables retries for 5xx, 429 and connection errors.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = maxRetries
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithTransportConfig sets TLS verification, IPv4-only dialing, TCP fast open
// and response encoding.
func WithTransportConfig(config TransportConfig) Option {
	return func(c *Client) {
		c.transport = config
	}
}

// NewClient creates a new HTTP client. tokens may be nil for anonymous use.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokens:       tokens,
		userAgent:    constants.DefaultUserAgent,
		transport:    DefaultTransportConfig(),
		timeout:      constants.DefaultHTTPTimeout,
		retryMax:     constants.DefaultRetryMax,
		retryWaitMin: constants.DefaultRetryWaitMin,
		retryWaitMax: constants.DefaultRetryWaitMax,
	}

	for _, opt := range opts {
		opt(client)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Transport = newTransport(client.transport)
	retryClient.HTTPClient.Timeout = client.timeout
	retryClient.RetryMax = client.retryMax
	retryClient.RetryWaitMin = client.retryWaitMin
	retryClient.RetryWaitMax = client.retryWaitMax
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	if client.debug && client.logger != nil && client.retryMax > 0 {
		retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	client.httpClient = retryClient

	return client
}

// BaseURL returns the base URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs an HTTP request.
//
// A request that fails below HTTP returns a Response carrying Meta together
// with a *directus.TransportError. Any other error means the request was not
// sent.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	requestID := httpReq.Header.Get(constants.HeaderRequestID)
	meta := &directus.ResponseMeta{
		Method:    httpReq.Method,
		URL:       httpReq.URL.String(),
		RequestID: requestID,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     httpReq.Method,
			"url":        meta.URL,
			"request_id": requestID,
			"bypass":     req.BypassAuth,
		})
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	meta.Duration = time.Since(start)

	if err != nil {
		transportErr := &directus.TransportError{
			Code:   classifyTransportError(err),
			Method: meta.Method,
			URL:    meta.URL,
			Err:    err,
		}

		if c.logger != nil {
			c.logger.Warn("HTTP request failed", map[string]interface{}{
				"method":   meta.Method,
				"url":      meta.URL,
				"code":     transportErr.Code,
				"duration": meta.Duration.String(),
				"error":    err.Error(),
			})
		}

		return &Response{Meta: meta}, transportErr
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		transportErr := &directus.TransportError{
			Code:   classifyTransportError(err),
			Method: meta.Method,
			URL:    meta.URL,
			Err:    fmt.Errorf("reading response body: %w", err),
		}

		return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Meta: meta}, transportErr
	}

	meta.Duration = time.Since(start)
	meta.StatusCode = resp.StatusCode
	meta.Header = resp.Header

	if serverID := resp.Header.Get(constants.HeaderRequestID); serverID != "" {
		meta.RequestID = serverID
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":     resp.StatusCode,
			"duration":   meta.Duration.String(),
			"bytes":      len(body),
			"request_id": meta.RequestID,
		})
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Meta:       meta,
	}, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPatch,
		Path:   path,
		Body:   body,
	})
}

// Delete performs a DELETE request. body may be nil.
func (c *Client) Delete(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   path,
		Body:   body,
	})
}

func (c *Client) buildRequest(ctx context.Context, req *Request) (*retryablehttp.Request, error) {
	fullURL := BuildURL(c.baseURL, req.Path, req.Query)

	var (
		body        []byte
		contentType string
	)

	switch {
	case req.Upload != nil:
		encoded, multipartType, err := EncodeMultipart(req.Upload)
		if err != nil {
			return nil, fmt.Errorf("encoding upload: %w", err)
		}

		body = encoded
		contentType = multipartType

	case req.Body != nil:
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}

		body = encoded
		contentType = constants.ContentTypeJSON
	}

	var rawBody interface{}
	if body != nil {
		rawBody = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, rawBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	httpReq.Header.Set(constants.HeaderUserAgent, c.userAgent)
	httpReq.Header.Set(constants.HeaderRequestID, uuid.NewString())

	if contentType != "" {
		httpReq.Header.Set(constants.HeaderContentType, contentType)
	}

	if !req.SkipAuth {
		token, err := c.resolveToken(ctx, req.BypassAuth)
		if err != nil {
			return nil, err
		}

		if token != "" {
			httpReq.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+token)
		}
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}

func (c *Client) resolveToken(ctx context.Context, bypass bool) (string, error) {
	if c.tokens == nil {
		return "", nil
	}

	var (
		token string
		err   error
	)

	if bypass {
		token, err = c.tokens.PeekToken(ctx)
	} else {
		token, err = c.tokens.GetToken(ctx)
	}

	if err != nil {
		return "", fmt.Errorf("failed to get auth token: %w", err)
	}

	return token, nil
}

// BuildURL joins baseURL and path and appends query.
func BuildURL(baseURL, path string, query url.Values) string {
	return AppendQuery(baseURL+path, query)
}

// AppendQuery appends query to target, using "&" when target already carries
// a query string.
func AppendQuery(target string, query url.Values) string {
	if len(query) == 0 {
		return target
	}

	separator := "?"
	if strings.Contains(target, "?") {
		separator = "&"
	}

	return target + separator + query.Encode()
}

func classifyTransportError(err error) string {
	var (
		dnsErr      *net.DNSError
		certErr     *tls.CertificateVerificationError
		unknownAuth x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		recordErr   tls.RecordHeaderError
		netErr      net.Error
		opErr       *net.OpError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return constants.TransportCanceledCode
	case errors.Is(err, context.DeadlineExceeded):
		return constants.TransportTimeoutCode
	case errors.As(err, &dnsErr):
		return constants.TransportDNSCode
	case errors.As(err, &certErr), errors.As(err, &unknownAuth),
		errors.As(err, &hostnameErr), errors.As(err, &recordErr):
		return constants.TransportTLSCode
	case errors.As(err, &netErr) && netErr.Timeout():
		return constants.TransportTimeoutCode
	case errors.As(err, &opErr):
		return constants.TransportConnectionCode
	default:
		return constants.TransportErrorCode
	}
}

// leveledLogger adapts a directus.Logger to retryablehttp's leveled logger.
type leveledLogger struct {
	logger directus.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fieldsFromPairs(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fieldsFromPairs(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fieldsFromPairs(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fieldsFromPairs(keysAndValues))
}

func fieldsFromPairs(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}

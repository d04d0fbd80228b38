package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/directus/internal/auth"
	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/fivetwenty-io/directus/internal/http"
	"github.com/fivetwenty-io/directus/pkg/directus"
	"github.com/fivetwenty-io/directus/pkg/store"
)

// Client implements the directus.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager *auth.SessionTokenManager
	store        store.Store
	baseURL      string
	logger       directus.Logger
	stripHeaders bool

	// Resource clients
	auth  *AuthClient
	items *ItemsClient
	users *UsersClient
	files *FilesClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *directus.Config) []http.Option {
	httpOpts := []http.Option{
		http.WithTransportConfig(http.TransportConfig{
			SkipTLSVerify:      config.SkipTLSVerify,
			OnlyIPv4:           config.OnlyIPv4,
			DisableTCPFastOpen: config.DisableTCPFastOpen,
			DisableEncoding:    config.DisableEncoding,
		}),
	}

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a Directus client whose session lives in sessionStore. A nil
// store means a fresh in-process session store. config.BaseURL is expected to
// be normalized already.
func New(config *directus.Config, sessionStore store.Store) (*Client, error) {
	if config == nil {
		return nil, directus.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, directus.ErrBaseURLRequired
	}

	if config.AuthPrefix == "" {
		return nil, directus.ErrAuthPrefixRequired
	}

	if sessionStore == nil {
		sessionStore = store.NewSessionStore()
	}

	httpOpts := createHTTPClientOptions(config)

	// The refresh exchange runs on its own transport so it never resolves a
	// token through the manager it serves.
	refresher := auth.NewHTTPRefresher(http.NewClient(config.BaseURL, nil, httpOpts...))

	tokenManager := auth.NewSessionTokenManager(sessionStore, config.AuthPrefix, refresher,
		auth.WithLogger(config.Logger),
		auth.WithStaticToken(config.StaticToken),
	)

	return NewWithTokenManager(config, sessionStore, tokenManager), nil
}

// NewWithTokenManager creates a client around an existing token manager.
func NewWithTokenManager(config *directus.Config, sessionStore store.Store, tokenManager *auth.SessionTokenManager) *Client {
	client := &Client{
		httpClient:   http.NewClient(config.BaseURL, tokenManager, createHTTPClientOptions(config)...),
		tokenManager: tokenManager,
		store:        sessionStore,
		baseURL:      config.BaseURL,
		logger:       config.Logger,
		stripHeaders: !config.KeepHeaders,
	}

	client.initializeResourceClients()

	return client
}

func (c *Client) initializeResourceClients() {
	c.auth = NewAuthClient(c)
	c.items = NewItemsClient(c)
	c.users = NewUsersClient(c)
	c.files = NewFilesClient(c)
}

// dispatch sends req and folds the outcome into an envelope. Only failures
// that prevent the request from being sent are returned as Go errors: a
// canceled context, a token that could not be resolved, or a body that could
// not be encoded.
func (c *Client) dispatch(ctx context.Context, req *http.Request) (*directus.Envelope, error) {
	err := ctx.Err()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		var transportErr *directus.TransportError
		if !errors.As(err, &transportErr) || resp == nil {
			return nil, err
		}

		return c.finish(directus.NewTransportEnvelope(transportErr, resp.Meta)), nil
	}

	envelope := directus.DecodeEnvelope(resp.StatusCode, resp.Body)
	envelope.Headers = resp.Meta

	return c.finish(envelope), nil
}

func (c *Client) finish(envelope *directus.Envelope) *directus.Envelope {
	if c.stripHeaders {
		envelope.Headers = nil
	}

	return envelope
}

// Get implements directus.RawClient.Get. Query pairs are merged into any
// query string already present in path.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*directus.Envelope, error) {
	return c.dispatch(ctx, &http.Request{Method: "GET", Path: path, Query: query})
}

// Post implements directus.RawClient.Post.
func (c *Client) Post(ctx context.Context, path string, payload interface{}) (*directus.Envelope, error) {
	return c.dispatch(ctx, &http.Request{Method: "POST", Path: path, Body: payload})
}

// Patch implements directus.RawClient.Patch.
func (c *Client) Patch(ctx context.Context, path string, payload interface{}) (*directus.Envelope, error) {
	return c.dispatch(ctx, &http.Request{Method: "PATCH", Path: path, Body: payload})
}

// Delete implements directus.RawClient.Delete. A non-nil payload is sent as
// the JSON body.
func (c *Client) Delete(ctx context.Context, path string, payload interface{}) (*directus.Envelope, error) {
	return c.dispatch(ctx, &http.Request{Method: "DELETE", Path: path, Body: payload})
}

// Auth implements directus.Client.Auth.
func (c *Client) Auth() directus.AuthClient {
	return c.auth
}

// Items implements directus.Client.Items.
func (c *Client) Items() directus.ItemsClient {
	return c.items
}

// Users implements directus.Client.Users.
func (c *Client) Users() directus.UsersClient {
	return c.users
}

// Files implements directus.Client.Files.
func (c *Client) Files() directus.FilesClient {
	return c.files
}

// BaseURL implements directus.Client.BaseURL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken implements directus.Client.SetToken.
func (c *Client) SetToken(token string) {
	c.tokenManager.SetToken(token)
}

// Token implements directus.Client.Token.
func (c *Client) Token() string {
	return c.tokenManager.Token()
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() *auth.SessionTokenManager {
	return c.tokenManager
}

// Close implements directus.Client.Close.
func (c *Client) Close() error {
	err := store.Close(c.store)
	if err != nil {
		return fmt.Errorf("closing session store: %w", err)
	}

	return nil
}

func (c *Client) logDebug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

// postAction sends a POST whose response carries no data of interest and
// reports the outcome as an error.
func (c *Client) postAction(ctx context.Context, action, path string, body interface{}) error {
	envelope, err := c.Post(ctx, path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	err = envelope.Err()
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	return nil
}

package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/directus/internal/auth"
	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/fivetwenty-io/directus/internal/http"
	"github.com/fivetwenty-io/directus/pkg/directus"
)

// AuthClient implements directus.AuthClient.
type AuthClient struct {
	client *Client
}

// NewAuthClient creates a new auth client.
func NewAuthClient(client *Client) *AuthClient {
	return &AuthClient{
		client: client,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OTP      string `json:"otp,omitempty"`
}

// Login implements directus.AuthClient.Login. The request carries no bearer
// token; on success the returned session replaces the stored one.
func (c *AuthClient) Login(ctx context.Context, email, password, otp string) error {
	envelope, err := c.client.dispatch(ctx, &http.Request{
		Method:   "POST",
		Path:     constants.APIPathAuthLogin,
		Body:     &loginRequest{Email: email, Password: password, OTP: otp},
		SkipAuth: true,
	})
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	resp, err := auth.TokenFromEnvelope(envelope)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	err = c.client.tokenManager.StoreSession(ctx, resp)
	if err != nil {
		return fmt.Errorf("storing session: %w", err)
	}

	c.client.logDebug("Logged in", map[string]interface{}{
		"prefix":     c.client.tokenManager.Prefix(),
		"expires_ms": resp.Expires,
	})

	return nil
}

// Logout implements directus.AuthClient.Logout. The stored access token is
// sent as is, even when expired, and the session is cleared only once
// Directus accepted the logout.
func (c *AuthClient) Logout(ctx context.Context) error {
	session, err := c.client.tokenManager.Session(ctx)
	if err != nil {
		return fmt.Errorf("logging out: %w", err)
	}

	body := map[string]interface{}{"refresh_token": nil}
	if session != nil {
		body["refresh_token"] = session.RefreshToken
	}

	envelope, err := c.client.dispatch(ctx, &http.Request{
		Method:     "POST",
		Path:       constants.APIPathAuthLogout,
		Body:       body,
		BypassAuth: true,
	})
	if err != nil {
		return fmt.Errorf("logging out: %w", err)
	}

	err = envelope.Err()
	if err != nil {
		return fmt.Errorf("logging out: %w", err)
	}

	err = c.client.tokenManager.Clear(ctx)
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	return nil
}

// RequestPasswordReset implements directus.AuthClient.RequestPasswordReset.
// An empty resetURL lets Directus use its configured default.
func (c *AuthClient) RequestPasswordReset(ctx context.Context, email, resetURL string) error {
	body := map[string]string{"email": email}
	if resetURL != "" {
		body["reset_url"] = resetURL
	}

	return c.client.postAction(ctx, "requesting password reset", constants.APIPathAuthPasswordRequest, body)
}

// ResetPassword implements directus.AuthClient.ResetPassword.
func (c *AuthClient) ResetPassword(ctx context.Context, token, password string) error {
	return c.client.postAction(ctx, "resetting password", constants.APIPathAuthPasswordReset, map[string]string{
		"token":    token,
		"password": password,
	})
}

// Refresh implements directus.AuthClient.Refresh.
func (c *AuthClient) Refresh(ctx context.Context) error {
	err := c.client.tokenManager.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refreshing session: %w", err)
	}

	return nil
}

// State implements directus.AuthClient.State.
func (c *AuthClient) State(ctx context.Context) (directus.AuthState, error) {
	return c.client.tokenManager.State(ctx)
}

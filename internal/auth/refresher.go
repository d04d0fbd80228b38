package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/directus/internal/constants"
	directushttp "github.com/fivetwenty-io/directus/internal/http"
	"github.com/fivetwenty-io/directus/pkg/directus"
)

// Refresher exchanges a refresh token for a new session.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
}

// HTTPRefresher calls POST /auth/refresh. Its transport must not carry a token
// source of its own.
type HTTPRefresher struct {
	client *directushttp.Client
}

// NewHTTPRefresher creates a refresher over client.
func NewHTTPRefresher(client *directushttp.Client) *HTTPRefresher {
	return &HTTPRefresher{client: client}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	Mode         string `json:"mode"`
}

// Refresh performs the exchange. Any status other than 200 is returned as a
// *directus.ResponseError and a failed request as a *directus.TransportError.
func (r *HTTPRefresher) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	resp, err := r.client.Post(ctx, constants.APIPathAuthRefresh, &refreshRequest{
		RefreshToken: refreshToken,
		Mode:         constants.RefreshModeJSON,
	})
	if err != nil {
		return nil, err
	}

	return DecodeTokenResponse(resp.StatusCode, resp.Body)
}

// DecodeTokenResponse decodes a login or refresh response body.
func DecodeTokenResponse(statusCode int, body []byte) (*TokenResponse, error) {
	return TokenFromEnvelope(directus.DecodeEnvelope(statusCode, body))
}

// TokenFromEnvelope extracts the session from a login or refresh envelope.
// Any status other than 200 is an error.
func TokenFromEnvelope(envelope *directus.Envelope) (*TokenResponse, error) {
	err := envelope.Err()
	if err == nil && envelope.StatusCode != http.StatusOK {
		err = &directus.ResponseError{StatusCode: envelope.StatusCode, Errors: envelope.Errors, Envelope: envelope}
	}

	if err != nil {
		return nil, err
	}

	var data TokenResponse

	err = json.Unmarshal(envelope.Data, &data)
	if err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}

	if data.AccessToken == "" {
		return nil, fmt.Errorf("decoding token response: %w", directus.ErrNoData)
	}

	return &data, nil
}

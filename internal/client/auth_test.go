package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/directus/pkg/directus"
)

const loginResponse = `{"data":{"access_token":"A","refresh_token":"R","expires":60000}}`

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestAuthClient_Login(t *testing.T) {
	t.Parallel()

	t.Run("stores the session under the prefix", func(t *testing.T) {
		t.Parallel()

		server := NewRecordingServer(t, map[string]Route{
			"POST /auth/login": {Status: http.StatusOK, Body: loginResponse},
		})
		client, sessionStore := NewTestClient(t, server.URL)
		ctx := context.Background()

		before := time.Now().Unix()
		err := client.Auth().Login(ctx, "admin@example.com", "secret", "")
		require.NoError(t, err)

		access, ok, err := sessionStore.Get(ctx, "app_directus_access")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "A", access)

		refresh, _, err := sessionStore.Get(ctx, "app_directus_refresh")
		require.NoError(t, err)
		assert.Equal(t, "R", refresh)

		expires, _, err := sessionStore.Get(ctx, "app_directus_access_expires")
		require.NoError(t, err)

		expiresAt, err := strconv.ParseInt(expires, 10, 64)
		require.NoError(t, err)
		assert.InDelta(t, before+60, expiresAt, 2)

		requests := server.Requests()
		require.Len(t, requests, 1)
		assert.Empty(t, requests[0].Authorization)
		assert.JSONEq(t, `{"email":"admin@example.com","password":"secret"}`, string(requests[0].Body))

		state, err := client.Auth().State(ctx)
		require.NoError(t, err)
		assert.Equal(t, directus.StateAuthenticated, state)
	})

	t.Run("sends otp when given", func(t *testing.T) {
		t.Parallel()

		server := NewRecordingServer(t, map[string]Route{
			"POST /auth/login": {Status: http.StatusOK, Body: loginResponse},
		})
		client, _ := NewTestClient(t, server.URL)

		err := client.Auth().Login(context.Background(), "admin@example.com", "secret", "123456")
		require.NoError(t, err)

		requests := server.Requests()
		require.Len(t, requests, 1)
		assert.JSONEq(t, `{"email":"admin@example.com","password":"secret","otp":"123456"}`, string(requests[0].Body))
	})

	t.Run("expired session does not block login", func(t *testing.T) {
		t.Parallel()

		server := NewRecordingServer(t, map[string]Route{
			"POST /auth/login": {Status: http.StatusOK, Body: loginResponse},
		})
		client, _ := NewTestClient(t, server.URL)
		StoreTestSession(t, client, "old", "old-refresh", time.Now().Add(-time.Hour))

		err := client.Auth().Login(context.Background(), "admin@example.com", "secret", "")
		require.NoError(t, err)
		assert.Zero(t, server.Count("POST /auth/refresh"))
	})

	t.Run("rejected credentials", func(t *testing.T) {
		t.Parallel()

		server := NewRecordingServer(t, map[string]Route{
			"POST /auth/login": {
				Status: http.StatusUnauthorized,
				Body:   `{"errors":[{"message":"Invalid user credentials.","extensions":{"code":"INVALID_CREDENTIALS"}}]}`,
			},
		})
		client, sessionStore := NewTestClient(t, server.URL)

		err := client.Auth().Login(context.Background(), "admin@example.com", "wrong", "")
		require.Error(t, err)
		assert.True(t, directus.IsUnauthorized(err))

		var respErr *directus.ResponseError
		require.ErrorAs(t, err, &respErr)
		require.NotNil(t, respErr.Envelope)
		assert.Equal(t, http.StatusUnauthorized, respErr.Envelope.StatusCode)
		assert.Zero(t, sessionStore.Len())
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		server := NewRecordingServer(t, nil)
		client, _ := NewTestClient(t, server.URL)
		server.Close()

		err := client.Auth().Login(context.Background(), "admin@example.com", "secret", "")
		require.Error(t, err)
		assert.True(t, directus.IsTransport(err))
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestAuthClient_Logout(t *testing.T) {
	t.Parallel()

	t.Run("sends the expired token without refreshing", func(t *testing.T) {
		t.Parallel()

		server := NewRecordingServer(t, map[string]Route{
			"POST /auth/logout":  {Status: http.StatusNoContent},
			"POST /auth/refresh": {Status: http.StatusOK, Body: loginResponse},
		})
		client, sessionStore := NewTestClient(t, server.URL)
		StoreTestSession(t, client, "stale", "R", time.Now().Add(-time.Hour))

		err := client.Auth().Logout(context.Background())
		require.NoError(t, err)

		assert.Zero(t, server.Count("POST /auth/refresh"))

		requests := server.Requests()
		require.Len(t, requests, 1)
		assert.Equal(t, "Bearer stale", requests[0].Authorization)
		assert.JSONEq(t, `{"refresh_token":"R"}`, string(requests[0].Body))
		assert.Zero(t, sessionStore.Len())

		state, err := client.Auth().State(context.Background())
		require.NoError(t, err)
		assert.Equal(t, directus.StateUnauthenticated, state)
	})

	t.Run("without a session", func(t *testing.T) {
		t.Parallel()

		server := NewRecordingServer(t, map[string]Route{
			"POST /auth/logout": {Status: http.StatusOK},
		})
		client, _ := NewTestClient(t, server.URL)

		err := client.Auth().Logout(context.Background())
		require.NoError(t, err)

		requests := server.Requests()
		require.Len(t, requests, 1)
		assert.JSONEq(t, `{"refresh_token":null}`, string(requests[0].Body))
	})

	t.Run("rejected logout keeps the session", func(t *testing.T) {
		t.Parallel()

		server := NewRecordingServer(t, map[string]Route{
			"POST /auth/logout": {
				Status: http.StatusBadRequest,
				Body:   `{"errors":[{"message":"Invalid payload.","extensions":{"code":"INVALID_PAYLOAD"}}]}`,
			},
		})
		client, sessionStore := NewTestClient(t, server.URL)
		StoreTestSession(t, client, "A", "R", time.Now().Add(time.Hour))

		err := client.Auth().Logout(context.Background())
		require.Error(t, err)

		var respErr *directus.ResponseError
		require.ErrorAs(t, err, &respErr)
		assert.Equal(t, directus.ErrorCodeInvalidPayload, respErr.FirstError().Code())
		assert.Equal(t, 3, sessionStore.Len())
	})
}

func TestAuthClient_Password(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		call     func(context.Context, *Client) error
		route    string
		wantBody string
	}{
		{
			name: "request reset with default url",
			call: func(ctx context.Context, c *Client) error {
				return c.Auth().RequestPasswordReset(ctx, "jane@example.com", "")
			},
			route:    "POST /auth/password/request",
			wantBody: `{"email":"jane@example.com"}`,
		},
		{
			name: "request reset with custom url",
			call: func(ctx context.Context, c *Client) error {
				return c.Auth().RequestPasswordReset(ctx, "jane@example.com", "https://app.example.com/reset")
			},
			route:    "POST /auth/password/request",
			wantBody: `{"email":"jane@example.com","reset_url":"https://app.example.com/reset"}`,
		},
		{
			name: "reset",
			call: func(ctx context.Context, c *Client) error {
				return c.Auth().ResetPassword(ctx, "reset-token", "n3w-pass")
			},
			route:    "POST /auth/password/reset",
			wantBody: `{"token":"reset-token","password":"n3w-pass"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := NewRecordingServer(t, map[string]Route{
				tt.route: {Status: http.StatusNoContent},
			})
			client, _ := NewTestClient(t, server.URL)

			err := tt.call(context.Background(), client)
			require.NoError(t, err)

			requests := server.Requests()
			require.Len(t, requests, 1)
			assert.JSONEq(t, tt.wantBody, string(requests[0].Body))
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_SessionRefresh(t *testing.T) {
	t.Parallel()

	t.Run("expired token is refreshed once", func(t *testing.T) {
		t.Parallel()

		server := NewRecordingServer(t, map[string]Route{
			"POST /auth/refresh":  {Status: http.StatusOK, Body: `{"data":{"access_token":"A2","refresh_token":"R2","expires":900000}}`},
			"GET /items/articles": {Status: http.StatusOK, Body: `{"data":[]}`},
		})
		client, sessionStore := NewTestClient(t, server.URL)
		StoreTestSession(t, client, "A1", "R1", time.Now().Add(-time.Minute))

		envelope, err := client.Items().List(context.Background(), "articles", nil)
		require.NoError(t, err)
		require.NoError(t, envelope.Err())

		requests := server.Requests()
		require.Len(t, requests, 2)
		assert.Equal(t, "/auth/refresh", requests[0].Path)
		assert.Empty(t, requests[0].Authorization)

		var body map[string]string
		require.NoError(t, json.Unmarshal(requests[0].Body, &body))
		assert.Equal(t, map[string]string{"refresh_token": "R1", "mode": "json"}, body)

		assert.Equal(t, "Bearer A2", requests[1].Authorization)

		refresh, _, err := sessionStore.Get(context.Background(), "app_directus_refresh")
		require.NoError(t, err)
		assert.Equal(t, "R2", refresh)
	})

	t.Run("future expiry does not refresh", func(t *testing.T) {
		t.Parallel()

		server := NewRecordingServer(t, map[string]Route{
			"GET /items/articles": {Status: http.StatusOK, Body: `{"data":[]}`},
		})
		client, _ := NewTestClient(t, server.URL)
		StoreTestSession(t, client, "A1", "R1", time.Now().Add(time.Minute))

		_, err := client.Items().List(context.Background(), "articles", nil)
		require.NoError(t, err)
		assert.Zero(t, server.Count("POST /auth/refresh"))
		assert.Equal(t, "Bearer A1", server.Requests()[0].Authorization)
	})

	t.Run("failed refresh clears the session and sends nothing else", func(t *testing.T) {
		t.Parallel()

		server := NewRecordingServer(t, map[string]Route{
			"POST /auth/refresh": {
				Status: http.StatusUnauthorized,
				Body:   `{"errors":[{"message":"Invalid user credentials.","extensions":{"code":"INVALID_CREDENTIALS"}}]}`,
			},
			"GET /items/articles": {Status: http.StatusOK, Body: `{"data":[]}`},
		})
		client, sessionStore := NewTestClient(t, server.URL)
		StoreTestSession(t, client, "A1", "R1", time.Now().Add(-time.Minute))

		envelope, err := client.Items().List(context.Background(), "articles", nil)
		require.ErrorIs(t, err, directus.ErrAuthenticationFailed)
		assert.Nil(t, envelope)
		assert.Zero(t, server.Count("GET /items/articles"))
		assert.Zero(t, sessionStore.Len())

		// The next call resolves no token at all.
		_, err = client.Items().List(context.Background(), "articles", nil)
		require.NoError(t, err)

		requests := server.Requests()
		require.Len(t, requests, 2)
		assert.Empty(t, requests[1].Authorization)
	})

	t.Run("session takes precedence over the static token", func(t *testing.T) {
		t.Parallel()

		server := NewRecordingServer(t, map[string]Route{
			"GET /items/articles": {Status: http.StatusOK, Body: `{"data":[]}`},
		})
		client, _ := NewTestClient(t, server.URL)
		client.SetToken("static")

		_, err := client.Items().List(context.Background(), "articles", nil)
		require.NoError(t, err)

		StoreTestSession(t, client, "A1", "R1", time.Now().Add(time.Minute))

		_, err = client.Items().List(context.Background(), "articles", nil)
		require.NoError(t, err)

		requests := server.Requests()
		require.Len(t, requests, 2)
		assert.Equal(t, "Bearer static", requests[0].Authorization)
		assert.Equal(t, "Bearer A1", requests[1].Authorization)
		assert.Equal(t, "static", client.Token())
	})
}

func TestAuthClient_Refresh(t *testing.T) {
	t.Parallel()

	server := NewRecordingServer(t, map[string]Route{
		"POST /auth/refresh": {Status: http.StatusOK, Body: loginResponse},
	})
	client, _ := NewTestClient(t, server.URL)

	err := client.Auth().Refresh(context.Background())
	require.ErrorIs(t, err, directus.ErrNotAuthenticated)

	StoreTestSession(t, client, "A0", "R0", time.Now().Add(time.Hour))

	err = client.Auth().Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, server.Count("POST /auth/refresh"))

	state, err := client.Auth().State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, directus.StateAuthenticated, state)
}

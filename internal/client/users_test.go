package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/directus/pkg/directus"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestUsersClient(t *testing.T) {
	t.Parallel()

	RunEnvelopeOperations(t, []EnvelopeOperation{
		{
			Name: "list",
			Call: func(ctx context.Context, c *Client) (*directus.Envelope, error) {
				return c.Users().List(ctx, directus.NewQuery().WithSearch("jane"))
			},
			WantMethod: "GET",
			WantPath:   "/users",
			WantQuery:  "search=jane",
		},
		{
			Name: "get",
			Call: func(ctx context.Context, c *Client) (*directus.Envelope, error) {
				return c.Users().Get(ctx, "0bc7b36a-9ba9-4ce0-83f0-0a526f354e07")
			},
			WantMethod: "GET",
			WantPath:   "/users/0bc7b36a-9ba9-4ce0-83f0-0a526f354e07",
		},
		{
			Name: "create",
			Call: func(ctx context.Context, c *Client) (*directus.Envelope, error) {
				return c.Users().Create(ctx, map[string]string{"email": "jane@example.com", "password": "secret"})
			},
			WantMethod: "POST",
			WantPath:   "/users",
			WantBody:   `{"email":"jane@example.com","password":"secret"}`,
		},
		{
			Name: "update",
			Call: func(ctx context.Context, c *Client) (*directus.Envelope, error) {
				return c.Users().Update(ctx, "u1", map[string]string{"first_name": "Jane"})
			},
			WantMethod: "PATCH",
			WantPath:   "/users/u1",
			WantBody:   `{"first_name":"Jane"}`,
		},
		{
			Name: "bulk update",
			Call: func(ctx context.Context, c *Client) (*directus.Envelope, error) {
				return c.Users().Update(ctx, "", map[string]interface{}{"keys": []string{"u1"}, "data": map[string]string{"status": "suspended"}})
			},
			WantMethod: "PATCH",
			WantPath:   "/users",
			WantBody:   `{"keys":["u1"],"data":{"status":"suspended"}}`,
		},
		{
			Name: "delete",
			Call: func(ctx context.Context, c *Client) (*directus.Envelope, error) {
				return c.Users().Delete(ctx, "u1")
			},
			WantMethod: "DELETE",
			WantPath:   "/users/u1",
		},
		{
			Name: "delete many",
			Call: func(ctx context.Context, c *Client) (*directus.Envelope, error) {
				return c.Users().DeleteMany(ctx, []string{"u1", "u2"})
			},
			WantMethod: "DELETE",
			WantPath:   "/users",
			WantBody:   `["u1","u2"]`,
		},
		{
			Name: "me",
			Call: func(ctx context.Context, c *Client) (*directus.Envelope, error) {
				return c.Users().Me(ctx, directus.NewQuery().WithFields("email"))
			},
			WantMethod: "GET",
			WantPath:   "/users/me",
			WantQuery:  "fields=email",
		},
	})
}

func TestUsersClient_Invite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		inviteURL string
		status    int
		wantBody  string
		wantErr   bool
	}{
		{
			name:     "default invite url",
			status:   http.StatusNoContent,
			wantBody: `{"email":"new@example.com","role":"r1"}`,
		},
		{
			name:      "custom invite url",
			inviteURL: "https://app.example.com/accept",
			status:    http.StatusOK,
			wantBody:  `{"email":"new@example.com","role":"r1","invite_url":"https://app.example.com/accept"}`,
		},
		{
			name:     "rejected",
			status:   http.StatusForbidden,
			wantBody: `{"email":"new@example.com","role":"r1"}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			body := ""
			if tt.status == http.StatusForbidden {
				body = `{"errors":[{"message":"Forbidden","extensions":{"code":"FORBIDDEN"}}]}`
			}

			server := NewRecordingServer(t, map[string]Route{
				"POST /users/invite": {Status: tt.status, Body: body},
			})
			client, _ := NewTestClient(t, server.URL)

			err := client.Users().Invite(context.Background(), "new@example.com", "r1", tt.inviteURL)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, directus.IsForbidden(err))
			} else {
				require.NoError(t, err)
			}

			requests := server.Requests()
			require.Len(t, requests, 1)
			assert.JSONEq(t, tt.wantBody, string(requests[0].Body))
		})
	}
}

func TestUsersClient_AcceptInvite(t *testing.T) {
	t.Parallel()

	server := NewRecordingServer(t, map[string]Route{
		"POST /users/invite/accept": {Status: http.StatusNoContent},
	})
	client, _ := NewTestClient(t, server.URL)

	err := client.Users().AcceptInvite(context.Background(), "n3w-pass", "invite-token")
	require.NoError(t, err)

	requests := server.Requests()
	require.Len(t, requests, 1)
	assert.JSONEq(t, `{"token":"invite-token","password":"n3w-pass"}`, string(requests[0].Body))
}

func TestUsersClient_RequiresID(t *testing.T) {
	t.Parallel()

	client, _ := NewTestClient(t, "http://127.0.0.1:1")

	_, err := client.Users().Get(context.Background(), "")
	require.ErrorIs(t, err, directus.ErrIDRequired)

	_, err = client.Users().Delete(context.Background(), "")
	require.ErrorIs(t, err, directus.ErrIDRequired)
}

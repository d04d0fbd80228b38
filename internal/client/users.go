package client

import (
	"context"

	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/fivetwenty-io/directus/pkg/directus"
)

// UsersClient implements directus.UsersClient.
type UsersClient struct {
	client *Client
}

// NewUsersClient creates a new users client.
func NewUsersClient(client *Client) *UsersClient {
	return &UsersClient{
		client: client,
	}
}

// List implements directus.UsersClient.List.
func (c *UsersClient) List(ctx context.Context, query *directus.Query) (*directus.Envelope, error) {
	return c.client.list(ctx, constants.APIPathUsers, query)
}

// Get implements directus.UsersClient.Get.
func (c *UsersClient) Get(ctx context.Context, id string) (*directus.Envelope, error) {
	if id == "" {
		return nil, directus.ErrIDRequired
	}

	return c.client.Get(ctx, buildPath(constants.APIPathUsers, id), nil)
}

// Create implements directus.UsersClient.Create.
func (c *UsersClient) Create(ctx context.Context, payload interface{}) (*directus.Envelope, error) {
	return c.client.Post(ctx, constants.APIPathUsers, payload)
}

// Update implements directus.UsersClient.Update. An empty id patches users in
// bulk, with the keys carried in payload.
func (c *UsersClient) Update(ctx context.Context, id string, payload interface{}) (*directus.Envelope, error) {
	return c.client.Patch(ctx, buildPath(constants.APIPathUsers, id), payload)
}

// Delete implements directus.UsersClient.Delete.
func (c *UsersClient) Delete(ctx context.Context, id string) (*directus.Envelope, error) {
	if id == "" {
		return nil, directus.ErrIDRequired
	}

	return c.client.Delete(ctx, buildPath(constants.APIPathUsers, id), nil)
}

// DeleteMany implements directus.UsersClient.DeleteMany.
func (c *UsersClient) DeleteMany(ctx context.Context, ids interface{}) (*directus.Envelope, error) {
	return c.client.Delete(ctx, constants.APIPathUsers, ids)
}

// Invite implements directus.UsersClient.Invite.
func (c *UsersClient) Invite(ctx context.Context, email, role, inviteURL string) error {
	body := map[string]string{
		"email": email,
		"role":  role,
	}

	if inviteURL != "" {
		body["invite_url"] = inviteURL
	}

	return c.client.postAction(ctx, "inviting user", constants.APIPathUsersInvite, body)
}

// AcceptInvite implements directus.UsersClient.AcceptInvite.
func (c *UsersClient) AcceptInvite(ctx context.Context, password, token string) error {
	return c.client.postAction(ctx, "accepting invite", constants.APIPathUsersInviteAccept, map[string]string{
		"token":    token,
		"password": password,
	})
}

// Me implements directus.UsersClient.Me.
func (c *UsersClient) Me(ctx context.Context, query *directus.Query) (*directus.Envelope, error) {
	return c.client.list(ctx, constants.APIPathUsersMe, query)
}

package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/directus/pkg/directus"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestItemsClient(t *testing.T) {
	t.Parallel()

	RunEnvelopeOperations(t, []EnvelopeOperation{
		{
			Name: "list without query",
			Call: func(ctx context.Context, c *Client) (*directus.Envelope, error) {
				return c.Items().List(ctx, "articles", nil)
			},
			WantMethod: "GET",
			WantPath:   "/items/articles",
		},
		{
			Name: "list with query",
			Call: func(ctx context.Context, c *Client) (*directus.Envelope, error) {
				return c.Items().List(ctx, "articles", directus.NewQuery().WithFields("id", "title").WithLimit(5))
			},
			WantMethod: "GET",
			WantPath:   "/items/articles",
			WantQuery:  "fields=id%2Ctitle&limit=5",
		},
		{
			Name: "get",
			Call: func(ctx context.Context, c *Client) (*directus.Envelope, error) {
				return c.Items().Get(ctx, "articles", "15")
			},
			WantMethod: "GET",
			WantPath:   "/items/articles/15",
		},
		{
			Name: "get escapes segments",
			Call: func(ctx context.Context, c *Client) (*directus.Envelope, error) {
				return c.Items().Get(ctx, "my articles", "a/b")
			},
			WantMethod: "GET",
			WantPath:   "/items/my%20articles/a%2Fb",
		},
		{
			Name: "create",
			Call: func(ctx context.Context, c *Client) (*directus.Envelope, error) {
				return c.Items().Create(ctx, "articles", map[string]string{"title": "Hello"})
			},
			WantMethod: "POST",
			WantPath:   "/items/articles",
			WantBody:   `{"title":"Hello"}`,
		},
		{
			Name: "update one",
			Call: func(ctx context.Context, c *Client) (*directus.Envelope, error) {
				return c.Items().Update(ctx, "articles", "15", map[string]string{"title": "Updated"})
			},
			WantMethod: "PATCH",
			WantPath:   "/items/articles/15",
			WantBody:   `{"title":"Updated"}`,
		},
		{
			Name: "update collection when id is empty",
			Call: func(ctx context.Context, c *Client) (*directus.Envelope, error) {
				return c.Items().Update(ctx, "articles", "", map[string]interface{}{
					"keys": []int{1, 2},
					"data": map[string]string{"status": "draft"},
				})
			},
			WantMethod: "PATCH",
			WantPath:   "/items/articles",
			WantBody:   `{"keys":[1,2],"data":{"status":"draft"}}`,
		},
		{
			Name: "delete",
			Call: func(ctx context.Context, c *Client) (*directus.Envelope, error) {
				return c.Items().Delete(ctx, "articles", "15")
			},
			WantMethod: "DELETE",
			WantPath:   "/items/articles/15",
		},
		{
			Name: "delete many sends ids as body",
			Call: func(ctx context.Context, c *Client) (*directus.Envelope, error) {
				return c.Items().DeleteMany(ctx, "posts", []int{1, 2, 3})
			},
			WantMethod: "DELETE",
			WantPath:   "/items/posts",
			WantBody:   `[1,2,3]`,
		},
	})
}

func TestItemsClient_Validation(t *testing.T) {
	t.Parallel()

	client, _ := NewTestClient(t, "http://127.0.0.1:1")
	ctx := context.Background()

	tests := []struct {
		name    string
		call    func() (*directus.Envelope, error)
		wantErr error
	}{
		{"list without collection", func() (*directus.Envelope, error) { return client.Items().List(ctx, "", nil) }, directus.ErrCollectionRequired},
		{"get without collection", func() (*directus.Envelope, error) { return client.Items().Get(ctx, "", "1") }, directus.ErrCollectionRequired},
		{"get without id", func() (*directus.Envelope, error) { return client.Items().Get(ctx, "articles", "") }, directus.ErrIDRequired},
		{"create without collection", func() (*directus.Envelope, error) { return client.Items().Create(ctx, "", nil) }, directus.ErrCollectionRequired},
		{"update without collection", func() (*directus.Envelope, error) { return client.Items().Update(ctx, "", "1", nil) }, directus.ErrCollectionRequired},
		{"delete without id", func() (*directus.Envelope, error) { return client.Items().Delete(ctx, "articles", "") }, directus.ErrIDRequired},
		{"delete many without collection", func() (*directus.Envelope, error) { return client.Items().DeleteMany(ctx, "", []int{1}) }, directus.ErrCollectionRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			envelope, err := tt.call()
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, envelope)
		})
	}
}

func TestItemsClient_UpstreamErrorIsNotAGoError(t *testing.T) {
	t.Parallel()

	server := NewRecordingServer(t, map[string]Route{
		"GET /items/secret": {
			Status: 403,
			Body:   `{"errors":[{"message":"You don't have permission to access this.","extensions":{"code":"FORBIDDEN"}}]}`,
		},
	})
	client, _ := NewTestClient(t, server.URL)

	envelope, err := client.Items().List(context.Background(), "secret", nil)
	require.NoError(t, err)
	require.Len(t, envelope.Errors, 1)
	assert.Equal(t, directus.ErrorCodeForbidden, envelope.Errors[0].Code())
	assert.True(t, directus.IsForbidden(envelope.Err()))
}

func TestItemsClient_UnencodableFilter(t *testing.T) {
	t.Parallel()

	server := NewRecordingServer(t, nil)
	client, _ := NewTestClient(t, server.URL)

	query := directus.NewQuery().WithFilter("title", "_eq", make(chan int))

	_, err := client.Items().List(context.Background(), "articles", query)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoding query")
	assert.Empty(t, server.Requests())
}

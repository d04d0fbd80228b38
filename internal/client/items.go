package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/fivetwenty-io/directus/pkg/directus"
)

// ItemsClient implements directus.ItemsClient.
type ItemsClient struct {
	client *Client
}

// NewItemsClient creates a new items client.
func NewItemsClient(client *Client) *ItemsClient {
	return &ItemsClient{
		client: client,
	}
}

// List implements directus.ItemsClient.List.
func (c *ItemsClient) List(ctx context.Context, collection string, query *directus.Query) (*directus.Envelope, error) {
	if collection == "" {
		return nil, directus.ErrCollectionRequired
	}

	return c.client.list(ctx, buildPath(constants.APIPathItems, collection), query)
}

// Get implements directus.ItemsClient.Get.
func (c *ItemsClient) Get(ctx context.Context, collection, id string) (*directus.Envelope, error) {
	if collection == "" {
		return nil, directus.ErrCollectionRequired
	}

	if id == "" {
		return nil, directus.ErrIDRequired
	}

	return c.client.Get(ctx, buildPath(constants.APIPathItems, collection, id), nil)
}

// Create implements directus.ItemsClient.Create.
func (c *ItemsClient) Create(ctx context.Context, collection string, payload interface{}) (*directus.Envelope, error) {
	if collection == "" {
		return nil, directus.ErrCollectionRequired
	}

	return c.client.Post(ctx, buildPath(constants.APIPathItems, collection), payload)
}

// Update implements directus.ItemsClient.Update.
func (c *ItemsClient) Update(ctx context.Context, collection, id string, payload interface{}) (*directus.Envelope, error) {
	if collection == "" {
		return nil, directus.ErrCollectionRequired
	}

	return c.client.Patch(ctx, buildPath(constants.APIPathItems, collection, id), payload)
}

// Delete implements directus.ItemsClient.Delete.
func (c *ItemsClient) Delete(ctx context.Context, collection, id string) (*directus.Envelope, error) {
	if collection == "" {
		return nil, directus.ErrCollectionRequired
	}

	if id == "" {
		return nil, directus.ErrIDRequired
	}

	return c.client.Delete(ctx, buildPath(constants.APIPathItems, collection, id), nil)
}

// DeleteMany implements directus.ItemsClient.DeleteMany.
func (c *ItemsClient) DeleteMany(ctx context.Context, collection string, ids interface{}) (*directus.Envelope, error) {
	if collection == "" {
		return nil, directus.ErrCollectionRequired
	}

	return c.client.Delete(ctx, buildPath(constants.APIPathItems, collection), ids)
}

// list sends a GET with query encoded into the URL.
func (c *Client) list(ctx context.Context, path string, query *directus.Query) (*directus.Envelope, error) {
	values, err := query.ToValues()
	if err != nil {
		return nil, fmt.Errorf("encoding query for %s: %w", path, err)
	}

	return c.Get(ctx, path, values)
}

// buildPath joins base with escaped path segments, skipping empty ones.
func buildPath(base string, segments ...string) string {
	var builder strings.Builder

	builder.WriteString(base)

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		builder.WriteString("/")
		builder.WriteString(url.PathEscape(segment))
	}

	return builder.String()
}

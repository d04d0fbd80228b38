package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/fivetwenty-io/directus/internal/http"
	"github.com/fivetwenty-io/directus/pkg/directus"
)

// FilesClient implements directus.FilesClient.
type FilesClient struct {
	client *Client
}

// NewFilesClient creates a new files client.
func NewFilesClient(client *Client) *FilesClient {
	return &FilesClient{
		client: client,
	}
}

// List implements directus.FilesClient.List.
func (c *FilesClient) List(ctx context.Context, query *directus.Query) (*directus.Envelope, error) {
	return c.client.list(ctx, constants.APIPathFiles, query)
}

// Get implements directus.FilesClient.Get.
func (c *FilesClient) Get(ctx context.Context, id string) (*directus.Envelope, error) {
	if id == "" {
		return nil, directus.ErrIDRequired
	}

	return c.client.Get(ctx, buildPath(constants.APIPathFiles, id), nil)
}

// Upload implements directus.FilesClient.Upload. The file is sent as
// multipart/form-data.
func (c *FilesClient) Upload(ctx context.Context, upload *directus.FileUpload) (*directus.Envelope, error) {
	if upload == nil {
		return nil, directus.ErrUploadRequired
	}

	envelope, err := c.client.dispatch(ctx, &http.Request{
		Method: "POST",
		Path:   constants.APIPathFiles,
		Upload: upload,
	})
	if err != nil {
		return nil, fmt.Errorf("uploading file %q: %w", upload.Filename, err)
	}

	return envelope, nil
}

// Update implements directus.FilesClient.Update.
func (c *FilesClient) Update(ctx context.Context, id string, payload interface{}) (*directus.Envelope, error) {
	if id == "" {
		return nil, directus.ErrIDRequired
	}

	return c.client.Patch(ctx, buildPath(constants.APIPathFiles, id), payload)
}

// Delete implements directus.FilesClient.Delete.
func (c *FilesClient) Delete(ctx context.Context, id string) (*directus.Envelope, error) {
	if id == "" {
		return nil, directus.ErrIDRequired
	}

	return c.client.Delete(ctx, buildPath(constants.APIPathFiles, id), nil)
}

// DeleteMany implements directus.FilesClient.DeleteMany.
func (c *FilesClient) DeleteMany(ctx context.Context, ids interface{}) (*directus.Envelope, error) {
	return c.client.Delete(ctx, constants.APIPathFiles, ids)
}

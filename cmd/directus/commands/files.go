package commands

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/fivetwenty-io/directus/pkg/directus"
)

// NewFilesCommand creates the files command group.
func NewFilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "files",
		Aliases: []string{"file"},
		Short:   "Manage files",
		Long:    "List, read, upload, and delete Directus files",
	}

	cmd.AddCommand(newFilesListCommand())
	cmd.AddCommand(newFilesGetCommand())
	cmd.AddCommand(newFilesUploadCommand())
	cmd.AddCommand(newFilesDeleteCommand())

	return cmd
}

func newFilesListCommand() *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List files",
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := flags.build(cmd)
			if err != nil {
				return err
			}

			return withClient(cmd.Context(), func(client directus.Client) error {
				envelope, err := client.Files().List(cmd.Context(), query)
				if err != nil {
					return err
				}

				return renderEnvelope(cmd.OutOrStdout(), envelope)
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func newFilesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Get file metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(client directus.Client) error {
				envelope, err := client.Files().Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				return renderEnvelope(cmd.OutOrStdout(), envelope)
			})
		},
	}
}

func newFilesUploadCommand() *cobra.Command {
	var (
		folder  string
		storage string
		name    string
	)

	cmd := &cobra.Command{
		Use:   "upload PATH",
		Short: "Upload a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upload, err := readUpload(args[0])
			if err != nil {
				return err
			}

			upload.Folder = folder
			upload.Storage = storage

			if name != "" {
				upload.Filename = name
			}

			return withClient(cmd.Context(), func(client directus.Client) error {
				envelope, err := client.Files().Upload(cmd.Context(), upload)
				if err != nil {
					return err
				}

				return renderEnvelope(cmd.OutOrStdout(), envelope)
			})
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "target folder ID")
	cmd.Flags().StringVar(&storage, "storage", "", "storage adapter (default local)")
	cmd.Flags().StringVar(&name, "name", "", "download file name (default is the base name of PATH)")

	return cmd
}

func newFilesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID [ID...]",
		Short: "Delete files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(client directus.Client) error {
				var (
					envelope *directus.Envelope
					err      error
				)

				if len(args) == 1 {
					envelope, err = client.Files().Delete(cmd.Context(), args[0])
				} else {
					envelope, err = client.Files().DeleteMany(cmd.Context(), args)
				}

				if err != nil {
					return err
				}

				return renderEnvelope(cmd.OutOrStdout(), envelope)
			})
		},
	}
}

// readUpload loads a local file into an upload.
func readUpload(path string) (*directus.FileUpload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", constants.ErrNotRegularFile, path)
	}

	// #nosec G304 -- the path is given by the user on purpose
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return &directus.FileUpload{
		Filename:    filepath.Base(path),
		Content:     content,
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
	}, nil
}

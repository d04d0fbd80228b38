package commands

import (
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/directus/pkg/directus"
)

// NewItemsCommand creates the items command group.
func NewItemsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Manage collection items",
		Long:    "List, read, create, update, and delete items of a Directus collection",
	}

	cmd.AddCommand(newItemsListCommand())
	cmd.AddCommand(newItemsGetCommand())
	cmd.AddCommand(newItemsCreateCommand())
	cmd.AddCommand(newItemsUpdateCommand())
	cmd.AddCommand(newItemsDeleteCommand())

	return cmd
}

func newItemsListCommand() *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:   "list COLLECTION",
		Short: "List items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := flags.build(cmd)
			if err != nil {
				return err
			}

			return withClient(cmd.Context(), func(client directus.Client) error {
				envelope, err := client.Items().List(cmd.Context(), args[0], query)
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

func newItemsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get COLLECTION ID",
		Short: "Get an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(client directus.Client) error {
				envelope, err := client.Items().Get(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}

				return renderEnvelope(cmd.OutOrStdout(), envelope)
			})
		},
	}
}

func newItemsCreateCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "create COLLECTION",
		Short: "Create one or more items",
		Long:  "Create an item from a JSON object, or several items from a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parsePayload(data)
			if err != nil {
				return err
			}

			return withClient(cmd.Context(), func(client directus.Client) error {
				envelope, err := client.Items().Create(cmd.Context(), args[0], payload)
				if err != nil {
					return err
				}

				return renderEnvelope(cmd.OutOrStdout(), envelope)
			})
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "item data as JSON")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func newItemsUpdateCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "update COLLECTION [ID]",
		Short: "Update an item",
		Long: `Update an item with a partial JSON object.

Without ID the whole collection is patched and --data must carry
{"keys": [...], "data": {...}} or {"query": {...}, "data": {...}}.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parsePayload(data)
			if err != nil {
				return err
			}

			id := ""
			if len(args) > 1 {
				id = args[1]
			}

			return withClient(cmd.Context(), func(client directus.Client) error {
				envelope, err := client.Items().Update(cmd.Context(), args[0], id, payload)
				if err != nil {
					return err
				}

				return renderEnvelope(cmd.OutOrStdout(), envelope)
			})
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "changes as JSON")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func newItemsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete COLLECTION ID [ID...]",
		Short: "Delete items",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(client directus.Client) error {
				var (
					envelope *directus.Envelope
					err      error
				)

				if len(args) == 2 {
					envelope, err = client.Items().Delete(cmd.Context(), args[0], args[1])
				} else {
					envelope, err = client.Items().DeleteMany(cmd.Context(), args[0], args[1:])
				}

				if err != nil {
					return err
				}

				return renderEnvelope(cmd.OutOrStdout(), envelope)
			})
		},
	}
}

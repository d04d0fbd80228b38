package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/directus/pkg/directus"
)

// NewUsersCommand creates the users command group.
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage users",
		Long:    "List, read, and invite Directus users",
	}

	cmd.AddCommand(newUsersListCommand())
	cmd.AddCommand(newUsersGetCommand())
	cmd.AddCommand(newUsersMeCommand())
	cmd.AddCommand(newUsersInviteCommand())
	cmd.AddCommand(newUsersAcceptInviteCommand())

	return cmd
}

func newUsersListCommand() *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := flags.build(cmd)
			if err != nil {
				return err
			}

			return withClient(cmd.Context(), func(client directus.Client) error {
				envelope, err := client.Users().List(cmd.Context(), query)
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

func newUsersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Get a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(client directus.Client) error {
				envelope, err := client.Users().Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				return renderEnvelope(cmd.OutOrStdout(), envelope)
			})
		},
	}
}

func newUsersMeCommand() *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := flags.build(cmd)
			if err != nil {
				return err
			}

			return withClient(cmd.Context(), func(client directus.Client) error {
				envelope, err := client.Users().Me(cmd.Context(), query)
				if err != nil {
					return err
				}

				return renderEnvelope(cmd.OutOrStdout(), envelope)
			})
		},
	}

	cmd.Flags().StringSliceVar(&flags.fields, "fields", nil, "fields to return")

	return cmd
}

func newUsersInviteCommand() *cobra.Command {
	var inviteURL string

	cmd := &cobra.Command{
		Use:   "invite EMAIL ROLE",
		Short: "Invite a user",
		Long:  "Send an invitation email for a new user with the given role ID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(client directus.Client) error {
				err := client.Users().Invite(cmd.Context(), args[0], args[1], inviteURL)
				if err != nil {
					return fmt.Errorf("failed to invite %s: %w", args[0], err)
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Invited %s\n", args[0])

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&inviteURL, "invite-url", "", "URL the invitation email links to")

	return cmd
}

func newUsersAcceptInviteCommand() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "accept-invite TOKEN",
		Short: "Accept an invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(client directus.Client) error {
				err := client.Users().AcceptInvite(cmd.Context(), password, args[0])
				if err != nil {
					return fmt.Errorf("failed to accept invite: %w", err)
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Invitation accepted")

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password for the new account")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

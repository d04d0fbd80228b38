package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/directus/pkg/directus"
)

// NewPasswordCommand creates the password command group.
func NewPasswordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Reset account passwords",
	}

	cmd.AddCommand(newPasswordRequestCommand())
	cmd.AddCommand(newPasswordResetCommand())

	return cmd
}

func newPasswordRequestCommand() *cobra.Command {
	var resetURL string

	cmd := &cobra.Command{
		Use:   "request EMAIL",
		Short: "Request a password reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(client directus.Client) error {
				err := client.Auth().RequestPasswordReset(cmd.Context(), args[0], resetURL)
				if err != nil {
					return fmt.Errorf("failed to request password reset: %w", err)
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Password reset requested for %s\n", args[0])

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&resetURL, "reset-url", "", "URL the reset email links to")

	return cmd
}

func newPasswordResetCommand() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "reset TOKEN",
		Short: "Set a new password with a reset token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(client directus.Client) error {
				err := client.Auth().ResetPassword(cmd.Context(), args[0], password)
				if err != nil {
					return fmt.Errorf("failed to reset password: %w", err)
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Password reset")

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "new password")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

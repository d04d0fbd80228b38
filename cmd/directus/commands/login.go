package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fivetwenty-io/directus/pkg/directus"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		email    string
		password string
		otp      string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to Directus",
		Long:  "Authenticate with email and password and store the session for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error

			if email == "" {
				email, err = promptLine(cmd.InOrStdin(), cmd.OutOrStdout(), "Email: ")
				if err != nil {
					return err
				}
			}

			if password == "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "Password: ")

				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}

				password = string(bytePassword)

				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}

			return withClient(cmd.Context(), func(client directus.Client) error {
				err := client.Auth().Login(cmd.Context(), email, password, otp)
				if err != nil {
					return fmt.Errorf("login failed: %w", err)
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s\n", client.BaseURL(), email)

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&otp, "otp", "", "one-time password for two-factor authentication")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from Directus",
		Long:  "Invalidate the stored refresh token and clear the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(client directus.Client) error {
				err := client.Auth().Logout(cmd.Context())
				if err != nil {
					return fmt.Errorf("logout failed: %w", err)
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

				return nil
			})
		},
	}
}

func promptLine(in io.Reader, out io.Writer, prompt string) (string, error) {
	if in == nil {
		in = os.Stdin
	}

	_, _ = fmt.Fprint(out, prompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

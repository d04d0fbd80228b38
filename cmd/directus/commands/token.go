package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/directus/internal/auth"
	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/fivetwenty-io/directus/pkg/directus"
	"github.com/fivetwenty-io/directus/pkg/store"
)

// TokenStatus describes the stored session.
type TokenStatus struct {
	State        directus.AuthState `json:"state"                   yaml:"state"`
	AccessToken  string             `json:"access_token,omitempty"  yaml:"access_token,omitempty"`
	RefreshToken string             `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	ExpiresAt    *time.Time         `json:"expires_at,omitempty"    yaml:"expires_at,omitempty"`
	ExpiresIn    string             `json:"expires_in,omitempty"    yaml:"expires_in,omitempty"`
	UserID       string             `json:"user_id,omitempty"       yaml:"user_id,omitempty"`
	Role         string             `json:"role,omitempty"          yaml:"role,omitempty"`
	AdminAccess  bool               `json:"admin_access"            yaml:"admin_access"`
	Issuer       string             `json:"issuer,omitempty"        yaml:"issuer,omitempty"`
}

// NewTokenCommand creates the token command group.
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored session",
		Long:  "Commands for inspecting and refreshing the stored Directus session",
	}

	cmd.AddCommand(newTokenStatusCommand())
	cmd.AddCommand(newTokenRefreshCommand())

	return cmd
}

func newTokenStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session state and token claims",
		Long:  "Display the stored session state and the claims of the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := loadTokenStatus(cmd.Context())
			if err != nil {
				return err
			}

			return displayTokenStatus(cmd.OutOrStdout(), status)
		},
	}
}

func newTokenRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the session now",
		Long:  "Exchange the stored refresh token for a new access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(client directus.Client) error {
				err := client.Auth().Refresh(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to refresh token: %w", err)
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Session refreshed")

				return nil
			})
		},
	}
}

func loadTokenStatus(ctx context.Context) (*TokenStatus, error) {
	config := loadConfig()

	clientConfig, err := buildClientConfig(config)
	if err != nil {
		return nil, err
	}

	sessionStore, err := openSessionStore(config, clientConfig)
	if err != nil {
		return nil, err
	}

	defer func() { _ = store.Close(sessionStore) }()

	manager := auth.NewSessionTokenManager(sessionStore, config.Prefix, nil)

	state, err := manager.State(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	session, err := manager.Session(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	if session == nil {
		return nil, constants.ErrNotLoggedIn
	}

	return buildTokenStatus(state, session, time.Now())
}

func buildTokenStatus(state directus.AuthState, session *auth.Token, now time.Time) (*TokenStatus, error) {
	status := &TokenStatus{
		State:        state,
		AccessToken:  maskToken(session.AccessToken),
		RefreshToken: maskToken(session.RefreshToken),
	}

	if !session.ExpiresAt.IsZero() {
		expiresAt := session.ExpiresAt.UTC()
		status.ExpiresAt = &expiresAt
		status.ExpiresIn = session.ExpiresAt.Sub(now).Round(time.Second).String()
	}

	if session.AccessToken == "" {
		return status, nil
	}

	claims, err := decodeTokenClaims(session.AccessToken)
	if err != nil {
		return nil, err
	}

	status.UserID, _ = claims["id"].(string)
	status.Role, _ = claims["role"].(string)
	status.AdminAccess, _ = claims["admin_access"].(bool)
	status.Issuer, _ = claims["iss"].(string)

	if status.ExpiresAt == nil {
		expiresAt, err := claims.GetExpirationTime()
		if err == nil && expiresAt != nil {
			value := expiresAt.UTC()
			status.ExpiresAt = &value
			status.ExpiresIn = expiresAt.Sub(now).Round(time.Second).String()
		}
	}

	return status, nil
}

// decodeTokenClaims reads the claims of an access token without verifying
// its signature.
func decodeTokenClaims(rawToken string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(rawToken, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	return claims, nil
}

func displayTokenStatus(out io.Writer, status *TokenStatus) error {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(status)
		if err != nil {
			return fmt.Errorf("encoding token status to JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)

		err := encoder.Encode(status)
		if err != nil {
			return fmt.Errorf("failed to encode token status as YAML: %w", err)
		}

		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	_ = table.Append([]string{"State", string(status.State)})
	_ = table.Append([]string{"Access Token", valueOrNA(status.AccessToken)})
	_ = table.Append([]string{"Refresh Token", valueOrNA(status.RefreshToken)})

	if status.ExpiresAt != nil {
		_ = table.Append([]string{"Expires At", status.ExpiresAt.Format(time.RFC3339)})
		_ = table.Append([]string{"Expires In", status.ExpiresIn})
	}

	_ = table.Append([]string{"User ID", valueOrNA(status.UserID)})
	_ = table.Append([]string{"Role", valueOrNA(status.Role)})
	_ = table.Append([]string{"Admin Access", fmt.Sprint(status.AdminAccess)})

	return render(table)
}

package commands

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/directus/internal/constants"
	directushttp "github.com/fivetwenty-io/directus/internal/http"
	"github.com/fivetwenty-io/directus/pkg/directus"
)

// NewRequestCommand creates the request command.
func NewRequestCommand() *cobra.Command {
	var (
		data   string
		params []string
	)

	cmd := &cobra.Command{
		Use:   "request METHOD PATH",
		Short: "Send a request to any API path",
		Long: `Send a request to any Directus API path with the stored session.

METHOD is one of GET, POST, PATCH, DELETE.`,
		Example: `  directus request GET /server/info
  directus request POST /flows/trigger/abc --data '{"n":1}'
  directus request GET /collections --param limit=5`,
		Args: cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := strings.ToUpper(args[0])
			path := args[1]

			payload, err := parsePayload(data)
			if err != nil {
				return err
			}

			query, err := parseParams(params)
			if err != nil {
				return err
			}

			return withClient(cmd.Context(), func(client directus.Client) error {
				envelope, err := sendRaw(cmd, client, method, path, query, payload)
				if err != nil {
					return err
				}

				return renderEnvelope(cmd.OutOrStdout(), envelope)
			})
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "request body as JSON")
	cmd.Flags().StringArrayVar(&params, "param", nil, "query parameter as key=value (repeatable)")

	return cmd
}

func sendRaw(cmd *cobra.Command, client directus.RawClient, method, path string, query url.Values, payload interface{}) (*directus.Envelope, error) {
	ctx := cmd.Context()

	switch method {
	case http.MethodGet:
		return client.Get(ctx, path, query)
	case http.MethodPost:
		return client.Post(ctx, directushttp.AppendQuery(path, query), payload)
	case http.MethodPatch:
		return client.Patch(ctx, directushttp.AppendQuery(path, query), payload)
	case http.MethodDelete:
		return client.Delete(ctx, directushttp.AppendQuery(path, query), payload)
	default:
		return nil, fmt.Errorf("%w: %s", constants.ErrInvalidMethod, method)
	}
}

func parseParams(params []string) (url.Values, error) {
	values := url.Values{}

	for _, param := range params {
		key, value, ok := strings.Cut(param, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q must be key=value", constants.ErrInvalidParam, param)
		}

		values.Add(key, value)
	}

	return values, nil
}

package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/fivetwenty-io/directus/pkg/directus"
)

// queryFlags holds the query flags shared by list commands.
type queryFlags struct {
	fields []string
	filter string
	search string
	sort   []string
	limit  int
	offset int
	page   int
	meta   []string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.fields, "fields", nil, "fields to return")
	cmd.Flags().StringVar(&f.filter, "filter", "", "filter as JSON (e.g. '{\"status\":{\"_eq\":\"published\"}}')")
	cmd.Flags().StringVar(&f.search, "search", "", "search query")
	cmd.Flags().StringSliceVar(&f.sort, "sort", nil, "sort fields, prefix with - for descending")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum number of results")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "number of results to skip")
	cmd.Flags().IntVar(&f.page, "page", 0, "page number")
	cmd.Flags().StringSliceVar(&f.meta, "meta", nil, "metadata to include (total_count, filter_count, *)")
}

// build returns the query described by the flags, or nil when none is set.
// --limit is applied whenever it was given, since 0 and -1 are both
// meaningful to Directus.
func (f *queryFlags) build(cmd *cobra.Command) (*directus.Query, error) {
	query := directus.NewQuery()
	used := false

	if len(f.fields) > 0 {
		query.WithFields(f.fields...)
		used = true
	}

	if f.filter != "" {
		var filter map[string]interface{}

		err := json.Unmarshal([]byte(f.filter), &filter)
		if err != nil {
			return nil, fmt.Errorf("parsing --filter: %w", constants.ErrInvalidPayloadJSON)
		}

		query.Filter = filter
		used = true
	}

	if f.search != "" {
		query.WithSearch(f.search)
		used = true
	}

	if len(f.sort) > 0 {
		query.WithSort(f.sort...)
		used = true
	}

	if cmd.Flags().Changed("limit") {
		query.WithLimit(f.limit)
		used = true
	}

	if f.offset != 0 {
		query.WithOffset(f.offset)
		used = true
	}

	if f.page != 0 {
		query.WithPage(f.page)
		used = true
	}

	if len(f.meta) > 0 {
		query.WithMeta(f.meta...)
		used = true
	}

	if !used {
		return nil, nil
	}

	return query, nil
}

// parsePayload decodes a JSON payload given on the command line.
func parsePayload(raw string) (interface{}, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var payload interface{}

	err := json.Unmarshal([]byte(raw), &payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidPayloadJSON, err)
	}

	return payload, nil
}

package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/fivetwenty-io/directus/pkg/directus"
)

// envelopeView is the decoded form of an envelope used for rendering.
type envelopeView struct {
	Data    interface{}            `json:"data,omitempty"    yaml:"data,omitempty"`
	Meta    interface{}            `json:"meta,omitempty"    yaml:"meta,omitempty"`
	Headers *directus.ResponseMeta `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// renderEnvelope writes a successful envelope in the configured output format
// and returns the envelope's error otherwise.
func renderEnvelope(out io.Writer, envelope *directus.Envelope) error {
	err := envelope.Err()
	if err != nil {
		return err
	}

	view := envelopeView{Headers: envelope.Headers}

	err = envelope.Decode(&view.Data)
	if err != nil && !errors.Is(err, directus.ErrNoData) {
		return err
	}

	err = envelope.DecodeMeta(&view.Meta)
	if err != nil && !errors.Is(err, directus.ErrNoData) {
		return err
	}

	return renderValue(out, viper.GetString("output"), view)
}

func renderValue(out io.Writer, format string, view envelopeView) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(view)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)

		return encoder.Encode(view)
	default:
		return renderTable(out, view.Data)
	}
}

// renderTable renders a list of objects with one column per field, a single
// object as property/value rows, and anything else as a single line.
func renderTable(out io.Writer, data interface{}) error {
	switch value := data.(type) {
	case nil:
		_, _ = fmt.Fprintln(out, "OK")

		return nil
	case []interface{}:
		return renderRows(out, value)
	case map[string]interface{}:
		return renderObject(out, value)
	default:
		_, _ = fmt.Fprintln(out, formatCell(value))

		return nil
	}
}

func renderRows(out io.Writer, rows []interface{}) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(out, "No results")

		return nil
	}

	columns := collectColumns(rows)
	if len(columns) == 0 {
		table := tablewriter.NewWriter(out)
		table.Header("Value")

		for _, row := range rows {
			_ = table.Append([]string{formatCell(row)})
		}

		return render(table)
	}

	header := make([]interface{}, len(columns))
	for i, column := range columns {
		header[i] = column
	}

	table := tablewriter.NewWriter(out)
	table.Header(header...)

	for _, row := range rows {
		object, _ := row.(map[string]interface{})
		cells := make([]string, len(columns))

		for i, column := range columns {
			cell, ok := object[column]
			if !ok {
				cells[i] = ""

				continue
			}

			cells[i] = formatCell(cell)
		}

		_ = table.Append(cells)
	}

	return render(table)
}

func renderObject(out io.Writer, object map[string]interface{}) error {
	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	for _, key := range keys {
		_ = table.Append([]string{key, formatCell(object[key])})
	}

	return render(table)
}

// collectColumns returns the sorted union of the rows' object keys.
func collectColumns(rows []interface{}) []string {
	seen := make(map[string]struct{})

	for _, row := range rows {
		object, ok := row.(map[string]interface{})
		if !ok {
			continue
		}

		for key := range object {
			seen[key] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}

	sort.Strings(columns)

	return columns
}

func formatCell(value interface{}) string {
	switch typed := value.(type) {
	case nil:
		return constants.NotAvailable
	case string:
		return typed
	case float64, bool:
		return fmt.Sprint(typed)
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}

		return string(encoded)
	}
}

func render(table *tablewriter.Table) error {
	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output.
	FormatCSV OutputFormat = "csv"
)

// ParseOutputFormat validates a --format flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: text, json, csv)", s)
	}
}

// Table is command output with a header and rows. Text and CSV formatters
// render it as columns; the JSON formatter encodes Data.
type Table struct {
	Header []string
	Rows   [][]string

	// Data is the value encoded for JSON output. When nil, rows are
	// encoded as objects keyed by header.
	Data interface{}
}

// Append adds a row.
func (t *Table) Append(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

func (t *Table) jsonValue() interface{} {
	if t.Data != nil {
		return t.Data
	}
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		obj := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			if i < len(row) {
				obj[h] = row[i]
			}
		}
		out = append(out, obj)
	}
	return out
}

// Formatter formats command output.
type Formatter interface {
	Format(data interface{}) ([]byte, error)
	FormatTo(w io.Writer, data interface{}) error
}

// TextFormatter formats output as plain text. Tables are aligned in
// columns.
type TextFormatter struct{}

// Format converts data to text format.
func (f *TextFormatter) Format(data interface{}) ([]byte, error) {
	var sb strings.Builder
	if err := f.FormatTo(&sb, data); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data interface{}) error {
	t, ok := data.(*Table)
	if !ok {
		_, err := fmt.Fprintf(w, "%v\n", data)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(t.Header) > 0 {
		fmt.Fprintln(tw, strings.Join(upper(t.Header), "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func upper(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// Format converts data to JSON format.
func (f *JSONFormatter) Format(data interface{}) ([]byte, error) {
	if t, ok := data.(*Table); ok {
		data = t.jsonValue()
	}
	if f.Indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data interface{}) error {
	if t, ok := data.(*Table); ok {
		data = t.jsonValue()
	}
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// CSVFormatter formats tables as CSV.
type CSVFormatter struct {
	// OmitHeader drops the header row.
	OmitHeader bool
}

// Format converts data to CSV format.
func (f *CSVFormatter) Format(data interface{}) ([]byte, error) {
	var sb strings.Builder
	if err := f.FormatTo(&sb, data); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// FormatTo writes data to writer in CSV format. Only tables can be
// written as CSV.
func (f *CSVFormatter) FormatTo(w io.Writer, data interface{}) error {
	t, ok := data.(*Table)
	if !ok {
		return fmt.Errorf("csv output is not supported for %T", data)
	}

	csvWriter := csv.NewWriter(w)
	if !f.OmitHeader && len(t.Header) > 0 {
		if err := csvWriter.Write(t.Header); err != nil {
			return err
		}
	}
	if err := csvWriter.WriteAll(t.Rows); err != nil {
		return err
	}
	return csvWriter.Error()
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TextFormatter{}
	}
}

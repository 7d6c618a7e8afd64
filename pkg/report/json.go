package report

import (
	"context"
	"encoding/json"
	"io"
)

// JSONExporter exports reports to JSON format.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes a single report as a JSON object and several reports as
// an array. No reports produce "[]".
func (e *JSONExporter) Export(ctx context.Context, reports []*Report, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(reports) == 0 {
		_, err := w.Write([]byte("[]"))
		return err
	}

	var v interface{} = reports
	if len(reports) == 1 {
		v = reports[0]
	}

	var data []byte
	var err error
	if e.Pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return NewExportError(FormatJSON, len(reports), err)
	}

	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return NewExportError(FormatJSON, len(reports), err)
	}
	return nil
}

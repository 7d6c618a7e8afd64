package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Exporter writes reports in one format.
type Exporter interface {
	Export(ctx context.Context, reports []*Report, w io.Writer) error
}

// NewExporter returns the exporter for format with its default settings.
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case FormatText, "":
		return NewTextExporter(true), nil
	case FormatJSON:
		return NewJSONExporter(true), nil
	case FormatCSV:
		return NewCSVExporter(true), nil
	default:
		return nil, fmt.Errorf("%w: %q (want text, json or csv)", ErrUnknownFormat, format)
	}
}

// Extension returns the file extension for format.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case FormatJSON:
		return ".json"
	case FormatCSV:
		return ".csv"
	default:
		return ".txt"
	}
}

// WriteFile writes a report to dir as <contract-id><ext> and returns the
// path. The file is written to a temporary name and renamed into place, so
// readers never see a partial report.
func WriteFile(ctx context.Context, dir string, r *Report, format string) (string, error) {
	exporter, err := NewExporter(format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", NewExportError(format, 1, err)
	}

	name := "report"
	if r.Contract != nil && r.Contract.ID != "" {
		name = safeName(r.Contract.ID)
	}
	path := filepath.Join(dir, name+Extension(format))

	tmp, err := os.CreateTemp(dir, "."+name+"-*.tmp")
	if err != nil {
		return "", NewExportError(format, 1, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := exporter.Export(ctx, []*Report{r}, tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", NewExportError(format, 1, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", NewExportError(format, 1, err)
	}
	return path, nil
}

// safeName maps an identifier onto characters that are safe in file names.
func safeName(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, id)
}

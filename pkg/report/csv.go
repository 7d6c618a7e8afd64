package report

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// CSVExporter exports reports to CSV format with one row per issue.
// Clauses without issues produce no rows.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Export writes the issues of every report to w.
func (e *CSVExporter) Export(ctx context.Context, reports []*Report, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(csvHeader()); err != nil {
			return NewExportError(FormatCSV, len(reports), err)
		}
	}

	for _, r := range reports {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, row := range reportRows(r) {
			if err := writer.Write(row); err != nil {
				return NewExportError(FormatCSV, len(reports), err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return NewExportError(FormatCSV, len(reports), err)
	}
	return nil
}

func csvHeader() []string {
	return []string{
		"report_id", "rule_set_version",
		"contract_id", "contract_name", "compliance",
		"clause_id", "clause_title",
		"rule_id", "severity", "issue", "regulation", "category",
		"match_count", "matched_text",
	}
}

func reportRows(r *Report) [][]string {
	if r.Contract == nil {
		return nil
	}

	var rows [][]string
	for _, clause := range r.Contract.Clauses {
		for _, issue := range clause.Issues {
			matched := make([]string, len(issue.Matches))
			for i, m := range issue.Matches {
				matched[i] = m.Text
			}
			rows = append(rows, []string{
				r.ID,
				r.RuleSetVersion,
				r.Contract.ID,
				r.Contract.Name,
				r.Summary.Compliance,
				clause.ID,
				clause.Title,
				issue.RuleID,
				string(issue.Severity),
				issue.Title,
				issue.Regulation,
				issue.Category,
				strconv.Itoa(len(issue.Matches)),
				strings.Join(matched, " | "),
			})
		}
	}
	return rows
}

package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"
)

// TextExporter writes reports for people reading a terminal.
type TextExporter struct {
	// ShowGuidance prints the guidance and compliant example of each issue.
	ShowGuidance bool
}

// NewTextExporter creates a new text exporter.
func NewTextExporter(showGuidance bool) *TextExporter {
	return &TextExporter{ShowGuidance: showGuidance}
}

// Export writes each report followed by a blank line.
func (e *TextExporter) Export(ctx context.Context, reports []*Report, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, r := range reports {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.writeReport(bw, r)
	}
	if err := bw.Flush(); err != nil {
		return NewExportError(FormatText, len(reports), err)
	}
	return nil
}

func (e *TextExporter) writeReport(w io.Writer, r *Report) {
	c := r.Contract
	if c == nil {
		return
	}
	s := r.Summary

	fmt.Fprintf(w, "Contract %s: %s\n", c.ID, c.Name)
	fmt.Fprintf(w, "  Report:      %s\n", r.ID)
	fmt.Fprintf(w, "  Generated:   %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "  Rule set:    %s\n", r.RuleSetVersion)
	fmt.Fprintf(w, "  Compliance:  %s\n", s.Compliance)
	fmt.Fprintf(w, "  Clauses:     %d (%d with issues)\n", s.Clauses, s.ClausesWithIssues)
	fmt.Fprintf(w, "  Issues:      %d (high %d, medium %d, low %d)\n",
		s.Issues, s.BySeverity.High, s.BySeverity.Medium, s.BySeverity.Low)

	for _, clause := range c.Clauses {
		if len(clause.Issues) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n  [%s] %s (%s)\n", clause.ID, clause.Title, clause.Severity.Label())
		for _, issue := range clause.Issues {
			fmt.Fprintf(w, "    - %-6s %s", issue.Severity.Label(), issue.Title)
			if issue.RuleID != "" {
				fmt.Fprintf(w, " [%s]", issue.RuleID)
			}
			if issue.Regulation != "" {
				fmt.Fprintf(w, " (%s)", issue.Regulation)
			}
			fmt.Fprintln(w)
			for _, m := range issue.Matches {
				fmt.Fprintf(w, "        matched %q at %d-%d\n", m.Text, m.Start, m.End)
			}
			if e.ShowGuidance && issue.Guidance != "" {
				fmt.Fprintf(w, "        guidance: %s\n", issue.Guidance)
			}
			if e.ShowGuidance && issue.CompliantExample != "" {
				fmt.Fprintf(w, "        compliant example: %s\n", issue.CompliantExample)
			}
		}
		if clause.SuggestedRevision != "" {
			fmt.Fprintf(w, "    suggested revision: %s\n", clause.SuggestedRevision)
		}
		for _, alt := range r.Alternatives {
			if alt.ClauseID == clause.ID {
				fmt.Fprintf(w, "    alternative: %s %q (%s, rating %.1f)\n",
					alt.StandardClauseID, alt.Title, alt.Regulation, alt.ComplianceRating)
			}
		}
	}
	fmt.Fprintln(w)
}

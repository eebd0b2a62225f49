/*
PURPOSE:
  Renders the console performance summary for a result bundle.

REQUIREMENTS:
  User-specified:
  - One row per model with reply/post cosine and semantic percentages.
  - Matrix bundles also show which model generated the character.

  Implementation-discovered:
  - Missing categories print N/A; failed rows keep their error.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (finish)
  - Shares SummaryRows with internal/output/report.go

ERROR HANDLING:
  - None. Rendering never fails.

IMPLEMENTATION RULES:
  - Use lipgloss/table; no ANSI codes are emitted on non-terminals.

USAGE:
  output.PrintSummary(os.Stdout, bundle, path)

SELF-HEALING INSTRUCTIONS:
  - If columns misalign, check cells slice length against headers.

RELATED FILES:
  - internal/output/report.go
  - internal/output/csv.go

MAINTENANCE:
  - Update headers and SummaryRow together.
*/

package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/daryltucker/persona-runner/internal/model"
)

// NotAvailable marks a score with no data behind it.
const NotAvailable = "N/A"

// Percent formats a 0-1 score, or N/A when the category has no data.
func Percent(s *model.CategorySummary, semantic bool) string {
	if s == nil {
		return NotAvailable
	}
	v := s.CosineSimilarity
	if semantic {
		v = s.SemanticSimilarity
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

// SummaryRow is one line of the performance summary.
type SummaryRow struct {
	GeneratedBy   string
	Model         string
	ReplyCosine   string
	ReplySemantic string
	PostCosine    string
	PostSemantic  string
	Error         string
}

func summaryRow(generatedBy string, s model.ModelSummary) SummaryRow {
	row := SummaryRow{GeneratedBy: generatedBy, Model: s.Model, Error: s.Error}
	var replies, posts *model.CategorySummary
	if s.Summary != nil {
		replies, posts = s.Summary.Replies, s.Summary.Posts
	}
	row.ReplyCosine = Percent(replies, false)
	row.ReplySemantic = Percent(replies, true)
	row.PostCosine = Percent(posts, false)
	row.PostSemantic = Percent(posts, true)
	return row
}

// SummaryRows lists every model outcome in bundle order. Failed models and
// failed generators keep a row carrying their error.
func SummaryRows(b *model.ResultBundle) []SummaryRow {
	var rows []SummaryRow
	for _, g := range bundleGroups(b) {
		if g.err != "" && len(g.summaries) == 0 {
			rows = append(rows, SummaryRow{
				GeneratedBy: g.generatedBy, Model: "-",
				ReplyCosine: NotAvailable, ReplySemantic: NotAvailable,
				PostCosine: NotAvailable, PostSemantic: NotAvailable,
				Error: g.err,
			})
			continue
		}
		for _, s := range g.summaries {
			rows = append(rows, summaryRow(g.generatedBy, s))
		}
	}
	return rows
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("196"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// SummaryTable renders the performance summary as a console table.
func SummaryTable(b *model.ResultBundle) string {
	rows := SummaryRows(b)
	matrix := b.IsMatrix()

	headers := []string{"Model", "Reply Cosine", "Reply Semantic", "Post Cosine", "Post Semantic", "Error"}
	if matrix {
		headers = append([]string{"Generated By", "Tested With"}, headers[1:]...)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)

	failed := make(map[int]bool)
	for i, r := range rows {
		cells := []string{r.Model, r.ReplyCosine, r.ReplySemantic, r.PostCosine, r.PostSemantic, r.Error}
		if matrix {
			cells = append([]string{r.GeneratedBy}, cells...)
		}
		if r.Error != "" {
			failed[i] = true
		}
		t.Row(cells...)
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case failed[row]:
			return errorStyle
		}
		return cellStyle
	})
	return t.String()
}

// PrintSummary writes the run header and summary table to w.
func PrintSummary(w io.Writer, b *model.ResultBundle, resultsFile string) {
	fmt.Fprintln(w, titleStyle.Render("MULTI-MODEL TEST RESULTS SUMMARY"))
	if b.IsMatrix() {
		fmt.Fprintf(w, "Username: %s\n", b.Username)
	} else if b.Character != nil {
		fmt.Fprintf(w, "Character: %s\n", b.Character.Name)
	}
	names := make([]string, len(b.Models))
	for i, m := range b.Models {
		names[i] = m.Name
	}
	fmt.Fprintf(w, "Models tested: %s\n", strings.Join(names, ", "))
	fmt.Fprintf(w, "Test timestamp: %s\n", b.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"))
	if resultsFile != "" {
		fmt.Fprintf(w, "Results file: %s\n", resultsFile)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, SummaryTable(b))
}

/*
PURPOSE:
  Writes the detailed markdown report for a result bundle.

REQUIREMENTS:
  User-specified:
  - Header, tested models, performance summary table, then per-model reply
    and post details.
  - Most-similar example truncated to 300 characters.

  Implementation-discovered:
  - Failed generators and failed models get a one-line note instead of
    details.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (finish)
  - Writes: <output_dir>/docs/test_results_<bundle>.md

ERROR HANDLING:
  - Returns error on directory creation or write failure.

IMPLEMENTATION RULES:
  - Build in a strings.Builder; one write per report.

USAGE:
  path, err := store.SaveReport(bundle, bundlePath)

SELF-HEALING INSTRUCTIONS:
  - Pipes in errors break markdown tables; route cells through escapeCell.

RELATED FILES:
  - internal/output/table.go

MAINTENANCE:
  - Update when SimilarityMetrics gains fields.
*/

package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/daryltucker/persona-runner/internal/model"
)

// exampleLimit truncates most-similar examples in the detailed report.
const exampleLimit = 300

// RenderMarkdown builds the detailed results document for b.
func RenderMarkdown(b *model.ResultBundle, generated time.Time) string {
	var sb strings.Builder
	sb.WriteString("# AI Model Testing Results\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", generated.UTC().Format(time.RFC3339))

	if b.IsMatrix() {
		fmt.Fprintf(&sb, "## Twitter Username: %s\n\n", b.Username)
	} else if b.Character != nil {
		fmt.Fprintf(&sb, "## Character: %s\n\n", b.Character.Name)
	}

	sb.WriteString("### Models Tested\n\n")
	for _, m := range b.Models {
		fmt.Fprintf(&sb, "- %s (%s)\n", m.Name, m.ID)
	}
	sb.WriteString("\n## Performance Summary\n\n")
	writeSummaryTable(&sb, b)

	if !b.IsMatrix() {
		sb.WriteString("\n## Detailed Test Results\n\n")
		for _, s := range b.Results {
			fmt.Fprintf(&sb, "### Model: %s\n\n", s.Model)
			writeModelDetails(&sb, s)
		}
		return sb.String()
	}

	for _, row := range b.Matrix {
		fmt.Fprintf(&sb, "\n## Character Generated By: %s\n\n", row.GeneratedBy)
		if row.Error != "" {
			fmt.Fprintf(&sb, "Generation failed: %s\n\n", row.Error)
			continue
		}
		for _, s := range row.Results {
			fmt.Fprintf(&sb, "### Tested With: %s\n\n", s.Model)
			writeModelDetails(&sb, s)
		}
	}
	return sb.String()
}

func writeSummaryTable(sb *strings.Builder, b *model.ResultBundle) {
	if b.IsMatrix() {
		sb.WriteString("| Generated By | Tested With | Reply Cosine | Reply Semantic | Post Cosine | Post Semantic | Error |\n")
		sb.WriteString("|-------------|------------|-------------|---------------|------------|-------------|-------|\n")
	} else {
		sb.WriteString("| Model | Reply Cosine | Reply Semantic | Post Cosine | Post Semantic | Error |\n")
		sb.WriteString("|-------|-------------|---------------|------------|-------------|-------|\n")
	}
	for _, r := range SummaryRows(b) {
		if b.IsMatrix() {
			fmt.Fprintf(sb, "| %s ", r.GeneratedBy)
		}
		fmt.Fprintf(sb, "| %s | %s | %s | %s | %s | %s |\n",
			r.Model, r.ReplyCosine, r.ReplySemantic, r.PostCosine, r.PostSemantic, escapeCell(r.Error))
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}

func writeModelDetails(sb *strings.Builder, s model.ModelSummary) {
	if s.Error != "" {
		fmt.Fprintf(sb, "Model run failed: %s\n\n", s.Error)
		return
	}

	sb.WriteString("#### Reply Test Cases\n\n")
	n := 0
	for _, r := range s.Results {
		if r.TestType != model.KindReply {
			continue
		}
		n++
		fmt.Fprintf(sb, "**Test Case %d:** %s\n\n", n, r.TestCase)
		fmt.Fprintf(sb, "**Response:**\n```\n%s\n```\n\n", r.Response)
		writeMetrics(sb, r.SimilarityMetrics)
		sb.WriteString("\n---\n\n")
	}

	sb.WriteString("#### Post Test Cases\n\n")
	n = 0
	for _, r := range s.Results {
		if r.TestType != model.KindPost {
			continue
		}
		n++
		fmt.Fprintf(sb, "**Prompt %d:** %s\n\n", n, r.PromptText)
		fmt.Fprintf(sb, "**Generated Post:**\n```\n%s\n```\n\n", r.Response)
		writeMetrics(sb, r.SimilarityMetrics)
		sb.WriteString("\n---\n\n")
	}
}

func writeMetrics(sb *strings.Builder, m *model.SimilarityMetrics) {
	if m == nil {
		return
	}
	if m.CosineSimilarity != nil {
		fmt.Fprintf(sb, "- Cosine Similarity: %.2f%% (avg), %.2f%% (max)\n",
			m.CosineSimilarity.Average*100, m.CosineSimilarity.Max*100)
	}
	if m.SemanticSimilarity != nil && *m.SemanticSimilarity != 0 {
		fmt.Fprintf(sb, "- Semantic Similarity: %.2f%%\n", *m.SemanticSimilarity*100)
	}
	if m.Note != "" {
		fmt.Fprintf(sb, "- Note: %s\n", m.Note)
	}
	if m.Error != "" {
		fmt.Fprintf(sb, "- Scoring error: %s\n", m.Error)
	}
	if ex := m.MostSimilarExample; ex != nil {
		fmt.Fprintf(sb, "\n**Most Similar Example (%.2f%% similar):**\n```\n%s\n```\n", ex.Similarity*100, truncate(ex.Text, exampleLimit))
	}
}

// truncate cuts s to limit runes, marking the cut with "...".
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

// SaveReport writes docs/test_results_<bundle-base>.md for the bundle at
// bundlePath.
func (s *Store) SaveReport(b *model.ResultBundle, bundlePath string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(bundlePath), filepath.Ext(bundlePath))
	path := filepath.Join(s.Dir, DocsDir, fmt.Sprintf("test_results_%s.md", base))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create docs directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(RenderMarkdown(b, s.Now())), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	Logger.Info("Detailed results document saved", "path", path)
	return path, nil
}

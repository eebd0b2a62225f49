/*
PURPOSE:
  Writes one flat CSV row per scored test result.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Spreadsheet-friendly export next to the JSON bundle.

  Implementation-discovered:
  - Matrix bundles need a generated_by column; it is empty otherwise.
  - Failed models have no results but still get one row carrying the error.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Consumes: internal/model.ResultBundle

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write.
  - Use Mutex; writers may be shared.

USAGE:
  err := output.ExportCSV(bundle, "results.csv")

SELF-HEALING INSTRUCTIONS:
  - If CSV format changes, update header and record conversion.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when TestResult changes.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/daryltucker/persona-runner/internal/model"
)

var csvHeader = []string{
	"generated_by", "model", "model_id", "test_type", "test_case", "username",
	"prompt_text", "response", "cosine_avg", "cosine_max", "semantic",
	"most_similar_example", "note", "error",
}

// CSVRow is one result in the context of its model run.
type CSVRow struct {
	GeneratedBy string
	Summary     *model.ModelSummary
	Result      *model.TestResult
}

// CSVWriter handles writing results to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single row to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(row CSVRow) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	s := row.Summary
	record := []string{row.GeneratedBy, s.Model, s.ModelID}
	if r := row.Result; r != nil {
		record = append(record, string(r.TestType), r.TestCase, r.Username, r.PromptText, r.Response)
		record = append(record, metricFields(r.SimilarityMetrics)...)
	} else {
		record = append(record, "", "", "", "", "", "", "", "", "", "", s.Error)
	}

	if err := cw.writer.Write(record); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

func metricFields(m *model.SimilarityMetrics) []string {
	if m == nil {
		return []string{"", "", "", "", "", ""}
	}
	var avg, maxScore, semantic, example string
	if m.CosineSimilarity != nil {
		avg = fmt.Sprintf("%.4f", m.CosineSimilarity.Average)
		maxScore = fmt.Sprintf("%.4f", m.CosineSimilarity.Max)
	}
	if m.SemanticSimilarity != nil {
		semantic = fmt.Sprintf("%.4f", *m.SemanticSimilarity)
	}
	if m.MostSimilarExample != nil {
		example = m.MostSimilarExample.Text
	}
	return []string{avg, maxScore, semantic, example, m.Note, m.Error}
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}

// ExportCSV writes every result in b to path.
func ExportCSV(b *model.ResultBundle, path string) (err error) {
	w, err := NewCSVWriter(path)
	if err != nil {
		return fmt.Errorf("failed to init CSV writer at %s: %w", path, err)
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	for _, group := range bundleGroups(b) {
		if group.err != "" && len(group.summaries) == 0 {
			if err := w.Write(CSVRow{GeneratedBy: group.generatedBy, Summary: &model.ModelSummary{Error: group.err}}); err != nil {
				return err
			}
			continue
		}
		for i := range group.summaries {
			s := &group.summaries[i]
			if len(s.Results) == 0 {
				if err := w.Write(CSVRow{GeneratedBy: group.generatedBy, Summary: s}); err != nil {
					return err
				}
				continue
			}
			for j := range s.Results {
				if err := w.Write(CSVRow{GeneratedBy: group.generatedBy, Summary: s, Result: &s.Results[j]}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// CSVPath returns the export path that sits next to a bundle file.
func CSVPath(bundlePath string) string {
	return strings.TrimSuffix(bundlePath, filepath.Ext(bundlePath)) + ".csv"
}

type summaryGroup struct {
	generatedBy string
	err         string
	summaries   []model.ModelSummary
}

// bundleGroups flattens both bundle shapes into generator-labelled groups.
func bundleGroups(b *model.ResultBundle) []summaryGroup {
	if !b.IsMatrix() {
		return []summaryGroup{{summaries: b.Results}}
	}
	groups := make([]summaryGroup, len(b.Matrix))
	for i, row := range b.Matrix {
		groups[i] = summaryGroup{generatedBy: row.GeneratedBy, err: row.Error, summaries: row.Results}
	}
	return groups
}

/*
PURPOSE:
  Defines the core data structures used throughout Persona Runner.
  These models describe characters, test cases, scores and result bundles.

REQUIREMENTS:
  User-specified:
  - Record one result per test case x model x character.
  - Keep the result bundle JSON readable by the report tooling.

  Implementation-discovered:
  - Score fields need "absent" vs "zero" (pointers) so aggregation can skip
    entries loaded from older bundles.
  - The bundle has two shapes; see bundle.go.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/scoring, internal/metrics, internal/output
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs) apart from Character.Validate.

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - JSON tags are camelCase to match the bundle format consumed downstream.

USAGE:
  res := model.TestResult{...}

SELF-HEALING INSTRUCTIONS:
  - If new metrics are needed, add field and update the report + CSV writers.

RELATED FILES:
  - internal/model/character.go
  - internal/model/bundle.go
  - internal/output/csv.go

MAINTENANCE:
  - Update when adding new metrics to capture.
*/

package model

import (
	"time"
)

// TestKind discriminates the TestCase variants.
type TestKind string

const (
	KindReply TestKind = "reply"
	KindPost  TestKind = "post"
)

// TestCase is one entry of the battery. Reply cases use Text/Username and the
// media flags; post cases use PromptText.
type TestCase struct {
	Kind       TestKind `json:"type" yaml:"type"`
	Text       string   `json:"text,omitempty" yaml:"text,omitempty"`
	Username   string   `json:"username,omitempty" yaml:"username,omitempty"`
	HasImage   bool     `json:"hasImage,omitempty" yaml:"has_image,omitempty"`
	HasLink    bool     `json:"hasLink,omitempty" yaml:"has_link,omitempty"`
	HasVideo   bool     `json:"hasVideo,omitempty" yaml:"has_video,omitempty"`
	PromptText string   `json:"promptText,omitempty" yaml:"prompt_text,omitempty"`
}

// ModelConfig identifies one candidate model.
type ModelConfig struct {
	Name     string `json:"name" yaml:"name"`
	Model    string `json:"model" yaml:"model"`
	Provider string `json:"provider" yaml:"provider"`
}

// SamplingParams are attached to every generation call of a run.
type SamplingParams struct {
	Temperature      float32 `json:"temperature" yaml:"temperature"`
	TopP             float32 `json:"topP" yaml:"top_p"`
	FrequencyPenalty float32 `json:"frequencyPenalty" yaml:"frequency_penalty"`
	MaxTokens        int     `json:"maxTokens" yaml:"max_tokens"`
}

// CosineScores holds the embedding similarity of a response against each
// reference example, in corpus order.
type CosineScores struct {
	Average float64   `json:"average"`
	Max     float64   `json:"max"`
	Scores  []float64 `json:"scores"`
}

// ExampleMatch is the reference example closest to a response.
type ExampleMatch struct {
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}

// SimilarityMetrics is the scored outcome for one response. Nil score fields
// mean "not measured"; the scorer always sets both.
type SimilarityMetrics struct {
	CosineSimilarity   *CosineScores `json:"cosineSimilarity,omitempty"`
	SemanticSimilarity *float64      `json:"semanticSimilarity,omitempty"`
	MostSimilarExample *ExampleMatch `json:"mostSimilarExample,omitempty"`
	Note               string        `json:"note,omitempty"`
	Error              string        `json:"error,omitempty"`
}

// ZeroMetrics returns a fully zeroed metric carrying a note.
func ZeroMetrics(note string) *SimilarityMetrics {
	semantic := 0.0
	return &SimilarityMetrics{
		CosineSimilarity:   &CosineScores{Scores: []float64{}},
		SemanticSimilarity: &semantic,
		Note:               note,
	}
}

// ErrorMetrics returns a zeroed metric tagged with an error message.
func ErrorMetrics(err error) *SimilarityMetrics {
	m := ZeroMetrics("")
	m.Error = err.Error()
	return m
}

// TestResult is the outcome of one test case for one model and character.
type TestResult struct {
	TestType          TestKind           `json:"testType"`
	TestCase          string             `json:"testCase,omitempty"`
	Username          string             `json:"username,omitempty"`
	PromptText        string             `json:"promptText,omitempty"`
	Response          string             `json:"response"`
	SimilarityMetrics *SimilarityMetrics `json:"similarityMetrics"`
}

// CategorySummary aggregates a set of results.
type CategorySummary struct {
	Count              int     `json:"count"`
	ValidResults       int     `json:"validResults"`
	CosineSimilarity   float64 `json:"cosineSimilarity"`
	SemanticSimilarity float64 `json:"semanticSimilarity"`
}

// SummaryBreakdown splits aggregates by test kind. A nil category means no
// data for it.
type SummaryBreakdown struct {
	Overall *CategorySummary `json:"overall"`
	Replies *CategorySummary `json:"replies"`
	Posts   *CategorySummary `json:"posts"`
}

// ModelSummary is the outcome of running the battery for one model.
type ModelSummary struct {
	Model    string            `json:"model"`
	ModelID  string            `json:"modelId"`
	Results  []TestResult      `json:"results"`
	Summary  *SummaryBreakdown `json:"summary,omitempty"`
	Error    string            `json:"error,omitempty"`
	Duration time.Duration     `json:"duration,omitempty"`
}

// Failed reports whether the model run degraded to an error marker.
func (s ModelSummary) Failed() bool {
	return s.Error != ""
}

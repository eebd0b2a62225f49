/*
PURPOSE:
  Scores one generated response against a character's reference examples
  with two independent signals: embedding cosine similarity and a judge
  model's 0-100 style rating.

REQUIREMENTS:
  User-specified:
  - Index 0 of the embedding batch is the response, 1..N the references.
  - The judge sees at most 3 references; a zero score retries once with a
    2-example prompt.

  Implementation-discovered:
  - Judges rarely answer with just a number; see extract.go.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (once per test case)
  - Uses: internal/llm, internal/model

ERROR HANDLING:
  - Never returns an error. Embedding or primary judge failure yields
    model.ErrorMetrics; backup judge failure is logged and ignored.
  - NaN/Inf in returned vectors counts as an embedding failure; the
    bundle JSON cannot encode non-finite numbers.

IMPLEMENTATION RULES:
  - Score is strictly sequential: embed, then judge, then maybe retry.

USAGE:
  s := scoring.NewScorer(client, client)
  metrics := s.Score(ctx, response, character)

SELF-HEALING INSTRUCTIONS:
  - If judge scores cluster at 0.85/0.5/0.2 the model is free-texting;
    lower JudgeMaxTokens or switch JudgeModel.

RELATED FILES:
  - internal/scoring/extract.go
  - internal/scoring/cosine.go

MAINTENANCE:
  - Update prompt wording together with the extract patterns.
*/

package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/daryltucker/persona-runner/internal/llm"
	"github.com/daryltucker/persona-runner/internal/model"
	"github.com/daryltucker/persona-runner/internal/output"
)

const (
	DefaultJudgeModel     = "meta-llama/Llama-4-Maverick-17B-128E-Instruct-FP8"
	DefaultEmbeddingModel = "togethercomputer/m2-bert-80M-8k-retrieval"

	NoExamplesNote = "No examples available for comparison"

	judgeExamples  = 3
	backupExamples = 2
)

var judgeSampling = model.SamplingParams{Temperature: 0.1, MaxTokens: 10}

const judgePrompt = `You are an expert evaluator of writing style, tone, and content.
Compare the following texts for semantic and stylistic similarity on a scale from 0 to 100.
0 means completely different. 100 means nearly identical in style, tone, and perspective.

EXAMPLE TEXTS FROM THE CHARACTER (up to 3 samples):
%s

GENERATED RESPONSE TO EVALUATE:
%s

Output ONLY the numerical similarity score (0-100). Do not include any other text, explanation, or formatting.
Similarity Score:`

const backupPrompt = `On a scale of 0-100, how similar is this generated text to these examples in terms of writing style, voice, and tone?
Examples: %s
Generated: %s
Answer with just a number from 0-100.`

// Scorer computes SimilarityMetrics for generated responses.
type Scorer struct {
	Completer      llm.Completer
	Embedder       llm.Embedder
	JudgeModel     string
	EmbeddingModel string
}

// NewScorer returns a Scorer using the default judge and embedding models.
func NewScorer(c llm.Completer, e llm.Embedder) *Scorer {
	return &Scorer{
		Completer:      c,
		Embedder:       e,
		JudgeModel:     DefaultJudgeModel,
		EmbeddingModel: DefaultEmbeddingModel,
	}
}

// Score never returns nil.
func (s *Scorer) Score(ctx context.Context, response string, c *model.Character) *model.SimilarityMetrics {
	corpus := c.ReferenceCorpus()
	if len(corpus) == 0 {
		output.Logger.Warn("No examples found for comparison", "character", c.Name)
		return model.ZeroMetrics(NoExamplesNote)
	}

	metrics, err := s.score(ctx, response, corpus)
	if err != nil {
		output.Logger.Error("Error calculating similarity metrics", "character", c.Name, "error", err)
		return model.ErrorMetrics(err)
	}
	return metrics
}

func (s *Scorer) score(ctx context.Context, response string, corpus []string) (*model.SimilarityMetrics, error) {
	vectors, err := s.Embedder.Embed(ctx, s.EmbeddingModel, append([]string{response}, corpus...))
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	if len(vectors) != len(corpus)+1 {
		return nil, fmt.Errorf("embedding: expected %d vectors, got %d", len(corpus)+1, len(vectors))
	}

	scores, avg, maxScore, maxIdx := cosineScores(vectors[0], vectors[1:])
	if !finite(avg) || !finite(maxScore) {
		return nil, errors.New("embedding: non-finite similarity (NaN or Inf in vectors)")
	}

	semantic, err := s.judge(ctx, judgePrompt, corpus, judgeExamples, response)
	if err != nil {
		return nil, fmt.Errorf("judge: %w", err)
	}
	if semantic == 0 {
		output.Logger.Info("First semantic score extraction failed, trying backup approach")
		backup, err := s.judge(ctx, backupPrompt, corpus, backupExamples, response)
		if err != nil {
			output.Logger.Warn("Backup semantic score calculation failed", "error", err)
		} else if backup != 0 {
			semantic = backup
		}
	}

	return &model.SimilarityMetrics{
		CosineSimilarity:   &model.CosineScores{Average: avg, Max: maxScore, Scores: scores},
		SemanticSimilarity: &semantic,
		MostSimilarExample: &model.ExampleMatch{Text: corpus[maxIdx], Similarity: maxScore},
	}, nil
}

func (s *Scorer) judge(ctx context.Context, tmpl string, corpus []string, n int, response string) (float64, error) {
	examples := strings.Join(corpus[:min(n, len(corpus))], "\n\n")
	text, err := s.Completer.Complete(ctx, llm.CompletionRequest{
		Model:      s.JudgeModel,
		UserPrompt: fmt.Sprintf(tmpl, examples, response),
		Sampling:   judgeSampling,
	})
	if err != nil {
		return 0, err
	}
	score := ExtractScore(text)
	output.Logger.Debug("Judge response", "raw", text, "score", score)
	return score, nil
}

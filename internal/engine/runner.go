/*
PURPOSE:
  Runs the test battery for one character against one model.
  Loops through test cases -> generate -> score, strictly in order.

REQUIREMENTS:
  User-specified:
  - Execute at most MaxCases entries of the battery, in catalog order.
  - Summaries split into overall, replies and posts.

  Implementation-discovered:
  - A failed generation (after client retries) fails the whole model; the
    orchestrator still reports every model.
  - The character name is checked before any call is issued.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (Orchestrator)
  - Uses: internal/llm, internal/prompt, internal/metrics, internal/output

ERROR HANDLING:
  - Never returns an error. Failures become ModelSummary.Error with empty
    results.

IMPLEMENTATION RULES:
  - No concurrency inside a run; one request in flight per model.
  - Each Run owns its RNG so parallel runs share nothing.

USAGE:
  r := engine.NewRunner(client, scorer)
  summary := r.Run(ctx, character, modelCfg)

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/engine/orchestrator.go
  - internal/scoring/similarity.go

MAINTENANCE:
  - Update if intra-model parallelism is ever introduced.
*/

package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/daryltucker/persona-runner/internal/catalog"
	"github.com/daryltucker/persona-runner/internal/llm"
	"github.com/daryltucker/persona-runner/internal/metrics"
	"github.com/daryltucker/persona-runner/internal/model"
	"github.com/daryltucker/persona-runner/internal/output"
	"github.com/daryltucker/persona-runner/internal/prompt"
)

// Scorer rates one response against a character.
type Scorer interface {
	Score(ctx context.Context, response string, c *model.Character) *model.SimilarityMetrics
}

// Runner executes the battery for one (character, model) pair.
type Runner struct {
	Completer llm.Completer
	Scorer    Scorer
	Templates prompt.Templates
	Battery   []model.TestCase
	MaxCases  int
	Sampling  model.SamplingParams
	// Seed fixes example sampling; 0 picks a random seed per run.
	Seed uint64
}

// NewRunner creates a Runner with the default battery, templates and sampling.
func NewRunner(c llm.Completer, s Scorer) *Runner {
	return &Runner{
		Completer: c,
		Scorer:    s,
		Templates: prompt.DefaultTemplates(),
		Battery:   catalog.DefaultBattery(),
		MaxCases:  catalog.DefaultMaxCases,
		Sampling:  catalog.DefaultSampling,
	}
}

// Cases returns the battery entries a run executes.
func (r *Runner) Cases() []model.TestCase {
	if r.MaxCases > 0 && len(r.Battery) > r.MaxCases {
		return r.Battery[:r.MaxCases]
	}
	return r.Battery
}

func (r *Runner) rng() *rand.Rand {
	seed := r.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Run executes the battery and never returns a nil-shaped summary.
func (r *Runner) Run(ctx context.Context, c *model.Character, m model.ModelConfig) model.ModelSummary {
	start := time.Now()
	output.Logger.Info("Testing character with model", "model", m.Name)

	results, err := r.run(ctx, c, m)
	if err != nil {
		output.Logger.Error("Error testing model", "model", m.Name, "error", err)
		return model.ModelSummary{
			Model:    m.Name,
			ModelID:  m.Model,
			Error:    err.Error(),
			Results:  []model.TestResult{},
			Duration: time.Since(start),
		}
	}

	output.Logger.Info("Testing completed", "model", m.Name, "cases", len(results), "duration", time.Since(start))
	return model.ModelSummary{
		Model:    m.Name,
		ModelID:  m.Model,
		Results:  results,
		Summary:  metrics.Breakdown(results),
		Duration: time.Since(start),
	}
}

func (r *Runner) run(ctx context.Context, c *model.Character, m model.ModelConfig) ([]model.TestResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	rng := r.rng()
	cases := r.Cases()
	results := make([]model.TestResult, 0, len(cases))
	for i, tc := range cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		output.Logger.Info("Running test case", "model", m.Name, "case", i+1, "of", len(cases), "type", tc.Kind)

		response, err := r.Completer.Complete(ctx, llm.CompletionRequest{
			Model:        m.Model,
			SystemPrompt: c.System,
			UserPrompt:   r.Templates.Build(c, tc, rng),
			Sampling:     r.Sampling,
		})
		if err != nil {
			return nil, fmt.Errorf("generate %s %d: %w", tc.Kind, i+1, err)
		}
		output.Logger.Debug("Generated response", "model", m.Name, "type", tc.Kind, "chars", len(response))

		sim := r.Scorer.Score(ctx, response, c)
		results = append(results, newResult(tc, response, sim))
	}
	return results, nil
}

func newResult(tc model.TestCase, response string, sim *model.SimilarityMetrics) model.TestResult {
	res := model.TestResult{
		TestType:          tc.Kind,
		Response:          response,
		SimilarityMetrics: sim,
	}
	if tc.Kind == model.KindPost {
		res.PromptText = tc.PromptText
	} else {
		res.TestType = model.KindReply
		res.TestCase = tc.Text
		res.Username = tc.Username
	}
	return res
}

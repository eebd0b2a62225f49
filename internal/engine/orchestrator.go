package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/daryltucker/persona-runner/internal/model"
	"github.com/daryltucker/persona-runner/internal/output"
)

// ModelRunner evaluates one character with one model.
type ModelRunner interface {
	Run(ctx context.Context, c *model.Character, m model.ModelConfig) model.ModelSummary
}

// Orchestrator fans a character out across models concurrently.
type Orchestrator struct {
	Runner ModelRunner
}

// Evaluate runs every model concurrently and returns one summary per model,
// in input order. A failing or panicking model only fills its own slot.
func (o *Orchestrator) Evaluate(ctx context.Context, c *model.Character, models []model.ModelConfig) []model.ModelSummary {
	output.Logger.Info("Testing character with models", "character", c.Name, "models", len(models))

	summaries := make([]model.ModelSummary, len(models))
	var g errgroup.Group
	for i, m := range models {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					output.Logger.Error("Model run panicked", "model", m.Name, "panic", p)
					summaries[i] = model.ModelSummary{
						Model:   m.Name,
						ModelID: m.Model,
						Error:   fmt.Sprintf("panic: %v", p),
						Results: []model.TestResult{},
					}
				}
			}()
			summaries[i] = o.Runner.Run(ctx, c, m)
			return nil
		})
	}
	_ = g.Wait()

	output.Logger.Info("All model tests completed", "character", c.Name)
	return summaries
}

// EvaluateExisting builds an existing-character bundle for c loaded from path.
func (o *Orchestrator) EvaluateExisting(ctx context.Context, c *model.Character, path string, models []model.ModelConfig) *model.ResultBundle {
	return &model.ResultBundle{
		RunID:     uuid.NewString(),
		Character: &model.CharacterRef{Name: c.Name, Path: path},
		Models:    model.RefsFor(models),
		Timestamp: time.Now().UTC(),
		Results:   o.Evaluate(ctx, c, models),
	}
}

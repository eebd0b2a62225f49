package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/daryltucker/persona-runner/internal/character"
	"github.com/daryltucker/persona-runner/internal/model"
	"github.com/daryltucker/persona-runner/internal/output"
)

// CharacterGenerator writes a character for src with model m.
type CharacterGenerator interface {
	Generate(ctx context.Context, src character.Source, m model.ModelConfig) (*model.Character, error)
}

// Store persists matrix artifacts.
type Store interface {
	SaveCharacter(username string, m model.ModelConfig, c *model.Character) (string, error)
	SaveBundle(b *model.ResultBundle) (string, error)
}

// Matrix generates one character per model, then evaluates every generated
// character with every model.
type Matrix struct {
	Generator    CharacterGenerator
	Orchestrator *Orchestrator
	Store        Store
}

type generated struct {
	model     model.ModelConfig
	character *model.Character
	path      string
	err       error
}

// Run executes both phases and persists the bundle. The returned bundle is
// complete even when saving it fails.
func (x *Matrix) Run(ctx context.Context, src character.Source, models []model.ModelConfig) (*model.ResultBundle, string, error) {
	if src.Username == "" {
		return nil, "", errors.New("username is empty")
	}
	if len(models) == 0 {
		return nil, "", errors.New("no models selected")
	}

	outcomes := x.generate(ctx, src, models)
	x.persist(src.Username, outcomes)

	output.Logger.Info("Testing all generated characters with all models")
	rows := make([]model.GeneratedEvaluation, len(outcomes))
	for i, o := range outcomes {
		row := model.GeneratedEvaluation{
			GeneratedBy:   o.model.Name,
			GeneratedByID: o.model.Model,
			CharacterPath: o.path,
		}
		if o.err != nil {
			row.Error = o.err.Error()
			row.Results = []model.ModelSummary{}
		} else {
			output.Logger.Info("Testing generated character", "generated_by", o.model.Name)
			row.Results = x.Orchestrator.Evaluate(ctx, o.character, models)
		}
		rows[i] = row
	}

	bundle := &model.ResultBundle{
		RunID:     uuid.NewString(),
		Username:  src.Username,
		Models:    model.RefsFor(models),
		Timestamp: time.Now().UTC(),
		Matrix:    rows,
	}
	path, err := x.Store.SaveBundle(bundle)
	if err != nil {
		return bundle, "", err
	}
	return bundle, path, nil
}

// generate runs phase one concurrently, one slot per model.
func (x *Matrix) generate(ctx context.Context, src character.Source, models []model.ModelConfig) []generated {
	output.Logger.Info("Generating characters", "username", src.Username, "models", len(models))

	outcomes := make([]generated, len(models))
	var g errgroup.Group
	for i, m := range models {
		g.Go(func() error {
			outcomes[i] = generated{model: m}
			defer func() {
				if p := recover(); p != nil {
					outcomes[i].err = fmt.Errorf("panic: %v", p)
				}
			}()

			c, err := x.Generator.Generate(ctx, src, m)
			if err == nil {
				err = c.Validate()
			}
			if err != nil {
				output.Logger.Error("Error generating character", "model", m.Name, "error", err)
				outcomes[i].err = err
				return nil
			}
			outcomes[i].character = c
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// persist saves successful characters after the generation join. A save
// failure fails that outcome; evaluation never runs on unsaved data.
func (x *Matrix) persist(username string, outcomes []generated) {
	for i := range outcomes {
		o := &outcomes[i]
		if o.err != nil {
			continue
		}
		path, err := x.Store.SaveCharacter(username, o.model, o.character)
		if err != nil {
			output.Logger.Error("Failed to save character", "model", o.model.Name, "error", err)
			o.err = err
			o.character = nil
			continue
		}
		o.path = path
	}
}

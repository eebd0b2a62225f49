package cli

import (
	"fmt"
	"io"

	"github.com/daryltucker/persona-runner/internal/config"
	"github.com/daryltucker/persona-runner/internal/engine"
	"github.com/daryltucker/persona-runner/internal/llm"
	"github.com/daryltucker/persona-runner/internal/model"
	"github.com/daryltucker/persona-runner/internal/output"
	"github.com/daryltucker/persona-runner/internal/prompt"
	"github.com/daryltucker/persona-runner/internal/scoring"
)

// pipeline is the wired set of components shared by test and generate.
type pipeline struct {
	client       *llm.Client
	orchestrator *engine.Orchestrator
	store        *output.Store
}

func newPipeline(cfg *config.Config) (*pipeline, error) {
	client := llm.New(llm.Options{
		BaseURL:           cfg.BaseURL,
		APIKey:            cfg.APIKey,
		MaxRetries:        cfg.MaxRetries,
		RetryDelay:        cfg.RetryDelay,
		CallTimeout:       cfg.CallTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})

	scorer := scoring.NewScorer(client, client)
	scorer.JudgeModel = cfg.JudgeModel
	scorer.EmbeddingModel = cfg.EmbeddingModel

	templates, err := prompt.LoadTemplates(cfg.Templates.Reply, cfg.Templates.Post)
	if err != nil {
		return nil, err
	}

	runner := engine.NewRunner(client, scorer)
	runner.Templates = templates
	runner.MaxCases = cfg.MaxCases
	runner.Sampling = cfg.Sampling
	runner.Seed = cfg.Seed

	return &pipeline{
		client:       client,
		orchestrator: &engine.Orchestrator{Runner: runner},
		store:        output.NewStore(cfg.OutputDir),
	}, nil
}

// finish prints the summary and writes the markdown report and CSV export
// for a saved bundle.
func finish(w io.Writer, store *output.Store, b *model.ResultBundle, bundlePath string, writeCSV bool) error {
	output.PrintSummary(w, b, bundlePath)

	reportPath, err := store.SaveReport(b, bundlePath)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Detailed report: %s\n", reportPath)

	if writeCSV {
		csvPath := output.CSVPath(bundlePath)
		if err := output.ExportCSV(b, csvPath); err != nil {
			return err
		}
		fmt.Fprintf(w, "CSV export: %s\n", csvPath)
	}
	return nil
}

/*
PURPOSE:
  Defines the 'test' subcommand.
  Evaluates an existing character file against the selected models.

REQUIREMENTS:
  User-specified:
  - Test an existing character with up to 5 models concurrently.
  - Save the result bundle, print the summary, write the report.

  Implementation-discovered:
  - Without a path, discover character files in the usual places.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Orchestrator.EvaluateExisting()
  - Uses: internal/config, internal/character, internal/output

ERROR HANDLING:
  - Returns error if config, model selection or character load fails.
  - Model failures are recorded in the bundle, not returned.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Select -> Evaluate -> Save -> Report.

USAGE:
  persona-runner test characters/ada.json --models 1,3

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go
  - internal/cli/pipeline.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"github.com/spf13/cobra"

	"github.com/daryltucker/persona-runner/internal/character"
	"github.com/daryltucker/persona-runner/internal/config"
)

var (
	modelsOverride []string
	maxCases       int
	seedOverride   uint64
	noCSV          bool
)

var testCmd = &cobra.Command{
	Use:   "test [character.json]",
	Short: "Test an existing character with multiple models",
	Long: `Runs the test battery for one character against each selected model
concurrently. Each model generates replies and posts which are scored against
the character's own examples with embedding cosine similarity and a judge
model's rating.

If no file is given, the first *.json found in outputs/characters,
characters or the current directory is used.`,
	Example: `  # Test with the first five catalog models
  persona-runner test characters/ada.json

  # Pick models by catalog index or name
  persona-runner test characters/ada.json --models 1,3,meta-llama/Llama-3.3-70B-Instruct-Turbo

  # Run the whole battery
  persona-runner test characters/ada.json --max-cases 40`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		if err := applyRunOverrides(cmd, cfg); err != nil {
			return err
		}

		models, err := cfg.SelectModels(modelsOverride)
		if err != nil {
			return err
		}

		var path string
		if len(args) == 1 {
			path = args[0]
		} else {
			f, err := character.Discover(".")
			if err != nil {
				return err
			}
			path = f.Path
		}

		c, err := character.LoadFile(path)
		if err != nil {
			return err
		}

		p, err := newPipeline(cfg)
		if err != nil {
			return err
		}

		bundle := p.orchestrator.EvaluateExisting(cmd.Context(), c, path, models)
		bundlePath, err := p.store.SaveBundle(bundle)
		if err != nil {
			return err
		}
		return finish(cmd.OutOrStdout(), p.store, bundle, bundlePath, !noCSV)
	},
}

// applyRunOverrides copies run-tuning flags that were set explicitly and
// validates the result.
func applyRunOverrides(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("max-cases") {
		cfg.MaxCases = maxCases
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seedOverride
	}
	return cfg.Validate()
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&modelsOverride, "models", "m", nil, "Comma-separated model names or 1-based catalog indices (default: first 5)")
	cmd.Flags().IntVar(&maxCases, "max-cases", 0, "Number of battery entries to run per model (default from config: 10)")
	cmd.Flags().Uint64Var(&seedOverride, "seed", 0, "Seed for example sampling (0 = random)")
	cmd.Flags().BoolVar(&noCSV, "no-csv", false, "Skip the CSV export")
}

func init() {
	rootCmd.AddCommand(testCmd)
	addRunFlags(testCmd)
}

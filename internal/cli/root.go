/*
PURPOSE:
  Defines the root Cobra command for the Persona Runner CLI.
  Handles global flags, logging setup and shared wiring.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.
  - Halt before any work when the API key is missing.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Ctrl-C must cancel in-flight provider calls.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/persona-runner/main.go
  - Calls: Child commands (test, generate, report, list-models, templates)
  - Uses: internal/config, internal/output

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands, Root is usually empty or helps.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to init().

RELATED FILES:
  - cmd/persona-runner/main.go
  - internal/cli/pipeline.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daryltucker/persona-runner/internal/config"
	"github.com/daryltucker/persona-runner/internal/output"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile   string
	logLevel  string
	logFormat string

	outputOverride string

	rootCmd = &cobra.Command{
		Use:   "persona-runner",
		Short: "Multi-model persona fidelity tester",
		Long: `Evaluates how faithfully a generated persona reproduces a target voice
across several candidate models. Use 'test --help' or 'generate --help'.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return output.Configure(os.Stderr, logLevel, logFormat)
		},
	}
)

// Execute executes the root command. SIGINT and SIGTERM cancel the run.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./persona_runner.yaml or ./runner.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().StringVarP(&outputOverride, "output-dir", "o", "", "base directory for characters, results and reports")
}

// loadConfig loads the config file, applies env and flag overrides, and
// when requireKey is set fails fast on a missing API key.
func loadConfig(requireKey bool) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if outputOverride != "" {
		cfg.OutputDir = outputOverride
	}
	if requireKey {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

/*
PURPOSE:
  Defines the 'list-models' subcommand.
  Shows the model catalog and the indices accepted by --models.

REQUIREMENTS:
  User-specified:
  - List available models.

  Implementation-discovered:
  - Useful validation step before a full run; marks the default selection.

ARCHITECTURE INTEGRATION:
  - Uses: internal/config

ERROR HANDLING:
  - Returns error if the config file is invalid.

IMPLEMENTATION RULES:
  - Simple output to stdout.
  - No API key needed.

USAGE:
  persona-runner list-models

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/config/config.go
  - internal/catalog/models.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/persona-runner/internal/catalog"
)

var listModelsCmd = &cobra.Command{
	Use:   "list-models",
	Short: "List the configured model catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		limit := min(cfg.MaxModels, catalog.MaxModels)
		for i, m := range cfg.Models {
			mark := " "
			if i < limit {
				mark = "*"
			}
			fmt.Fprintf(w, "%s %d. %s (%s)\n", mark, i+1, m.Name, m.Provider)
			if m.Model != m.Name {
				fmt.Fprintf(w, "     id: %s\n", m.Model)
			}
		}
		fmt.Fprintf(w, "\n* selected by default (max %d per run)\n", limit)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listModelsCmd)
}

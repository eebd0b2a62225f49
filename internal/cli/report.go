package cli

import (
	"github.com/spf13/cobra"

	"github.com/daryltucker/persona-runner/internal/output"
)

var reportCSV bool

var reportCmd = &cobra.Command{
	Use:   "report <results.json>",
	Short: "Print the summary and regenerate the markdown report for a saved bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		b, err := output.LoadBundle(args[0])
		if err != nil {
			return err
		}
		return finish(cmd.OutOrStdout(), output.NewStore(cfg.OutputDir), b, args[0], reportCSV)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().BoolVar(&reportCSV, "csv", false, "Also write a CSV export next to the bundle")
}

package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/daryltucker/persona-runner/internal/output"
	"github.com/daryltucker/persona-runner/internal/prompt"
)

var overwriteTemplates bool

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage the built-in prompt templates",
}

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the embedded templates to a directory for editing",
	Long: `Writes reply.tmpl, post.tmpl and character.tmpl to <dir>. Point the
templates section of the config file at the edited copies to use them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportTemplates(args[0], overwriteTemplates)
	},
}

func exportTemplates(targetDir string, overwrite bool) error {
	output.Logger.Info("Exporting templates...", "target", targetDir)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("failed to create target directory %s: %w", targetDir, err)
	}

	entries, err := fs.ReadDir(prompt.Files, "templates")
	if err != nil {
		return fmt.Errorf("failed to read embedded templates: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := fs.ReadFile(prompt.Files, path.Join("templates", entry.Name()))
		if err != nil {
			output.Logger.Error("Failed to read embedded file", "file", entry.Name(), "error", err)
			continue
		}

		targetPath := filepath.Join(targetDir, entry.Name())
		if _, err := os.Stat(targetPath); err == nil && !overwrite {
			output.Logger.Warn("Skipping existing file", "path", targetPath)
			continue
		}
		if err := os.WriteFile(targetPath, content, 0644); err != nil {
			output.Logger.Error("Failed to write to target", "path", targetPath, "error", err)
			continue
		}
		output.Logger.Info("Exported template", "name", entry.Name())
		count++
	}

	output.Logger.Info("Export Complete", "total_files", count)
	return nil
}

func init() {
	templatesCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(templatesCmd)
	exportCmd.Flags().BoolVar(&overwriteTemplates, "force", false, "Overwrite existing files")
}

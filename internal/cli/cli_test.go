package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/persona-runner/internal/catalog"
	"github.com/daryltucker/persona-runner/internal/model"
	"github.com/daryltucker/persona-runner/internal/output"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestListModels(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, "list-models")
	require.NoError(t, err)
	for _, m := range catalog.DefaultModels() {
		assert.Contains(t, out, m.Name)
	}
	assert.Contains(t, out, "* 1. ")
	assert.Contains(t, out, "max 5 per run")
}

func TestExportTemplates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tpl")
	require.NoError(t, exportTemplates(dir, false))

	for _, name := range []string{"reply.tmpl", "post.tmpl", "character.tmpl"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data)
	}

	custom := filepath.Join(dir, "post.tmpl")
	require.NoError(t, os.WriteFile(custom, []byte("mine"), 0644))
	require.NoError(t, exportTemplates(dir, false))
	data, _ := os.ReadFile(custom)
	assert.Equal(t, "mine", string(data))

	require.NoError(t, exportTemplates(dir, true))
	data, _ = os.ReadFile(custom)
	assert.NotEqual(t, "mine", string(data))
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	store := output.NewStore(filepath.Join(dir, "outputs"))
	store.Now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	path, err := store.SaveBundle(&model.ResultBundle{
		Character: &model.CharacterRef{Name: "Ada", Path: "ada.json"},
		Models:    []model.ModelRef{{Name: "A", ID: "org/a"}},
		Timestamp: time.Now().UTC(),
		Results:   []model.ModelSummary{{Model: "A", ModelID: "org/a", Error: "boom", Results: []model.TestResult{}}},
	})
	require.NoError(t, err)

	out, err := execute(t, "report", path, "--output-dir", filepath.Join(dir, "outputs"), "--csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Character: Ada")
	assert.Contains(t, out, "boom")

	_, err = os.Stat(output.CSVPath(path))
	assert.NoError(t, err)
	matches, _ := filepath.Glob(filepath.Join(dir, "outputs", output.DocsDir, "test_results_*.md"))
	assert.Len(t, matches, 1)
}

func TestTestCommandRequiresAPIKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TOGETHER_API_KEY", "")

	_, err := execute(t, "test", "missing.json")
	assert.ErrorContains(t, err, "TOGETHER_API_KEY")
}

func TestRunFlagsAreValidated(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TOGETHER_API_KEY", "k")

	for _, v := range []string{"0", "-3"} {
		_, err := execute(t, "test", "missing.json", "--max-cases", v)
		assert.ErrorContains(t, err, "max_cases must be positive", v)
	}
}

/*
PURPOSE:
  Persists generated characters and result bundles as indented JSON and
  reads bundles back for reporting.

REQUIREMENTS:
  User-specified:
  - One file per generated character, named by model and timestamp.
  - One result bundle per run.

  Implementation-discovered:
  - Model names contain slashes; they must not become path separators.
  - ISO timestamps contain ':' which some filesystems reject.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine, internal/cli
  - Consumes: internal/model.Character, internal/model.ResultBundle

ERROR HANDLING:
  - Returns error on directory creation, encoding or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json with two-space indentation.
  - Write whole files only after the data is complete.

USAGE:
  s := output.NewStore("outputs")
  path, err := s.SaveBundle(bundle)

SELF-HEALING INSTRUCTIONS:
  - None specific.

RELATED FILES:
  - internal/model/bundle.go

MAINTENANCE:
  - Keep the file layout stable; report tooling globs test_results/.
*/

package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/daryltucker/persona-runner/internal/model"
)

const (
	CharactersDir  = "characters"
	TestResultsDir = "test_results"
	DocsDir        = "docs"
)

// Store writes artifacts under a base directory.
type Store struct {
	Dir string
	Now func() time.Time
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir, Now: time.Now}
}

// FileTimestamp renders t as ISO-8601 UTC with ':' replaced by '-'.
func FileTimestamp(t time.Time) string {
	return strings.ReplaceAll(t.UTC().Format("2006-01-02T15:04:05.000Z"), ":", "-")
}

var unsafeChars = regexp.MustCompile(`[/\\:*?"<>|]`)

// SafeName makes s usable as a single path element.
func SafeName(s string) string {
	return unsafeChars.ReplaceAllString(s, "_")
}

// SaveCharacter writes characters/<username>/<model>_<ts>.json.
func (s *Store) SaveCharacter(username string, m model.ModelConfig, c *model.Character) (string, error) {
	dir := filepath.Join(s.Dir, CharactersDir, SafeName(username))
	name := fmt.Sprintf("%s_%s.json", SafeName(m.Name), FileTimestamp(s.Now()))
	path := filepath.Join(dir, name)
	if err := writeJSON(path, c); err != nil {
		return "", fmt.Errorf("failed to save character for %s: %w", m.Name, err)
	}
	Logger.Info("Saved character", "model", m.Name, "path", path)
	return path, nil
}

// SaveBundle writes test_results/<subject>_multi_model_tests_<ts>.json.
func (s *Store) SaveBundle(b *model.ResultBundle) (string, error) {
	subject, err := bundleSubject(b)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_multi_model_tests_%s.json", subject, FileTimestamp(s.Now()))
	path := filepath.Join(s.Dir, TestResultsDir, name)
	if err := writeJSON(path, b); err != nil {
		return "", fmt.Errorf("failed to save results: %w", err)
	}
	Logger.Info("Saved results", "path", path)
	return path, nil
}

func bundleSubject(b *model.ResultBundle) (string, error) {
	switch {
	case b.IsMatrix():
		return SafeName(b.Username), nil
	case b.Character != nil && b.Character.Path != "":
		base := strings.TrimSuffix(filepath.Base(b.Character.Path), ".json")
		return SafeName(strings.Join(strings.Fields(base), "_")), nil
	case b.Character != nil && b.Character.Name != "":
		return SafeName(strings.Join(strings.Fields(b.Character.Name), "_")), nil
	}
	return "", errors.New("bundle has neither username nor character")
}

// LoadBundle reads a bundle written by SaveBundle.
func LoadBundle(path string) (*model.ResultBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}
	var b model.ResultBundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse results file %s: %w", path, err)
	}
	return &b, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Package character loads, discovers and generates persona files.
package character

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/daryltucker/persona-runner/internal/model"
	"github.com/daryltucker/persona-runner/internal/output"
)

// LoadFile reads and validates a character JSON file.
func LoadFile(path string) (*model.Character, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read character file: %w", err)
	}
	var c model.Character
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse character file %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// File is a discovered candidate character file.
type File struct {
	Name      string
	Path      string
	Directory string
}

// SearchDirs returns the default discovery order relative to root.
func SearchDirs(root string) []string {
	return []string{
		filepath.Join(root, "outputs", "characters"),
		filepath.Join(root, "characters"),
		root,
	}
}

// FindFiles lists *.json files in dirs, in directory order and by name
// within each directory. Missing directories are skipped.
func FindFiles(root string, dirs []string) []File {
	var files []File
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)

		rel, err := filepath.Rel(root, dir)
		if err != nil || rel == "" {
			rel = "."
		}
		for _, name := range names {
			files = append(files, File{Name: name, Path: filepath.Join(dir, name), Directory: rel})
		}
	}
	return files
}

// Discover picks the first character file under root and logs every
// candidate so the choice is visible.
func Discover(root string) (File, error) {
	files := FindFiles(root, SearchDirs(root))
	if len(files) == 0 {
		return File{}, fmt.Errorf("no character files found under %s", root)
	}
	for i, f := range files {
		output.Logger.Info("Found character file", "index", i+1, "name", f.Name, "dir", f.Directory)
	}
	output.Logger.Info("Using character file", "path", files[0].Path)
	return files[0], nil
}

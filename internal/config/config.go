/*
PURPOSE:
  Defines the configuration structure and loading logic for Persona Runner.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Configure the provider endpoint, model catalog, scoring models and
    sampling.
  - Refuse to start without an API key.

  Implementation-discovered:
  - YAML file with environment overrides (TOGETHER_API_KEY, PERSONA_RUNNER_...).
  - Model selection by name or 1-based catalog index.
  - max_models is capped at catalog.MaxModels.
  - The chat API drops zero temperature/top_p as unset, so the provider
    default would apply silently. Validate rejects them; use 0.01.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli
  - Dependencies: gopkg.in/yaml.v3

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing default files fall back to DefaultConfig.
  - Validate returns ErrMissingAPIKey before any work begins.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults mirror the catalog package.

USAGE:
  cfg, err := config.Load("persona_runner.yaml")
  cfg.ApplyEnv()
  err = cfg.Validate()

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct and update DefaultConfig().

RELATED FILES:
  - internal/cli/root.go
  - internal/catalog/models.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/daryltucker/persona-runner/internal/catalog"
	"github.com/daryltucker/persona-runner/internal/model"
	"github.com/daryltucker/persona-runner/internal/scoring"
)

// ErrMissingAPIKey is fatal: no provider call can succeed without it.
var ErrMissingAPIKey = errors.New("TOGETHER_API_KEY environment variable is not set")

const (
	EnvAPIKey    = "TOGETHER_API_KEY"
	EnvBaseURL   = "PERSONA_RUNNER_BASE_URL"
	EnvOutputDir = "PERSONA_RUNNER_OUTPUT_DIR"
)

// DefaultFiles are searched in order when no path is given.
var DefaultFiles = []string{"persona_runner.yaml", "runner.yaml"}

// Templates names optional override files for the embedded prompts.
type Templates struct {
	Reply     string `yaml:"reply"`
	Post      string `yaml:"post"`
	Character string `yaml:"character"`
}

// Config represents the full configuration for Persona Runner.
type Config struct {
	BaseURL           string               `yaml:"base_url"`
	APIKey            string               `yaml:"api_key"`
	OutputDir         string               `yaml:"output_dir"`
	JudgeModel        string               `yaml:"judge_model"`
	EmbeddingModel    string               `yaml:"embedding_model"`
	Sampling          model.SamplingParams `yaml:"sampling"`
	MaxCases          int                  `yaml:"max_cases"`
	MaxModels         int                  `yaml:"max_models"`
	MaxRetries        int                  `yaml:"max_retries"`
	RetryDelay        time.Duration        `yaml:"retry_delay"`
	CallTimeout       time.Duration        `yaml:"call_timeout"`
	RequestsPerSecond float64              `yaml:"requests_per_second"`
	// Seed fixes example sampling; 0 draws a fresh seed per run.
	Seed      uint64              `yaml:"seed"`
	Templates Templates           `yaml:"templates"`
	Models    []model.ModelConfig `yaml:"models"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://api.together.xyz/v1",
		OutputDir:      "outputs",
		JudgeModel:     scoring.DefaultJudgeModel,
		EmbeddingModel: scoring.DefaultEmbeddingModel,
		Sampling:       catalog.DefaultSampling,
		MaxCases:       catalog.DefaultMaxCases,
		MaxModels:      catalog.MaxModels,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
		CallTimeout:    2 * time.Minute,
		Models:         catalog.DefaultModels(),
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches DefaultFiles in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		found := false
		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
		}
		if !found {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if len(cfg.Models) == 0 {
		cfg.Models = catalog.DefaultModels()
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto the config.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
}

// Validate reports configuration that would make every call fail.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.BaseURL == "" {
		return errors.New("base_url is empty")
	}
	if c.MaxCases < 1 {
		return fmt.Errorf("max_cases must be positive, got %d", c.MaxCases)
	}
	if c.MaxModels < 1 || c.MaxModels > catalog.MaxModels {
		return fmt.Errorf("max_models must be between 1 and %d, got %d", catalog.MaxModels, c.MaxModels)
	}
	if c.Sampling.Temperature <= 0 {
		return fmt.Errorf("sampling.temperature must be positive, got %v", c.Sampling.Temperature)
	}
	if c.Sampling.TopP <= 0 {
		return fmt.Errorf("sampling.top_p must be positive, got %v", c.Sampling.TopP)
	}
	if len(c.Models) == 0 {
		return errors.New("model catalog is empty")
	}
	return nil
}

// SelectModels resolves selectors against the catalog. A selector is a
// model name, a model identifier or a 1-based index. With no selectors the
// first MaxModels entries are used.
func (c *Config) SelectModels(selectors []string) ([]model.ModelConfig, error) {
	limit := min(c.MaxModels, catalog.MaxModels)
	if len(selectors) == 0 {
		return append([]model.ModelConfig(nil), c.Models[:min(limit, len(c.Models))]...), nil
	}
	if len(selectors) > limit {
		return nil, fmt.Errorf("select at most %d models, got %d", limit, len(selectors))
	}

	seen := make(map[int]bool, len(selectors))
	selected := make([]model.ModelConfig, 0, len(selectors))
	for _, sel := range selectors {
		idx, err := c.lookup(strings.TrimSpace(sel))
		if err != nil {
			return nil, err
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		selected = append(selected, c.Models[idx])
	}
	return selected, nil
}

func (c *Config) lookup(sel string) (int, error) {
	if n, err := strconv.Atoi(sel); err == nil {
		if n < 1 || n > len(c.Models) {
			return 0, fmt.Errorf("model index %d out of range 1..%d", n, len(c.Models))
		}
		return n - 1, nil
	}
	for i, m := range c.Models {
		if m.Name == sel || m.Model == sel {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown model %q", sel)
}

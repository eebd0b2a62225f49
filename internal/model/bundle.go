package model

import (
	"encoding/json"
	"time"
)

// ModelRef is the bundle's record of a selected model.
type ModelRef struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// RefsFor converts model configs into bundle references.
func RefsFor(models []ModelConfig) []ModelRef {
	refs := make([]ModelRef, len(models))
	for i, m := range models {
		refs[i] = ModelRef{Name: m.Name, ID: m.Model}
	}
	return refs
}

// CharacterRef points at the character evaluated in existing-character mode.
type CharacterRef struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
}

// GeneratedEvaluation is one row of the generation matrix: a character
// produced by one model, evaluated by every model.
type GeneratedEvaluation struct {
	GeneratedBy   string         `json:"generatedBy"`
	GeneratedByID string         `json:"generatedById"`
	CharacterPath string         `json:"characterPath,omitempty"`
	Error         string         `json:"error,omitempty"`
	Results       []ModelSummary `json:"results"`
}

// ResultBundle is the persisted artifact of one run. Exactly one of
// Character (existing-character mode) or Username (matrix mode) is set, and
// the matching results field is used.
type ResultBundle struct {
	RunID     string
	Character *CharacterRef
	Username  string
	Models    []ModelRef
	Timestamp time.Time

	Results []ModelSummary
	Matrix  []GeneratedEvaluation
}

// IsMatrix reports whether the bundle came from the generation matrix.
func (b *ResultBundle) IsMatrix() bool {
	return b.Username != ""
}

type characterBundleJSON struct {
	RunID     string         `json:"runId,omitempty"`
	Character *CharacterRef  `json:"character"`
	Models    []ModelRef     `json:"models"`
	Timestamp time.Time      `json:"timestamp"`
	Results   []ModelSummary `json:"results"`
}

type matrixBundleJSON struct {
	RunID     string                `json:"runId,omitempty"`
	Username  string                `json:"username"`
	Models    []ModelRef            `json:"models"`
	Timestamp time.Time             `json:"timestamp"`
	Results   []GeneratedEvaluation `json:"results"`
}

// MarshalJSON writes the shape matching the bundle's mode.
func (b ResultBundle) MarshalJSON() ([]byte, error) {
	if b.IsMatrix() {
		return json.Marshal(matrixBundleJSON{
			RunID:     b.RunID,
			Username:  b.Username,
			Models:    b.Models,
			Timestamp: b.Timestamp,
			Results:   b.Matrix,
		})
	}
	return json.Marshal(characterBundleJSON{
		RunID:     b.RunID,
		Character: b.Character,
		Models:    b.Models,
		Timestamp: b.Timestamp,
		Results:   b.Results,
	})
}

// UnmarshalJSON picks the shape by the presence of a username.
func (b *ResultBundle) UnmarshalJSON(data []byte) error {
	var probe struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Username != "" {
		var m matrixBundleJSON
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*b = ResultBundle{RunID: m.RunID, Username: m.Username, Models: m.Models, Timestamp: m.Timestamp, Matrix: m.Results}
		return nil
	}
	var c characterBundleJSON
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	*b = ResultBundle{RunID: c.RunID, Character: c.Character, Models: c.Models, Timestamp: c.Timestamp, Results: c.Results}
	return nil
}

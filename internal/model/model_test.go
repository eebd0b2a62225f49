package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, (&Character{Name: "Ada"}).Validate())
	assert.ErrorIs(t, (&Character{Name: "  "}).Validate(), ErrEmptyName)

	var nilChar *Character
	assert.ErrorIs(t, nilChar.Validate(), ErrEmptyName)
}

func TestHandleFallsBackToName(t *testing.T) {
	assert.Equal(t, "Ada", (&Character{Name: "Ada"}).Handle())
	assert.Equal(t, "ada_l", (&Character{Name: "Ada", Username: "ada_l"}).Handle())
}

func TestMessageExamplesFlatten(t *testing.T) {
	data := []byte(`{
		"name": "Bob",
		"messageExamples": [
			[{"user": "u1", "content": {"text": "hi bob"}}, {"user": "Bob", "content": "gm"}],
			{"user": "Bob", "content": {"text": "wagmi"}},
			[{"user": "u2", "content": null}]
		]
	}`)
	var c Character
	require.NoError(t, json.Unmarshal(data, &c))
	require.Len(t, c.MessageExamples, 4)
	assert.Equal(t, "u1", c.MessageExamples[0].User)
	assert.Equal(t, []string{"hi bob", "gm", "wagmi"}, c.MessageExamples.Texts())
}

func TestMessageExamplesRejectsGarbage(t *testing.T) {
	var c Character
	assert.Error(t, json.Unmarshal([]byte(`{"messageExamples": [42]}`), &c))
	assert.Error(t, json.Unmarshal([]byte(`{"messageExamples": {"a": 1}}`), &c))
}

func TestMessageTextMarshalsObjectForm(t *testing.T) {
	out, err := json.Marshal(MessageExample{User: "Bob", Content: "gm"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":"Bob","content":{"text":"gm"}}`, string(out))
}

func TestReferenceCorpusOrder(t *testing.T) {
	c := &Character{
		PostExamples:    []string{"post one", "", "post two"},
		MessageExamples: MessageExamples{{Content: "msg"}, {Content: ""}},
	}
	assert.Equal(t, []string{"post one", "post two", "msg"}, c.ReferenceCorpus())
	assert.Empty(t, (&Character{}).ReferenceCorpus())
}

func TestZeroAndErrorMetrics(t *testing.T) {
	z := ZeroMetrics("note")
	require.NotNil(t, z.SemanticSimilarity)
	assert.Zero(t, *z.SemanticSimilarity)
	assert.Equal(t, "note", z.Note)
	assert.NotNil(t, z.CosineSimilarity.Scores)

	e := ErrorMetrics(errors.New("boom"))
	assert.Equal(t, "boom", e.Error)
	assert.Empty(t, e.Note)
}

func TestModelSummaryFailed(t *testing.T) {
	assert.False(t, ModelSummary{Model: "m"}.Failed())
	assert.True(t, ModelSummary{Model: "m", Error: "x"}.Failed())
}

func TestRefsFor(t *testing.T) {
	refs := RefsFor([]ModelConfig{{Name: "A", Model: "org/a"}, {Name: "B", Model: "org/b"}})
	assert.Equal(t, []ModelRef{{Name: "A", ID: "org/a"}, {Name: "B", ID: "org/b"}}, refs)
}

func TestBundleCharacterShape(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	b := ResultBundle{
		RunID:     "r1",
		Character: &CharacterRef{Name: "Ada", Path: "ada.json"},
		Models:    []ModelRef{{Name: "A", ID: "org/a"}},
		Timestamp: ts,
		Results:   []ModelSummary{{Model: "A", ModelID: "org/a", Results: []TestResult{}}},
	}
	data, err := json.Marshal(b)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "character")
	assert.NotContains(t, raw, "username")

	var back ResultBundle
	require.NoError(t, json.Unmarshal(data, &back))
	assert.False(t, back.IsMatrix())
	assert.Equal(t, b.Character, back.Character)
	assert.True(t, ts.Equal(back.Timestamp))
	require.Len(t, back.Results, 1)
	assert.Equal(t, "A", back.Results[0].Model)
	assert.Nil(t, back.Matrix)
}

func TestBundleMatrixShape(t *testing.T) {
	b := ResultBundle{
		Username: "ada",
		Models:   []ModelRef{{Name: "A", ID: "org/a"}},
		Matrix: []GeneratedEvaluation{
			{GeneratedBy: "A", GeneratedByID: "org/a", CharacterPath: "c.json", Results: []ModelSummary{{Model: "A"}}},
			{GeneratedBy: "B", GeneratedByID: "org/b", Error: "generation failed", Results: []ModelSummary{}},
		},
	}
	data, err := json.Marshal(b)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "character")

	var back ResultBundle
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.IsMatrix())
	assert.Equal(t, "ada", back.Username)
	require.Len(t, back.Matrix, 2)
	assert.Equal(t, "generation failed", back.Matrix[1].Error)
	assert.Empty(t, back.Matrix[1].Results)
	assert.Nil(t, back.Results)
}

func TestBundleUnmarshalInvalid(t *testing.T) {
	var b ResultBundle
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &b))
}

package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/persona-runner/internal/llm"
	"github.com/daryltucker/persona-runner/internal/model"
)

type scriptedJudge struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	prompts []string
}

func (j *scriptedJudge) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	i := len(j.prompts)
	j.prompts = append(j.prompts, req.UserPrompt)
	var err error
	if i < len(j.errs) {
		err = j.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(j.replies) {
		return j.replies[i], nil
	}
	return "", nil
}

// letterEmbedder embeds text as letter frequencies, so similar strings
// land close together.
type letterEmbedder struct {
	err    error
	inputs []string
}

func (e *letterEmbedder) Embed(_ context.Context, _ string, inputs []string) ([][]float32, error) {
	e.inputs = inputs
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		v := make([]float32, 26)
		for _, r := range strings.ToLower(in) {
			if r >= 'a' && r <= 'z' {
				v[r-'a']++
			}
		}
		out[i] = v
	}
	return out, nil
}

func testCharacter() *model.Character {
	return &model.Character{
		Name: "Ada",
		PostExamples: []string{
			"engines compute numbers all day",
			"poetry is the science of feeling",
			"the analytical engine weaves algebra",
		},
	}
}

func TestCosineSelfIsOne(t *testing.T) {
	v := []float32{0.3, -1.2, 4, 0.01}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
}

func TestCosineSymmetricAndBounded(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{-1, -1, 0.5},
		{3, 2, 1},
		{-3, -2, -1},
	}
	for _, a := range vectors {
		for _, b := range vectors {
			ab := CosineSimilarity(a, b)
			assert.InDelta(t, ab, CosineSimilarity(b, a), 1e-12)
			assert.GreaterOrEqual(t, ab, -1.0-1e-9)
			assert.LessOrEqual(t, ab, 1.0+1e-9)
		}
	}
	assert.InDelta(t, -1.0, CosineSimilarity(vectors[3], vectors[4]), 1e-9)
}

func TestCosineDegenerateInputs(t *testing.T) {
	assert.Zero(t, CosineSimilarity([]float32{1, 2}, []float32{1}))
	assert.Zero(t, CosineSimilarity(nil, nil))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestExtractScore(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"labelled", "Similarity Score: 85", 0.85},
		{"score decimal", "score: 78.5", 0.785},
		{"rating", "Rating = 60", 0.6},
		{"slash", "42/100", 0.42},
		{"out of", "I'd give it 70 out of 100", 0.7},
		{"bare number", "90", 0.9},
		{"already normalized", "0.65", 0.65},
		{"keyword high", "excellent match", 0.85},
		{"keyword moderate", "somewhat similar overall", 0.5},
		{"keyword low", "poor", 0.2},
		{"nothing", "no idea", 0},
		{"empty", "", 0},
		{"clamped", "Score: 250", 1},
		{"label beats bare", "Score: 85 (3 examples)", 0.85},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ExtractScore(tt.in), 1e-9)
		})
	}
}

func TestScoreNoExamples(t *testing.T) {
	judge := &scriptedJudge{}
	emb := &letterEmbedder{}
	s := NewScorer(judge, emb)

	m := s.Score(context.Background(), "hello", &model.Character{Name: "Empty"})
	require.NotNil(t, m)
	assert.Equal(t, NoExamplesNote, m.Note)
	assert.Empty(t, m.Error)
	require.NotNil(t, m.SemanticSimilarity)
	assert.Zero(t, *m.SemanticSimilarity)
	assert.Zero(t, m.CosineSimilarity.Average)
	assert.Nil(t, emb.inputs)
	assert.Empty(t, judge.prompts)
}

func TestScoreEndToEnd(t *testing.T) {
	judge := &scriptedJudge{replies: []string{"Similarity Score: 72"}}
	emb := &letterEmbedder{}
	c := testCharacter()
	s := NewScorer(judge, emb)

	m := s.Score(context.Background(), "my engine computes algebra", c)
	require.NotNil(t, m)
	assert.Empty(t, m.Error)

	require.Len(t, emb.inputs, 4)
	assert.Equal(t, "my engine computes algebra", emb.inputs[0])
	assert.Equal(t, c.PostExamples, emb.inputs[1:])

	require.NotNil(t, m.CosineSimilarity)
	assert.Len(t, m.CosineSimilarity.Scores, 3)
	assert.GreaterOrEqual(t, m.CosineSimilarity.Max, m.CosineSimilarity.Average)
	require.NotNil(t, m.MostSimilarExample)
	assert.Contains(t, c.PostExamples, m.MostSimilarExample.Text)
	assert.Equal(t, m.CosineSimilarity.Max, m.MostSimilarExample.Similarity)

	require.NotNil(t, m.SemanticSimilarity)
	assert.InDelta(t, 0.72, *m.SemanticSimilarity, 1e-9)
	require.Len(t, judge.prompts, 1)
	assert.Contains(t, judge.prompts[0], "my engine computes algebra")
	assert.Contains(t, judge.prompts[0], "the analytical engine weaves algebra")
}

func TestScoreJudgeSeesAtMostThreeExamples(t *testing.T) {
	c := testCharacter()
	c.PostExamples = append(c.PostExamples, "fourth example never shown")
	judge := &scriptedJudge{replies: []string{"50"}}

	NewScorer(judge, &letterEmbedder{}).Score(context.Background(), "x", c)
	require.Len(t, judge.prompts, 1)
	assert.NotContains(t, judge.prompts[0], "fourth example never shown")
}

func TestScoreRetriesWithBackupPrompt(t *testing.T) {
	judge := &scriptedJudge{replies: []string{"???", "64"}}
	c := testCharacter()

	m := NewScorer(judge, &letterEmbedder{}).Score(context.Background(), "reply", c)
	require.Len(t, judge.prompts, 2)
	assert.Contains(t, judge.prompts[1], "Answer with just a number")
	assert.Contains(t, judge.prompts[1], c.PostExamples[1])
	assert.NotContains(t, judge.prompts[1], c.PostExamples[2])
	assert.InDelta(t, 0.64, *m.SemanticSimilarity, 1e-9)
}

func TestScoreBackupFailureKeepsZero(t *testing.T) {
	judge := &scriptedJudge{replies: []string{"nothing"}, errs: []error{nil, errors.New("backup down")}}

	m := NewScorer(judge, &letterEmbedder{}).Score(context.Background(), "reply", testCharacter())
	assert.Empty(t, m.Error)
	assert.Zero(t, *m.SemanticSimilarity)
	assert.NotNil(t, m.MostSimilarExample)
}

func TestScoreEmbeddingErrorDegrades(t *testing.T) {
	judge := &scriptedJudge{}
	m := NewScorer(judge, &letterEmbedder{err: errors.New("embeddings unavailable")}).
		Score(context.Background(), "reply", testCharacter())

	require.NotNil(t, m)
	assert.Contains(t, m.Error, "embeddings unavailable")
	require.NotNil(t, m.SemanticSimilarity)
	assert.Zero(t, *m.SemanticSimilarity)
	assert.Empty(t, judge.prompts)
}

// constEmbedder returns the same vector for every input.
type constEmbedder struct {
	vector []float32
}

func (e constEmbedder) Embed(_ context.Context, _ string, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = e.vector
	}
	return out, nil
}

func TestScoreNonFiniteEmbeddingDegrades(t *testing.T) {
	for _, v := range [][]float32{
		{float32(math.NaN()), 1},
		{float32(math.Inf(1)), 1},
	} {
		judge := &scriptedJudge{replies: []string{"80"}}
		m := NewScorer(judge, constEmbedder{vector: v}).Score(context.Background(), "reply", testCharacter())

		require.NotNil(t, m)
		assert.Contains(t, m.Error, "non-finite")
		assert.Zero(t, m.CosineSimilarity.Average)
		assert.Empty(t, judge.prompts)

		_, err := json.Marshal(m)
		assert.NoError(t, err)
	}
}

func TestScoreJudgeErrorDegrades(t *testing.T) {
	judge := &scriptedJudge{errs: []error{errors.New("judge timeout")}}
	m := NewScorer(judge, &letterEmbedder{}).Score(context.Background(), "reply", testCharacter())

	assert.Contains(t, m.Error, "judge timeout")
	assert.Nil(t, m.MostSimilarExample)
}

func TestScoreUsesMessageExamples(t *testing.T) {
	c := &model.Character{
		Name:            "Bob",
		MessageExamples: model.MessageExamples{{User: "Bob", Content: "gm builders"}},
	}
	emb := &letterEmbedder{}
	m := NewScorer(&scriptedJudge{replies: []string{"80"}}, emb).Score(context.Background(), "gm", c)

	assert.Equal(t, []string{"gm", "gm builders"}, emb.inputs)
	assert.Equal(t, "gm builders", m.MostSimilarExample.Text)
}

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/persona-runner/internal/model"
)

func ptr(v float64) *float64 { return &v }

func scored(kind model.TestKind, cosine *float64, semantic *float64) model.TestResult {
	m := &model.SimilarityMetrics{SemanticSimilarity: semantic}
	if cosine != nil {
		m.CosineSimilarity = &model.CosineScores{Average: *cosine}
	}
	return model.TestResult{TestType: kind, SimilarityMetrics: m}
}

func TestAggregateEmpty(t *testing.T) {
	assert.Nil(t, Aggregate(nil))
	assert.Nil(t, Aggregate([]model.TestResult{}))
}

func TestAggregateNoUsableMetrics(t *testing.T) {
	assert.Nil(t, Aggregate([]model.TestResult{{TestType: model.KindReply}}))
}

func TestAggregateMeans(t *testing.T) {
	s := Aggregate([]model.TestResult{
		scored(model.KindReply, ptr(0.2), ptr(0.5)),
		scored(model.KindReply, ptr(0.4), ptr(0.7)),
	})
	require.NotNil(t, s)
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 2, s.ValidResults)
	assert.InDelta(t, 0.3, s.CosineSimilarity, 1e-9)
	assert.InDelta(t, 0.6, s.SemanticSimilarity, 1e-9)
}

func TestAggregatePartialSemantic(t *testing.T) {
	s := Aggregate([]model.TestResult{
		scored(model.KindReply, ptr(0.2), ptr(0.9)),
		scored(model.KindReply, ptr(0.4), nil),
		scored(model.KindReply, ptr(0.6), nil),
		{TestType: model.KindReply},
	})
	require.NotNil(t, s)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 3, s.ValidResults)
	assert.InDelta(t, 0.4, s.CosineSimilarity, 1e-9)
	assert.InDelta(t, 0.9, s.SemanticSimilarity, 1e-9)
}

func TestAggregatePartialCosine(t *testing.T) {
	s := Aggregate([]model.TestResult{
		scored(model.KindPost, nil, ptr(0.3)),
		scored(model.KindPost, ptr(0.8), ptr(0.5)),
	})
	require.NotNil(t, s)
	assert.InDelta(t, 0.8, s.CosineSimilarity, 1e-9)
	assert.InDelta(t, 0.4, s.SemanticSimilarity, 1e-9)
}

func TestAggregateFieldMissingEverywhere(t *testing.T) {
	s := Aggregate([]model.TestResult{scored(model.KindPost, ptr(0.5), nil)})
	require.NotNil(t, s)
	assert.Zero(t, s.SemanticSimilarity)
}

func TestBreakdownSplitsByKind(t *testing.T) {
	b := Breakdown([]model.TestResult{
		scored(model.KindReply, ptr(0.2), ptr(0.2)),
		scored(model.KindReply, ptr(0.4), ptr(0.4)),
		scored(model.KindPost, ptr(0.9), ptr(0.9)),
	})
	require.NotNil(t, b.Overall)
	require.NotNil(t, b.Replies)
	require.NotNil(t, b.Posts)
	assert.Equal(t, 3, b.Overall.Count)
	assert.Equal(t, 2, b.Replies.Count)
	assert.InDelta(t, 0.3, b.Replies.CosineSimilarity, 1e-9)
	assert.Equal(t, 1, b.Posts.Count)
}

func TestBreakdownRepliesOnly(t *testing.T) {
	b := Breakdown([]model.TestResult{scored(model.KindReply, ptr(0.1), ptr(0.1))})
	assert.NotNil(t, b.Replies)
	assert.Nil(t, b.Posts)
}

/*
PURPOSE:
  Reduces scored test results into per-category summaries.

REQUIREMENTS:
  User-specified:
  - Overall, reply and post averages for every model run.

  Implementation-discovered:
  - Bundles loaded from disk may lack one score field; each mean is taken
    over the entries where that field is present.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go
  - Consumes: internal/model.TestResult

ERROR HANDLING:
  - None. No usable data yields nil, never a zero summary.

IMPLEMENTATION RULES:
  - Count is every input; ValidResults is entries carrying metrics.

USAGE:
  s := metrics.Breakdown(results)

SELF-HEALING INSTRUCTIONS:
  - If the report shows N/A unexpectedly, check scorer output for nil metrics.

RELATED FILES:
  - internal/model/types.go
  - internal/output/table.go

MAINTENANCE:
  - Update when a new score field is added to SimilarityMetrics.
*/

// Package metrics reduces scored results into per-category summaries.
package metrics

import (
	"github.com/daryltucker/persona-runner/internal/model"
	"github.com/daryltucker/persona-runner/internal/output"
)

// Aggregate summarizes results. It returns nil when there is nothing usable
// to average, so "no data" stays distinct from a zero score.
//
// Cosine and semantic means are computed independently, each over the
// entries where that particular field is present.
func Aggregate(results []model.TestResult) *model.CategorySummary {
	if len(results) == 0 {
		return nil
	}

	var (
		valid                    int
		cosineSum, semanticSum   float64
		cosineN, semanticN       int
		cosineSeen, semanticSeen []float64
	)
	for _, r := range results {
		m := r.SimilarityMetrics
		if m == nil {
			continue
		}
		valid++
		if m.CosineSimilarity != nil {
			cosineSum += m.CosineSimilarity.Average
			cosineN++
			cosineSeen = append(cosineSeen, m.CosineSimilarity.Average)
		}
		if m.SemanticSimilarity != nil {
			semanticSum += *m.SemanticSimilarity
			semanticN++
			semanticSeen = append(semanticSeen, *m.SemanticSimilarity)
		}
	}
	if valid == 0 {
		return nil
	}

	summary := &model.CategorySummary{
		Count:              len(results),
		ValidResults:       valid,
		CosineSimilarity:   mean(cosineSum, cosineN),
		SemanticSimilarity: mean(semanticSum, semanticN),
	}
	output.Logger.Debug("Average metrics calculation",
		"total", summary.Count,
		"valid", summary.ValidResults,
		"cosine_scores", cosineSeen,
		"semantic_scores", semanticSeen,
		"cosine_avg", summary.CosineSimilarity,
		"semantic_avg", summary.SemanticSimilarity,
	)
	return summary
}

// Breakdown aggregates results overall and split by test kind.
func Breakdown(results []model.TestResult) *model.SummaryBreakdown {
	var replies, posts []model.TestResult
	for _, r := range results {
		switch r.TestType {
		case model.KindReply:
			replies = append(replies, r)
		case model.KindPost:
			posts = append(posts, r)
		}
	}
	return &model.SummaryBreakdown{
		Overall: Aggregate(results),
		Replies: Aggregate(replies),
		Posts:   Aggregate(posts),
	}
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

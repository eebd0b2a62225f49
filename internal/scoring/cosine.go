/*
PURPOSE:
  Embedding cosine similarity between a response and each reference example.

REQUIREMENTS:
  User-specified:
  - Report per-example scores, their mean, the maximum and the closest example.

  Implementation-discovered:
  - Degenerate vectors (length mismatch, empty, zero norm) score 0, not NaN.
  - Non-finite input still propagates; similarity.go turns it into an error.

ARCHITECTURE INTEGRATION:
  - Called by: internal/scoring/similarity.go

ERROR HANDLING:
  - None. Pure math.

IMPLEMENTATION RULES:
  - Accumulate in float64 even though embeddings arrive as float32.

USAGE:
  s := scoring.CosineSimilarity(a, b)

SELF-HEALING INSTRUCTIONS:
  - If scores look constant, check the embedder preserves input order.

RELATED FILES:
  - internal/scoring/similarity.go
  - internal/llm/client.go (alignEmbeddings)

MAINTENANCE:
  - None.
*/

package scoring

import "math"

// CosineSimilarity computes dot(a,b) / (|a|*|b|).
// Returns 0 if the vectors differ in length, are empty, or either has zero norm.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// cosineScores compares response against every reference and returns the
// per-reference scores, their mean, the maximum and its index.
func cosineScores(response []float32, refs [][]float32) (scores []float64, avg, maxScore float64, maxIdx int) {
	scores = make([]float64, len(refs))
	maxScore = math.Inf(-1)
	var sum float64
	for i, ref := range refs {
		s := CosineSimilarity(response, ref)
		scores[i] = s
		sum += s
		if s > maxScore {
			maxScore = s
			maxIdx = i
		}
	}
	if len(refs) == 0 {
		return scores, 0, 0, -1
	}
	return scores, sum / float64(len(refs)), maxScore, maxIdx
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

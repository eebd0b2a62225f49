/*
PURPOSE:
  Reads a 0-1 similarity score out of free-form judge output.

REQUIREMENTS:
  User-specified:
  - Accept "Score: 85", "85/100", "85 out of 100" and bare numbers.
  - Fall back to quality keywords when no number is present.

  Implementation-discovered:
  - Judges answer on either a 0-100 or a 0-1 scale; values above 1 are
    divided by 100, then clamped to [0,1].

ARCHITECTURE INTEGRATION:
  - Called by: internal/scoring/similarity.go

ERROR HANDLING:
  - None. Unreadable output scores 0, which triggers the backup prompt.

IMPLEMENTATION RULES:
  - Matchers run in order; the first hit wins. Labelled patterns precede
    bare numbers so "Score: 85 (3 examples)" reads 85.

USAGE:
  v := scoring.ExtractScore("Similarity Score: 72")

SELF-HEALING INSTRUCTIONS:
  - New judge phrasing: add a matcher, then a row to TestExtractScore.

RELATED FILES:
  - internal/scoring/similarity.go

MAINTENANCE:
  - Keep keyword buckets in sync with the judge prompt wording.
*/

package scoring

import (
	"regexp"
	"strconv"
)

// scoreMatcher tries to read a score out of free-form judge output.
type scoreMatcher func(text string) (float64, bool)

func numberMatcher(re *regexp.Regexp) scoreMatcher {
	return func(text string) (float64, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return 0, false
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		return normalize(v), true
	}
}

func keywordMatcher(re *regexp.Regexp, score float64) scoreMatcher {
	return func(text string) (float64, bool) {
		if re.MatchString(text) {
			return score, true
		}
		return 0, false
	}
}

// matchers are tried in order; the first hit wins. Labelled patterns come
// before the bare-number fallback so "Score: 85 (rated 3rd)" reads 85.
var matchers = []scoreMatcher{
	numberMatcher(regexp.MustCompile(`(?i)similarity(?:\s+score)?(?:\s*[:=]\s*)(\d+(?:\.\d+)?)`)),
	numberMatcher(regexp.MustCompile(`(?i)score(?:\s*[:=]\s*)(\d+(?:\.\d+)?)`)),
	numberMatcher(regexp.MustCompile(`(?i)rating(?:\s*[:=]\s*)(\d+(?:\.\d+)?)`)),
	numberMatcher(regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:/|out of)\s*100`)),
	numberMatcher(regexp.MustCompile(`\b(\d+(?:\.\d+)?)\b`)),
	keywordMatcher(regexp.MustCompile(`(?i)high|strong|excellent|very similar`), 0.85),
	keywordMatcher(regexp.MustCompile(`(?i)good|moderate|average|somewhat similar`), 0.5),
	keywordMatcher(regexp.MustCompile(`(?i)low|poor|weak|not similar`), 0.2),
}

// ExtractScore parses a judge reply into a score in [0,1]. Returns 0 when
// nothing matches.
func ExtractScore(text string) float64 {
	for _, match := range matchers {
		if v, ok := match(text); ok {
			return v
		}
	}
	return 0
}

// normalize maps 0-100 scores onto 0-1 and clamps the result.
func normalize(v float64) float64 {
	if v > 1 {
		v /= 100
	}
	return min(max(v, 0), 1)
}

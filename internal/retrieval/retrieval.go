package retrieval

import (
	"crypto/md5"
	"encoding/hex"
	"math"
	"sort"
	"strings"

	"github.com/ragkb/ragkb/internal/normalize"
)

// DefaultConfig returns the spec's default tuning.
func DefaultConfig() Config {
	return Config{TopK: 5, SimilarityThreshold: DefaultSimilarityThreshold}
}

// Process runs the full post-processing pipeline: KB filter, distance
// filter, content-hash dedup, weighted rerank, truncate (spec.md §4.7).
// queryText may be empty, in which case step 4 collapses to sorting by
// ascending raw distance.
func Process(raw []RawResult, kbID string, queryText string, cfg Config) []Result {
	if cfg.TopK == 0 {
		return nil
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}

	filtered := make([]RawResult, 0, len(raw))
	for _, r := range raw {
		if r.KBID != kbID {
			continue
		}
		if r.Distance > cfg.SimilarityThreshold {
			continue
		}
		filtered = append(filtered, r)
	}

	deduped := dedup(filtered)

	var results []Result
	if strings.TrimSpace(queryText) == "" {
		results = rankByDistance(deduped)
	} else {
		results = rerank(deduped, queryText)
	}

	if cfg.TopK > 0 && len(results) > cfg.TopK {
		results = results[:cfg.TopK]
	}
	return results
}

// dedup groups results by md5(lowercase_trimmed_content) and keeps the
// smallest-distance member of each group (spec.md §4.7 step 3).
func dedup(results []RawResult) []RawResult {
	best := make(map[string]RawResult)
	order := make([]string, 0, len(results))
	for _, r := range results {
		key := contentHash(r.Content)
		cur, ok := best[key]
		if !ok {
			order = append(order, key)
			best[key] = r
			continue
		}
		if r.Distance < cur.Distance {
			best[key] = r
		}
	}
	out := make([]RawResult, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

func contentHash(content string) string {
	normalized := strings.TrimSpace(strings.ToLower(content))
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// rankByDistance sorts ascending by raw distance, used when no query text
// is available to drive the keyword/completeness signals.
func rankByDistance(results []RawResult) []Result {
	sorted := make([]RawResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Distance < sorted[j].Distance })

	out := make([]Result, len(sorted))
	for i, r := range sorted {
		out[i] = Result{ChunkID: r.ChunkID, Content: r.Content, Distance: r.Distance, Metadata: r.Metadata}
	}
	return out
}

// rerank scores and sorts results by the weighted composite from spec.md
// §4.7 step 4.
func rerank(results []RawResult, queryText string) []Result {
	vectorScores := normalizeVectorScores(results)
	keywords := normalize.Normalize(queryText).Keywords

	out := make([]Result, len(results))
	for i, r := range results {
		vScore := vectorScores[i]
		kScore := keywordScore(r.Content, keywords)
		cScore := completenessScore(r.Content)
		combined := 0.5*vScore + 0.3*kScore + 0.2*cScore

		out[i] = Result{
			ChunkID:  r.ChunkID,
			Content:  r.Content,
			Distance: r.Distance,
			Metadata: r.Metadata,
			Breakdown: Breakdown{
				VectorScore:       vScore,
				KeywordScore:      kScore,
				CompletenessScore: cScore,
				CombinedScore:     combined,
			},
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Breakdown.CombinedScore > out[j].Breakdown.CombinedScore })
	return out
}

// normalizeVectorScores computes vector_score = 1 - normalize(distance) via
// min-max over the surviving results, falling back to 1/(1+distance) when
// every distance is equal (min-max would divide by zero).
func normalizeVectorScores(results []RawResult) []float64 {
	scores := make([]float64, len(results))
	if len(results) == 0 {
		return scores
	}

	minD, maxD := results[0].Distance, results[0].Distance
	for _, r := range results {
		if r.Distance < minD {
			minD = r.Distance
		}
		if r.Distance > maxD {
			maxD = r.Distance
		}
	}

	if maxD == minD {
		for i, r := range results {
			scores[i] = 1.0 / (1.0 + float64(r.Distance))
		}
		return scores
	}

	span := float64(maxD - minD)
	for i, r := range results {
		normalized := float64(r.Distance-minD) / span
		scores[i] = 1.0 - normalized
	}
	return scores
}

func keywordScore(content string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(content)
	var hits int
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

func completenessScore(content string) float64 {
	return math.Min(float64(len(content))/200.0, 1.0)
}

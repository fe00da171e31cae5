package confidence

import (
	"math"
	"regexp"
	"strings"

	"github.com/ragkb/ragkb/internal/normalize"
)

// hedgingPhrases is a fixed small list of phrases that signal the model is
// uncertain about its own answer (spec.md §4.8 answer_quality).
var hedgingPhrases = []string{
	"might", "may", "could", "possibly", "perhaps", "likely", "probably",
	"i think", "i believe", "it seems", "not sure", "unsure", "unclear",
}

var digitRunPattern = regexp.MustCompile(`\d+`)
var sentenceSplitPattern = regexp.MustCompile(`[.!?]+`)
var intraSentencePunctPattern = regexp.MustCompile(`[,;:]`)

// Score runs all five dimensions and combines them with the fixed weights
// from spec.md §4.8.
func Score(question, answer string, documents []Document) Result {
	return ScoreWithWeights(question, answer, documents, DefaultWeights())
}

// ScoreWithWeights is Score with caller-supplied weights, for operators who
// override the §6 "confidence weights" config keys away from the §4.8
// fixed defaults.
func ScoreWithWeights(question, answer string, documents []Document, weights Weights) Result {
	breakdown := Breakdown{
		Retrieval:     retrievalScore(documents),
		Completeness:  completenessScore(answer),
		KeywordMatch:  keywordMatchScore(question, answer),
		AnswerQuality: answerQualityScore(answer),
		Consistency:   consistencyScore(answer, documents),
	}

	overall := weights.Retrieval*breakdown.Retrieval +
		weights.Completeness*breakdown.Completeness +
		weights.KeywordMatch*breakdown.KeywordMatch +
		weights.AnswerQuality*breakdown.AnswerQuality +
		weights.Consistency*breakdown.Consistency

	return Result{
		Overall:   overall,
		Breakdown: breakdown,
		Level:     levelFor(overall),
	}
}

func levelFor(overall float64) Level {
	switch {
	case overall < 0.5:
		return LevelLow
	case overall < 0.75:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// retrievalScore transforms each document's distance to a similarity via
// 1/(1+distance), then blends the max and mean similarity.
func retrievalScore(documents []Document) float64 {
	if len(documents) == 0 {
		return 0
	}
	var maxSim, sumSim float64
	for i, d := range documents {
		sim := 1.0 / (1.0 + float64(d.Distance))
		if i == 0 || sim > maxSim {
			maxSim = sim
		}
		sumSim += sim
	}
	meanSim := sumSim / float64(len(documents))
	return 0.8*maxSim + 0.2*meanSim
}

// anchor is one point of the piecewise-linear length curve.
type anchor struct {
	x, y float64
}

var completenessLengthAnchors = []anchor{
	{0, 0},
	{50, 0.3},
	{150, 0.6},
	{300, 0.8},
	{600, 1.0},
}

func completenessScore(answer string) float64 {
	lengthFactor := piecewiseLinear(float64(len(answer)), completenessLengthAnchors)
	sentenceFactor := sentenceCountFactor(countSentences(answer))
	return 0.6*lengthFactor + 0.4*sentenceFactor
}

// piecewiseLinear interpolates y for x across a sorted-by-x anchor list,
// clamping to the first/last anchor's y outside the covered range.
func piecewiseLinear(x float64, anchors []anchor) float64 {
	if x <= anchors[0].x {
		return anchors[0].y
	}
	last := anchors[len(anchors)-1]
	if x >= last.x {
		return last.y
	}
	for i := 0; i < len(anchors)-1; i++ {
		lo, hi := anchors[i], anchors[i+1]
		if x >= lo.x && x <= hi.x {
			frac := (x - lo.x) / (hi.x - lo.x)
			return lo.y + frac*(hi.y-lo.y)
		}
	}
	return last.y
}

func sentenceCountFactor(n int) float64 {
	switch {
	case n <= 0:
		return 0.3
	case n == 1:
		return 0.6
	case n == 2:
		return 0.75
	default:
		return 1.0
	}
}

func countSentences(text string) int {
	var count int
	for _, piece := range sentenceSplitPattern.Split(text, -1) {
		if strings.TrimSpace(piece) != "" {
			count++
		}
	}
	return count
}

func keywordMatchScore(question, answer string) float64 {
	keywords := normalize.Normalize(question).Keywords
	if len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(answer)
	var hits int
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

func answerQualityScore(answer string) float64 {
	score := 0.5
	trimmed := strings.TrimSpace(answer)
	lower := strings.ToLower(trimmed)

	if strings.ContainsAny(trimmed, ".!?") {
		score += 0.1
	}
	if len(intraSentencePunctPattern.FindAllString(trimmed, -1)) >= 2 {
		score += 0.1
	}

	ratio := uniqueWordRatio(lower)
	if ratio > 0.7 {
		score += 0.1
	}
	if ratio > 0.8 {
		score += 0.1
	}

	switch hedgeCount := countHedges(lower); {
	case hedgeCount >= 2:
		score += 0.2
	case hedgeCount == 1:
		score += 0.1
	}

	length := len(trimmed)
	if length > 100 && length < 1000 {
		score += 0.15
	}
	if length > 200 && length < 800 {
		score += 0.05
	}

	return math.Min(score, 1.0)
}

func uniqueWordRatio(lower string) float64 {
	words := strings.Fields(lower)
	if len(words) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return float64(len(seen)) / float64(len(words))
}

func countHedges(lower string) int {
	var count int
	for _, phrase := range hedgingPhrases {
		count += strings.Count(lower, phrase)
	}
	return count
}

// consistencyScore blends digit-run overlap and keyword overlap between the
// answer and the concatenated retrieved-document text. Absence of digits or
// keywords in the answer defaults that sub-component to 1.0 rather than
// punishing an answer that simply has nothing to check.
func consistencyScore(answer string, documents []Document) float64 {
	corpus := strings.ToLower(concatDocuments(documents))

	digitScore := 1.0
	if digits := digitRunPattern.FindAllString(answer, -1); len(digits) > 0 {
		var hits int
		for _, d := range digits {
			if strings.Contains(corpus, d) {
				hits++
			}
		}
		digitScore = float64(hits) / float64(len(digits))
	}

	keywordScore := 1.0
	if keywords := normalize.Normalize(answer).Keywords; len(keywords) > 0 {
		var hits int
		for _, kw := range keywords {
			if strings.Contains(corpus, kw) {
				hits++
			}
		}
		keywordScore = float64(hits) / float64(len(keywords))
	}

	return 0.2*digitScore + 0.8*keywordScore
}

func concatDocuments(documents []Document) string {
	var sb strings.Builder
	for _, d := range documents {
		sb.WriteString(d.Content)
		sb.WriteString(" ")
	}
	return sb.String()
}

package confidence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_OverallWithinUnitInterval(t *testing.T) {
	docs := []Document{
		{Content: "Go channels coordinate goroutines safely.", Distance: 0.1},
		{Content: "A channel is a typed conduit for communication.", Distance: 0.4},
	}
	result := Score("what are channels in go", "Channels are a typed conduit used to coordinate goroutines. They are safe for concurrent use.", docs)
	assert.GreaterOrEqual(t, result.Overall, 0.0)
	assert.LessOrEqual(t, result.Overall, 1.0)
}

func TestScore_OverallEqualsWeightedSumOfBreakdown(t *testing.T) {
	docs := []Document{{Content: "some context", Distance: 0.2}}
	result := Score("a question", "an answer with enough content to matter here.", docs)

	w := DefaultWeights()
	expected := w.Retrieval*result.Breakdown.Retrieval +
		w.Completeness*result.Breakdown.Completeness +
		w.KeywordMatch*result.Breakdown.KeywordMatch +
		w.AnswerQuality*result.Breakdown.AnswerQuality +
		w.Consistency*result.Breakdown.Consistency

	assert.InDelta(t, expected, result.Overall, 1e-9)
}

func TestRetrievalScore_EmptyDocumentsIsZero(t *testing.T) {
	assert.Equal(t, 0.0, retrievalScore(nil))
}

func TestRetrievalScore_ClosestDocumentDominates(t *testing.T) {
	close := retrievalScore([]Document{{Distance: 0}})
	far := retrievalScore([]Document{{Distance: 100}})
	assert.Greater(t, close, far)
}

func TestCompletenessScore_LongerAnswerWithMultipleSentencesScoresHigher(t *testing.T) {
	short := completenessScore("Yes.")
	long := completenessScore(strings.Repeat("This is a reasonably detailed sentence. ", 10))
	assert.Greater(t, long, short)
}

func TestKeywordMatchScore_NoOverlapIsZero(t *testing.T) {
	score := keywordMatchScore("what is the capital of france", "bananas are yellow fruit")
	assert.Equal(t, 0.0, score)
}

func TestKeywordMatchScore_FullOverlapIsOne(t *testing.T) {
	score := keywordMatchScore("what is photosynthesis", "photosynthesis is how plants convert light into energy")
	assert.Equal(t, 1.0, score)
}

func TestAnswerQualityScore_HedgingAndPunctuationRaiseScore(t *testing.T) {
	plain := answerQualityScore("fact")
	hedged := answerQualityScore("It might be the case that this is correct, probably, but I am not sure.")
	assert.Greater(t, hedged, plain)
}

func TestAnswerQualityScore_NeverExceedsOne(t *testing.T) {
	answer := "It might be the case, possibly, perhaps, likely, probably, and I believe it seems unclear and unsure. " +
		strings.Repeat("unique word variety here with many distinct terms filling out the length nicely. ", 5)
	score := answerQualityScore(answer)
	assert.LessOrEqual(t, score, 1.0)
}

func TestConsistencyScore_NoDigitsOrKeywordsDefaultsToOne(t *testing.T) {
	score := consistencyScore("", nil)
	assert.Equal(t, 1.0, score)
}

func TestConsistencyScore_DigitsAndKeywordsFoundInDocumentsScoreHigh(t *testing.T) {
	docs := []Document{{Content: "the release shipped in 2024 with full support for widgets"}}
	score := consistencyScore("it shipped in 2024 with widgets", docs)
	assert.Greater(t, score, 0.5)
}

func TestConsistencyScore_UnsupportedClaimScoresLow(t *testing.T) {
	docs := []Document{{Content: "the release shipped in 2024 with full support for widgets"}}
	score := consistencyScore("it launched in 1999 with rockets", docs)
	assert.Less(t, score, 0.5)
}

func TestLevelFor_Buckets(t *testing.T) {
	assert.Equal(t, LevelLow, levelFor(0.2))
	assert.Equal(t, LevelMedium, levelFor(0.5))
	assert.Equal(t, LevelMedium, levelFor(0.74))
	assert.Equal(t, LevelHigh, levelFor(0.75))
}

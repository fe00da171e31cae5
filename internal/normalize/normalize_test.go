package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Idempotent(t *testing.T) {
	r1 := Normalize("Python是什么？")
	r2 := Normalize(r1.NormalizedText)
	assert.Equal(t, r1.SemanticHash, r2.SemanticHash)
	assert.Equal(t, r1.Keywords, r2.Keywords)
}

func TestNormalize_SynonymsProduceSameHash(t *testing.T) {
	a := Normalize("Python是什么？")
	b := Normalize("Python是啥？")
	assert.Equal(t, a.SemanticHash, b.SemanticHash)
}

func TestNormalize_DropsStopwordsAndShortTokens(t *testing.T) {
	r := Normalize("What is the Go programming language?")
	assert.NotContains(t, r.Keywords, "is")
	assert.NotContains(t, r.Keywords, "the")
	assert.Contains(t, r.Keywords, "programming")
	assert.Contains(t, r.Keywords, "language")
}

func TestNormalize_SortsAndDedupes(t *testing.T) {
	r := Normalize("golang golang rust golang")
	assert.Equal(t, []string{"golang", "rust"}, r.Keywords)
}

func TestNormalize_EmptyInput(t *testing.T) {
	r := Normalize("")
	assert.Empty(t, r.Keywords)
	assert.NotEmpty(t, r.SemanticHash)
}

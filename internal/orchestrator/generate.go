package orchestrator

import (
	"context"
	"strings"

	"github.com/ragkb/ragkb/internal/confidence"
	"github.com/ragkb/ragkb/internal/llmclient"
)

// fallbackEmptyAnswer substitutes for a provider response with no content,
// paired with a low-confidence marker per spec.md §4.9.
const fallbackEmptyAnswer = "I don't have enough information to answer that question."

// generateNode classifies the question, builds the system+user prompt pair,
// streams the completion from the LLM provider, and scores the result with
// C8 (spec.md §4.9).
func generateNode(ctx context.Context, deps *Dependencies, state State) NodeOutcome {
	category := classifyQuestion(state.Question)
	system, user := buildPrompt(category, state.Question, state.RetrievedDocs)

	req := llmclient.Request{
		Model: deps.LLMModel,
		Messages: []llmclient.Message{
			llmclient.TextMessage(llmclient.RoleSystem, system),
			llmclient.TextMessage(llmclient.RoleUser, user),
		},
		Temperature: 0.3,
		MaxTokens:   1024,
		Stream:      true,
	}

	answer, err := deps.LLM.Stream(ctx, req, nil)
	if err != nil {
		return fail(err)
	}

	if strings.TrimSpace(answer) == "" {
		low := confidence.Result{Overall: 0, Level: confidence.LevelLow}
		return advance(StateUpdate{Answer: fallbackEmptyAnswer, Confidence: &low})
	}

	result := confidence.ScoreWithWeights(state.Question, answer, toConfidenceDocs(state.RetrievedDocs), deps.ConfidenceWeights)
	return advance(StateUpdate{Answer: answer, Confidence: &result})
}

func toConfidenceDocs(docs []RetrievedDoc) []confidence.Document {
	out := make([]confidence.Document, len(docs))
	for i, d := range docs {
		out[i] = confidence.Document{Content: d.Content, Distance: d.Distance}
	}
	return out
}

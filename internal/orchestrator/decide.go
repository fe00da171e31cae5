package orchestrator

import "github.com/ragkb/ragkb/internal/confidence"

// FallbackIterationExhausted is substituted as the answer when the
// iteration cap is hit before a confident answer was produced (spec.md §8
// scenario 5).
const FallbackIterationExhausted = "经过多次尝试，无法基于提供的信息生成满意的答案。"

// DecideResult is decide's verdict: the next state to enter, plus any
// patch decide itself injects (the iteration-cap fallback answer).
type DecideResult struct {
	Next   string
	Update StateUpdate
}

// decide chooses the next state by the first matching rule, in order
// (spec.md §4.9).
func decide(s State) DecideResult {
	if s.Error != nil {
		return DecideResult{Next: "finalize"}
	}
	if s.Answer != "" && s.Confidence != nil && s.Confidence.Overall > 0.5 {
		return DecideResult{Next: "finalize"}
	}
	if s.Iteration >= s.MaxIterations {
		fallback := confidence.Result{Overall: 0, Level: confidence.LevelLow}
		return DecideResult{Next: "finalize", Update: StateUpdate{Answer: FallbackIterationExhausted, Confidence: &fallback}}
	}
	if len(s.RetrievedDocs) == 0 {
		return DecideResult{Next: "retrieve"}
	}
	if s.Answer == "" {
		return DecideResult{Next: "generate"}
	}
	if len(s.ToolCalls) > len(s.ToolResults) {
		return DecideResult{Next: "process_tools"}
	}
	return DecideResult{Next: "finalize"}
}

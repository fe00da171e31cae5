package orchestrator

import "github.com/ragkb/ragkb/internal/confidence"

// finalizeNode packages the running state into the structured response
// every caller receives — never an exception (spec.md §7).
func finalizeNode(state State) Response {
	resp := Response{
		QueryID:       state.QueryID,
		Answer:        state.Answer,
		RetrievedDocs: state.RetrievedDocs,
	}
	if state.Confidence != nil {
		resp.Confidence = *state.Confidence
	} else {
		resp.Confidence = confidence.Result{Level: confidence.LevelLow}
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}

package orchestrator

import "context"

// processToolsNode is a stub: no tools are implemented in the core, so it
// just records that every pending call was "handled" and returns (spec.md
// §4.9, §9 open question — do not reconstruct an absent feature).
func processToolsNode(_ context.Context, _ *Dependencies, state State) NodeOutcome {
	pending := len(state.ToolCalls) - len(state.ToolResults)
	if pending <= 0 {
		return advance(StateUpdate{})
	}
	results := make([]string, pending)
	for i := range results {
		results[i] = "tool calls are not supported"
	}
	return advance(StateUpdate{ToolResultsAppend: results})
}

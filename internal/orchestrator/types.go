// Package orchestrator implements the bounded query state machine (spec.md
// §4.9): retrieve, generate, process_tools and decide, wired around the
// cached-query fast path and the per-query wall-clock budget.
package orchestrator

import (
	"log/slog"
	"time"

	"github.com/ragkb/ragkb/internal/cache"
	"github.com/ragkb/ragkb/internal/confidence"
	"github.com/ragkb/ragkb/internal/embed"
	"github.com/ragkb/ragkb/internal/files"
	"github.com/ragkb/ragkb/internal/llmclient"
	"github.com/ragkb/ragkb/internal/retrieval"
	"github.com/ragkb/ragkb/internal/vectorstore"
)

// RetrievedDoc is one piece of context the generate node can cite, whether
// it came from the KB (C4/C7) or an ephemeral conversation attachment
// (C10).
type RetrievedDoc struct {
	ChunkID  string
	Content  string
	Score    float64
	Distance float32 // raw vector distance, independent of the rerank score
	Metadata map[string]string
	Source   string // "kb" or "file"
}

// State is the running state object threaded through every node (spec.md
// §4.9). Each node returns a partial StateUpdate merged into this.
type State struct {
	QueryID        string
	KBID           string
	ConversationID string
	Question       string
	RetrievedDocs  []RetrievedDoc
	Answer         string
	Confidence     *confidence.Result
	Error          error
	Iteration      int
	MaxIterations  int
	ToolCalls      []string
	ToolResults    []string
}

// Outcome is the NodeOutcome sum type from spec.md §9 DESIGN NOTES:
// Advance|Fail|Done replaces the "{error: ...}" dict sentinel the source
// used. Fail and Advance both carry a StateUpdate — Fail's just happens to
// set Error — so the driver applies the update uniformly and lets decide
// route error states to finalize.
type Outcome int

const (
	OutcomeAdvance Outcome = iota
	OutcomeFail
	OutcomeDone
)

// StateUpdate is the partial patch a node or decide returns. A nil slice or
// empty string means "leave the corresponding State field unchanged" — a
// node that legitimately produces an empty result must pass a non-nil
// empty slice.
type StateUpdate struct {
	RetrievedDocs     []RetrievedDoc
	Answer            string
	Confidence        *confidence.Result
	Error             error
	IterationDelta    int
	ToolResultsAppend []string
}

// NodeOutcome pairs an Outcome tag with the patch it carries.
type NodeOutcome struct {
	Outcome Outcome
	Update  StateUpdate
}

func advance(update StateUpdate) NodeOutcome { return NodeOutcome{Outcome: OutcomeAdvance, Update: update} }
func fail(err error) NodeOutcome             { return NodeOutcome{Outcome: OutcomeFail, Update: StateUpdate{Error: err}} }

func applyUpdate(s State, u StateUpdate) State {
	if u.RetrievedDocs != nil {
		s.RetrievedDocs = u.RetrievedDocs
	}
	if u.Answer != "" {
		s.Answer = u.Answer
	}
	if u.Confidence != nil {
		s.Confidence = u.Confidence
	}
	if u.Error != nil {
		s.Error = u.Error
	}
	s.Iteration += u.IterationDelta
	if u.ToolResultsAppend != nil {
		s.ToolResults = append(s.ToolResults, u.ToolResultsAppend...)
	}
	return s
}

// Request is one query to Orchestrator.Run.
type Request struct {
	KBID           string
	ConversationID string
	Question       string
}

// Response is the structured result every caller receives — never an
// exception, per spec.md §7's policy.
type Response struct {
	QueryID        string
	Answer         string
	Confidence     confidence.Result
	RetrievedDocs  []RetrievedDoc
	FromCache      bool
	Error          string
	ResponseTimeMs int64
}

// Dependencies are the handles the state machine drives. Constructed once
// at startup and passed in explicitly (spec.md §9 DESIGN NOTES: no
// process-wide singletons).
type Dependencies struct {
	Embedder    embed.Embedder
	VectorStore vectorstore.Store
	QueryCache  *cache.QueryCache
	FileStore   *files.Store
	LLM         llmclient.Client
	Logger      *slog.Logger

	RetrievalConfig   retrieval.Config
	ConfidenceWeights confidence.Weights

	LLMModel          string
	MaxIterations     int
	FetchMultiplier   int
	FileContentWeight float64
	KBContextWeight   float64
	QueryTimeout      time.Duration
}

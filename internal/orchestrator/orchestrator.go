package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ragkb/ragkb/internal/confidence"
	"github.com/ragkb/ragkb/internal/normalize"
)

// DefaultQueryTimeout bounds a single Run call's wall clock when
// Dependencies.QueryTimeout is unset (spec.md §4.9).
const DefaultQueryTimeout = 60 * time.Second

// DefaultMaxIterations bounds the retrieve/generate loop when
// Dependencies.MaxIterations is unset.
const DefaultMaxIterations = 10

// Orchestrator drives the bounded query state machine against one set of
// Dependencies. It holds no per-query state itself — everything live for a
// call lives in that call's State value.
type Orchestrator struct {
	deps *Dependencies
}

// New builds an Orchestrator over deps, filling in any zero-valued
// dependency default.
func New(deps *Dependencies) *Orchestrator {
	if deps.MaxIterations <= 0 {
		deps.MaxIterations = DefaultMaxIterations
	}
	if deps.FetchMultiplier <= 0 {
		deps.FetchMultiplier = 3
	}
	if deps.QueryTimeout <= 0 {
		deps.QueryTimeout = DefaultQueryTimeout
	}
	return &Orchestrator{deps: deps}
}

// Run answers one question end to end: empty-query short circuit, cached
// semantic lookup, then the retrieve/generate/process_tools/decide loop
// (spec.md §4.9, §8). It never returns an error for a failure that happened
// mid-query — those land in Response.Error so the caller always gets a
// structured result.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Response, error) {
	start := now()
	queryID := uuid.NewString()

	if req.Question == "" {
		return &Response{
			QueryID:    queryID,
			Confidence: confidence.Result{Level: confidence.LevelLow},
		}, nil
	}

	norm := normalize.Normalize(req.Question)
	cacheKey := req.KBID + ":" + req.Question

	if o.deps.QueryCache != nil {
		semanticKey := req.KBID + ":" + norm.SemanticHash
		if cached, ok := o.deps.QueryCache.GetSemantic(semanticKey); ok {
			if resp, ok := cached.(Response); ok {
				resp.QueryID = queryID
				resp.FromCache = true
				resp.ResponseTimeMs = elapsedMs(start)
				return &resp, nil
			}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, o.deps.QueryTimeout)
	defer cancel()

	state := State{
		QueryID:        queryID,
		KBID:           req.KBID,
		ConversationID: req.ConversationID,
		Question:       req.Question,
		MaxIterations:  o.deps.MaxIterations,
	}

	node := "retrieve"
	for {
		if err := ctx.Err(); err != nil {
			state.Error = fmt.Errorf("query timed out: %w", err)
			node = "finalize"
		}
		if node == "finalize" {
			break
		}

		outcome := o.runNode(ctx, node, state)
		state = applyUpdate(state, outcome.Update)
		if outcome.Outcome == OutcomeFail {
			node = "finalize"
			continue
		}

		result := decide(state)
		state = applyUpdate(state, result.Update)
		node = result.Next
	}

	resp := finalizeNode(state)
	resp.ResponseTimeMs = elapsedMs(start)

	if o.deps.QueryCache != nil && resp.Error == "" {
		o.deps.QueryCache.Set(cacheKey, req.KBID+":"+norm.SemanticHash, resp)
	}

	return &resp, nil
}

func (o *Orchestrator) runNode(ctx context.Context, node string, state State) NodeOutcome {
	switch node {
	case "retrieve":
		return retrieveNode(ctx, o.deps, state)
	case "generate":
		return generateNode(ctx, o.deps, state)
	case "process_tools":
		return processToolsNode(ctx, o.deps, state)
	default:
		return fail(errors.New("unknown orchestrator state: " + node))
	}
}

func now() time.Time { return time.Now() }

func elapsedMs(start time.Time) int64 { return time.Since(start).Milliseconds() }

package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"github.com/ragkb/ragkb/internal/files"
	"github.com/ragkb/ragkb/internal/retrieval"
)

const defaultSyntheticFileScore = 0.9

// defaultSyntheticFileDistance is the vector distance implied by
// defaultSyntheticFileScore under the 1/(1+distance) similarity transform,
// so confidence scoring sees a file attachment as a near hit without
// reconstructing it from the weighted Score.
const defaultSyntheticFileDistance float32 = 1.0/defaultSyntheticFileScore - 1.0

// retrieveNode computes the query embedding (C2), fetches top_k ×
// fetch_multiplier raw hits from the vector store (C4), post-processes
// them down to top_k (C7), fuses in any ephemeral conversation attachments
// (C10), and re-truncates the merged, weighted list to top_k (spec.md
// §4.9).
func retrieveNode(ctx context.Context, deps *Dependencies, state State) NodeOutcome {
	vector, err := deps.Embedder.Embed(ctx, state.Question)
	if err != nil {
		return fail(err)
	}

	topK := deps.RetrievalConfig.TopK
	if topK <= 0 {
		topK = 5
	}
	multiplier := deps.FetchMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	hits, err := deps.VectorStore.Search(ctx, vector, topK*multiplier)
	if err != nil {
		return fail(err)
	}

	raw := make([]retrieval.RawResult, len(hits))
	for i, h := range hits {
		raw[i] = retrieval.RawResult{
			ChunkID:  h.ChunkID,
			Content:  h.Content,
			Distance: h.Score,
			KBID:     h.Metadata["kb_id"],
			Metadata: h.Metadata,
		}
	}

	processed := retrieval.Process(raw, state.KBID, state.Question, deps.RetrievalConfig)

	kbWeight := deps.KBContextWeight
	if kbWeight == 0 {
		kbWeight = 1.0
	}

	docs := make([]RetrievedDoc, 0, len(processed))
	for _, r := range processed {
		score := r.Breakdown.CombinedScore
		if score == 0 {
			score = 1.0 / (1.0 + float64(r.Distance))
		}
		docs = append(docs, RetrievedDoc{
			ChunkID:  r.ChunkID,
			Content:  r.Content,
			Score:    score * kbWeight,
			Distance: r.Distance,
			Metadata: r.Metadata,
			Source:   "kb",
		})
	}

	docs = append(docs, fileDocs(deps, state)...)

	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score })
	if len(docs) > topK {
		docs = docs[:topK]
	}

	return advance(StateUpdate{RetrievedDocs: docs, IterationDelta: 1})
}

// fileDocs turns the conversation's attached-file envelopes into synthetic
// documents scored at a fixed base relevance scaled by file_weight, so they
// compete with KB hits on the same ranking (spec.md §4.9, §4.10).
func fileDocs(deps *Dependencies, state State) []RetrievedDoc {
	if deps.FileStore == nil || state.ConversationID == "" {
		return nil
	}
	envelopes, err := deps.FileStore.ListEnvelopes(state.ConversationID)
	if err != nil || len(envelopes) == 0 {
		return nil
	}

	fileWeight := deps.FileContentWeight
	if fileWeight == 0 {
		fileWeight = 1.0
	}

	out := make([]RetrievedDoc, 0, len(envelopes))
	for filename, env := range envelopes {
		content := env.Text
		if env.Kind == files.KindImage && env.Image != nil {
			content = fmt.Sprintf("[attached image %q: %dx%d %s]", filename, env.Image.Width, env.Image.Height, env.Image.Format)
		}
		out = append(out, RetrievedDoc{
			ChunkID:  "file:" + filename,
			Content:  content,
			Score:    defaultSyntheticFileScore * fileWeight,
			Distance: defaultSyntheticFileDistance,
			Metadata: map[string]string{"filename": filename},
			Source:   "file",
		})
	}
	return out
}

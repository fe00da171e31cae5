// Package mcpserver exposes the ask/ingest/kb_* operations as Model Context
// Protocol tools over stdio, mirroring the teacher's internal/mcp server
// wiring against the go-sdk.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ragkb/ragkb/internal/ingest"
	"github.com/ragkb/ragkb/internal/kb"
	"github.com/ragkb/ragkb/internal/metastore"
	"github.com/ragkb/ragkb/internal/orchestrator"
	"github.com/ragkb/ragkb/pkg/version"
)

// Server bridges ragkb's core engine to MCP clients.
type Server struct {
	mcp    *mcp.Server
	orch   *orchestrator.Orchestrator
	pipe   *ingest.Pipeline
	kb     *kb.Service
	logger *slog.Logger
}

// New builds a Server and registers every tool. logger defaults to
// slog.Default() when nil.
func New(orch *orchestrator.Orchestrator, pipe *ingest.Pipeline, kbService *kb.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{orch: orch, pipe: pipe, kb: kbService, logger: logger}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "ragkb",
		Version: version.Version,
	}, nil)

	s.registerTools()
	return s
}

// MCPServer returns the underlying go-sdk server, mainly for tests.
func (s *Server) MCPServer() *mcp.Server { return s.mcp }

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a natural-language question against a knowledge base, citing the chunks it relied on.",
	}, s.handleAsk)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ingest",
		Description: "Ingest one source file into a knowledge base: extract, chunk, embed, and index it.",
	}, s.handleIngest)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "kb_create",
		Description: "Create a new knowledge base.",
	}, s.handleKBCreate)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "kb_list",
		Description: "List every knowledge base.",
	}, s.handleKBList)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "kb_delete",
		Description: "Destroy a knowledge base and everything ingested into it.",
	}, s.handleKBDelete)

	s.logger.Info("registered mcp tools", slog.Int("count", 5))
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	if input.KBID == "" {
		return nil, AskOutput{}, NewInvalidParamsError("kb_id is required")
	}
	if input.Question == "" {
		return nil, AskOutput{}, NewInvalidParamsError("question is required")
	}

	resp, err := s.orch.Run(ctx, orchestrator.Request{
		KBID:           input.KBID,
		Question:       input.Question,
		ConversationID: input.ConversationID,
	})
	if err != nil {
		return nil, AskOutput{}, MapError(err)
	}

	docs := make([]RetrievedDocOutput, 0, len(resp.RetrievedDocs))
	for _, d := range resp.RetrievedDocs {
		docs = append(docs, RetrievedDocOutput{ChunkID: d.ChunkID, Content: d.Content, Score: d.Score, Source: d.Source})
	}

	return nil, AskOutput{
		QueryID:         resp.QueryID,
		Answer:          resp.Answer,
		Confidence:      resp.Confidence.Overall,
		ConfidenceLevel: string(resp.Confidence.Level),
		RetrievedDocs:   docs,
		FromCache:       resp.FromCache,
		Error:           resp.Error,
		ResponseTimeMs:  resp.ResponseTimeMs,
	}, nil
}

func (s *Server) handleIngest(ctx context.Context, _ *mcp.CallToolRequest, input IngestInput) (*mcp.CallToolResult, IngestOutput, error) {
	if input.KBID == "" {
		return nil, IngestOutput{}, NewInvalidParamsError("kb_id is required")
	}
	if input.Path == "" {
		return nil, IngestOutput{}, NewInvalidParamsError("path is required")
	}

	summary, err := s.pipe.IngestFile(ctx, input.KBID, input.Path, ingest.Options{
		Metadata:          input.Metadata,
		PersistSourceCopy: input.PersistSourceCopy,
	})
	if err != nil {
		return nil, IngestOutput{}, MapError(err)
	}

	return nil, IngestOutput{
		DocumentID: summary.DocumentID,
		KBID:       summary.KBID,
		Filename:   summary.Filename,
		ChunkCount: summary.ChunkCount,
	}, nil
}

func (s *Server) handleKBCreate(ctx context.Context, _ *mcp.CallToolRequest, input KBCreateInput) (*mcp.CallToolResult, KBCreateOutput, error) {
	if input.Name == "" {
		return nil, KBCreateOutput{}, NewInvalidParamsError("name is required")
	}
	k, err := s.kb.Create(ctx, input.Name, input.Description, input.Tags)
	if err != nil {
		return nil, KBCreateOutput{}, MapError(err)
	}
	return nil, KBCreateOutput{KB: toKBInfo(k)}, nil
}

func (s *Server) handleKBList(ctx context.Context, _ *mcp.CallToolRequest, _ KBListInput) (*mcp.CallToolResult, KBListOutput, error) {
	kbs, err := s.kb.List(ctx)
	if err != nil {
		return nil, KBListOutput{}, MapError(err)
	}
	out := make([]KBInfo, 0, len(kbs))
	for _, k := range kbs {
		out = append(out, toKBInfo(k))
	}
	return nil, KBListOutput{KBs: out}, nil
}

func (s *Server) handleKBDelete(ctx context.Context, _ *mcp.CallToolRequest, input KBDeleteInput) (*mcp.CallToolResult, KBDeleteOutput, error) {
	if input.ID == "" {
		return nil, KBDeleteOutput{}, NewInvalidParamsError("id is required")
	}
	if err := s.kb.Delete(ctx, input.ID); err != nil {
		return nil, KBDeleteOutput{}, MapError(err)
	}
	return nil, KBDeleteOutput{Deleted: true}, nil
}

func toKBInfo(k *metastore.KnowledgeBase) KBInfo {
	return KBInfo{
		ID:            k.ID,
		Name:          k.Name,
		Description:   k.Description,
		Tags:          k.Tags,
		DocumentCount: k.DocumentCount,
		TotalChunks:   k.TotalChunks,
	}
}

// Serve runs the server over stdio until ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting mcp server", slog.String("transport", "stdio"))
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		return fmt.Errorf("mcp server stopped: %w", err)
	}
	return nil
}

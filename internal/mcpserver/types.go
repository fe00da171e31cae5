package mcpserver

// AskInput is the ask tool's argument shape.
type AskInput struct {
	KBID           string `json:"kb_id" jsonschema:"the knowledge base to query"`
	Question       string `json:"question" jsonschema:"the natural-language question"`
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"conversation to fuse attached files from, if any"`
}

// RetrievedDocOutput is one cited chunk in an ask response.
type RetrievedDocOutput struct {
	ChunkID string  `json:"chunk_id"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
	Source  string  `json:"source" jsonschema:"kb or file"`
}

// AskOutput is the ask tool's result shape.
type AskOutput struct {
	QueryID        string               `json:"query_id"`
	Answer         string               `json:"answer"`
	Confidence     float64              `json:"confidence"`
	ConfidenceLevel string              `json:"confidence_level"`
	RetrievedDocs  []RetrievedDocOutput `json:"retrieved_docs"`
	FromCache      bool                 `json:"from_cache"`
	Error          string               `json:"error,omitempty"`
	ResponseTimeMs int64                `json:"response_time_ms"`
}

// IngestInput is the ingest tool's argument shape.
type IngestInput struct {
	KBID              string            `json:"kb_id" jsonschema:"the knowledge base to ingest into"`
	Path              string            `json:"path" jsonschema:"absolute path to the source file"`
	Metadata          map[string]string `json:"metadata,omitempty" jsonschema:"extra per-chunk metadata"`
	PersistSourceCopy bool              `json:"persist_source_copy,omitempty" jsonschema:"keep a durable copy of the source file"`
}

// IngestOutput is the ingest tool's result shape.
type IngestOutput struct {
	DocumentID string `json:"document_id"`
	KBID       string `json:"kb_id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
}

// KBCreateInput is the kb_create tool's argument shape.
type KBCreateInput struct {
	Name        string   `json:"name" jsonschema:"unique display name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// KBInfo describes one knowledge base.
type KBInfo struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	DocumentCount int      `json:"document_count"`
	TotalChunks   int      `json:"total_chunks"`
}

// KBCreateOutput is the kb_create tool's result shape.
type KBCreateOutput struct {
	KB KBInfo `json:"kb"`
}

// KBListInput is the kb_list tool's argument shape (no parameters).
type KBListInput struct{}

// KBListOutput is the kb_list tool's result shape.
type KBListOutput struct {
	KBs []KBInfo `json:"kbs"`
}

// KBDeleteInput is the kb_delete tool's argument shape.
type KBDeleteInput struct {
	ID string `json:"id" jsonschema:"knowledge base id to destroy"`
}

// KBDeleteOutput is the kb_delete tool's result shape.
type KBDeleteOutput struct {
	Deleted bool `json:"deleted"`
}

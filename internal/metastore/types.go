package metastore

import "time"

// KnowledgeBase is a named collection of documents and their derived chunks
// and vectors — the unit of retrieval scoping (spec.md §3).
type KnowledgeBase struct {
	ID            string
	Name          string
	Description   string
	Tags          []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DocumentCount int
	TotalChunks   int
}

// Document is one ingested source file.
type Document struct {
	ID         string
	KBID       string
	Filename   string
	FilePath   string
	ChunkCount int
	CreatedAt  time.Time
}

// Chunk is one retrieval unit produced from a Document.
type Chunk struct {
	ID         string
	DocumentID string
	KBID       string
	Content    string
	ChunkIndex int
	VectorID   string
	Metadata   map[string]string
	CreatedAt  time.Time
}

// Conversation groups an ordered sequence of Messages scoped to one KB.
type Conversation struct {
	ID           string
	KBID         string
	KBName       string
	Title        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
}

// Message is one turn of a Conversation.
type Message struct {
	ID              string
	ConversationID  string
	Role            string
	Content         string
	Timestamp       time.Time
	Confidence      float64
	ConfidenceLevel string
	ResponseTimeMs  int64
	FromCache       bool
	IsWelcome       bool
	Error           string
	RetrievedDocs   []string
	Metadata        map[string]string
	UploadedFiles   []string
	FileMetadata    map[string]string
}

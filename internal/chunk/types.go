package chunk

// Default tuning values (spec.md §4.3).
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultMinChunkSize = 100
)

// ContentType records what kind of content a chunk was split from.
type ContentType string

const (
	ContentTypeCode     ContentType = "code"
	ContentTypeMarkdown ContentType = "markdown"
	ContentTypeText     ContentType = "text"
)

// Chunk is a retrievable unit of content produced by Split.
type Chunk struct {
	ID          string
	Content     string
	ContentType ContentType
	Index       int // position in the emitted sequence, 0-based
}

// Config tunes the chunking algorithm.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	MinChunkSize int
}

// DefaultConfig returns the spec's default tuning.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		MinChunkSize: DefaultMinChunkSize,
	}
}

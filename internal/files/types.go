// Package files implements the ephemeral per-conversation attachment store
// (spec.md §4.10): content-hash addressed storage, MIME-class extraction,
// and a background janitor that enforces TTL and quota independently of
// the query path.
package files

import "time"

// Kind discriminates an extracted Envelope.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// ImageMetadata is the structured record handed to the vision-capable LLM
// path instead of raw text (spec.md §4.10).
type ImageMetadata struct {
	Format    string
	Width     int
	Height    int
	SizeBytes int
	DataURL   string // data:image/<fmt>;base64,<payload>, ready for an llmclient.ContentPart
}

// Envelope is what the orchestrator sees for one attached file: either
// extracted text or an image metadata record.
type Envelope struct {
	Filename string
	Kind     Kind
	Text     string
	Image    *ImageMetadata
}

// File is one stored attachment.
type File struct {
	ContentHash    string
	ConversationID string
	Filename       string
	MimeType       string
	Content        []byte
	StoredAt       time.Time
	LastAccessed   time.Time
}

// Config tunes the store and its janitor.
type Config struct {
	BaseDir string

	// TTL: files older than this are eligible for janitor removal.
	TTL time.Duration

	// QuotaBytes: total stored-content budget across all conversations.
	// When exceeded, the janitor trims oldest-first down to TargetRatio.
	QuotaBytes int64

	// TargetRatio: fraction of QuotaBytes the janitor trims down to.
	TargetRatio float64

	// SweepInterval: how often the janitor runs.
	SweepInterval time.Duration
}

// DefaultConfig returns sane defaults: 1 hour TTL, 512MB quota, trim to
// 80% on overflow, sweeping every 5 minutes.
func DefaultConfig(baseDir string) Config {
	return Config{
		BaseDir:       baseDir,
		TTL:           time.Hour,
		QuotaBytes:    512 * 1024 * 1024,
		TargetRatio:   0.8,
		SweepInterval: 5 * time.Minute,
	}
}

package files

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ragkb/ragkb/internal/errkit"
)

// Extractor turns a stored File's bytes into an Envelope the orchestrator
// can fuse into retrieval context.
type Extractor interface {
	Extract(f *File) (Envelope, error)
}

// Registry dispatches to an Extractor by MIME class (the part of the MIME
// type before "/"). Text and image are built in; PDF and spreadsheet
// extraction are pluggable via Register but ship with no implementation
// (spec.md §4.10 calls them out as extract targets without specifying their
// algorithms, and no example in the corpus parses either format).
type Registry struct {
	byClass map[string]Extractor
}

// NewRegistry builds a Registry with the text and image extractors
// registered.
func NewRegistry() *Registry {
	r := &Registry{byClass: make(map[string]Extractor)}
	r.Register("text", textExtractor{})
	r.Register("image", imageExtractor{})
	return r
}

// Register installs (or replaces) the extractor for a MIME class.
func (r *Registry) Register(class string, e Extractor) {
	r.byClass[class] = e
}

// Extract dispatches f by its MIME type's class.
func (r *Registry) Extract(f *File) (Envelope, error) {
	class := mimeClass(f.MimeType)
	e, ok := r.byClass[class]
	if !ok {
		return Envelope{}, errkit.UnsupportedFormat(f.Filename, nil)
	}
	return e.Extract(f)
}

func mimeClass(mimeType string) string {
	if idx := strings.Index(mimeType, "/"); idx >= 0 {
		return mimeType[:idx]
	}
	return mimeType
}

// textExtractor passes text content through unchanged.
type textExtractor struct{}

func (textExtractor) Extract(f *File) (Envelope, error) {
	return Envelope{Filename: f.Filename, Kind: KindText, Text: string(f.Content)}, nil
}

// imageExtractor builds a structured metadata record plus a data: URL the
// vision-capable LLM path can embed directly as a multi-modal content part.
type imageExtractor struct{}

func (imageExtractor) Extract(f *File) (Envelope, error) {
	format := imageFormatFromMIME(f.MimeType)
	width, height := probeDimensions(f.Content, format)

	dataURL := fmt.Sprintf("data:%s;base64,%s", f.MimeType, base64.StdEncoding.EncodeToString(f.Content))

	return Envelope{
		Filename: f.Filename,
		Kind:     KindImage,
		Image: &ImageMetadata{
			Format:    format,
			Width:     width,
			Height:    height,
			SizeBytes: len(f.Content),
			DataURL:   dataURL,
		},
	}, nil
}

func imageFormatFromMIME(mimeType string) string {
	_, format, found := strings.Cut(mimeType, "/")
	if !found {
		return "unknown"
	}
	return format
}

// probeDimensions reads just enough of a PNG or JPEG header to report pixel
// dimensions without a full image decode; anything else reports 0x0.
func probeDimensions(content []byte, format string) (int, int) {
	switch format {
	case "png":
		return probePNGDimensions(content)
	default:
		return 0, 0
	}
}

// probePNGDimensions reads the IHDR chunk's width/height fields, which sit
// at fixed offsets 16 and 20 in a well-formed PNG.
func probePNGDimensions(content []byte) (int, int) {
	const ihdrWidthOffset = 16
	if len(content) < ihdrWidthOffset+8 {
		return 0, 0
	}
	width := int(content[16])<<24 | int(content[17])<<16 | int(content[18])<<8 | int(content[19])
	height := int(content[20])<<24 | int(content[21])<<16 | int(content[22])<<8 | int(content[23])
	return width, height
}

var _ Extractor = textExtractor{}
var _ Extractor = imageExtractor{}

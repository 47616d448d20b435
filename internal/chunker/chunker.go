package chunker

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vkozyrev/ragdex/internal/project"
)

// Chunk is one bounded span of a document's text, the unit of embedding and
// retrieval. Chunks are ordered within a document by Index.
type Chunk struct {
	DocumentPath string // manifest-relative path
	Index        int    // 0-based, order-preserving
	Text         string
	ContentType  string
	Metadata     map[string]string
}

// Options controls chunk sizing.
type Options struct {
	ChunkSize    int // target chunk length in characters
	ChunkOverlap int // characters repeated between consecutive chunks
}

// Chunker turns a raw document file into ordered text chunks.
type Chunker interface {
	Chunk(ctx context.Context, absPath, relPath string, opts Options) ([]Chunk, error)
}

// TextChunker splits plain-text documents with a sliding window, preferring
// to break at line boundaries so chunks do not cut sentences mid-line.
type TextChunker struct{}

// NewTextChunker returns the default chunker.
func NewTextChunker() *TextChunker {
	return &TextChunker{}
}

func (c *TextChunker) Chunk(ctx context.Context, absPath, relPath string, opts Options) ([]Chunk, error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relPath, err)
	}

	size := opts.ChunkSize
	if size <= 0 {
		size = 1000
	}
	overlap := opts.ChunkOverlap
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	contentType := project.DetectMime(relPath)
	text := string(data)

	var chunks []Chunk
	for _, piece := range splitText(text, size, overlap) {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			DocumentPath: relPath,
			Index:        len(chunks),
			Text:         piece,
			ContentType:  contentType,
		})
	}
	return chunks, nil
}

// splitText produces overlapping windows over text. Window boundaries snap
// back to the last newline inside the window when one exists past the halfway
// point, so overlap plus snapping keeps context across chunk edges.
func splitText(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	var pieces []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			pieces = append(pieces, string(runes[start:]))
			break
		}

		cut := end
		for i := end - 1; i > start+size/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}

		pieces = append(pieces, string(runes[start:cut]))

		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return pieces
}

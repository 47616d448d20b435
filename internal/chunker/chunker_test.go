package chunker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTextChunker_SmallFileSingleChunk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	os.WriteFile(path, []byte("a short document"), 0o644)

	chunks, err := NewTextChunker().Chunk(context.Background(), path, "a.txt", Options{ChunkSize: 1000})
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Index != 0 {
		t.Errorf("expected chunk index 0, got %d", chunks[0].Index)
	}
	if chunks[0].DocumentPath != "a.txt" {
		t.Errorf("expected document path a.txt, got %s", chunks[0].DocumentPath)
	}
	if chunks[0].ContentType == "" {
		t.Error("expected content type to be set")
	}
}

func TestTextChunker_LargeFileOrderedChunks(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("this is line content that pads the document out considerably\n")
	}
	path := filepath.Join(dir, "big.txt")
	os.WriteFile(path, []byte(b.String()), 0o644)

	chunks, err := NewTextChunker().Chunk(context.Background(), path, "big.txt", Options{ChunkSize: 500, ChunkOverlap: 100})
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if len(c.Text) == 0 {
			t.Errorf("chunk %d is empty", i)
		}
	}
}

func TestTextChunker_OverlapPreservesContext(t *testing.T) {
	pieces := splitText(strings.Repeat("abcdefghij\n", 100), 300, 50)
	if len(pieces) < 2 {
		t.Fatal("expected multiple pieces")
	}
	// With overlap, the tail of piece N must reappear at the head of piece N+1.
	tail := pieces[0][len(pieces[0])-20:]
	if !strings.Contains(pieces[1], tail[:10]) {
		t.Error("expected overlap between consecutive pieces")
	}
}

func TestTextChunker_MissingFile(t *testing.T) {
	_, err := NewTextChunker().Chunk(context.Background(), "/nonexistent/file.txt", "file.txt", Options{})
	if err == nil {
		t.Error("expected error for missing file")
	}
}

package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStore_LoadCreatesDefault(t *testing.T) {
	store := NewStore(t.TempDir())

	m, err := store.Load("proj-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.ID != "proj-1" {
		t.Errorf("expected project id proj-1, got %s", m.ID)
	}
	if m.Documents == nil || len(m.Documents) != 0 {
		t.Error("expected empty documents map")
	}
	if m.Settings.ChunkSize == 0 {
		t.Error("expected default chunk size")
	}

	// The default manifest must be written immediately.
	if _, err := os.Stat(store.Path("proj-1")); err != nil {
		t.Errorf("expected manifest file on disk: %v", err)
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	m, err := store.Load("proj-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	indexed := time.Now().UTC().Truncate(time.Second)
	m.Documents["notes/a.txt"] = DocumentRecord{
		Path:         "notes/a.txt",
		Name:         "a.txt",
		Size:         42,
		MimeType:     "text/plain",
		Status:       StatusIndexed,
		ChunkCount:   3,
		LastModified: indexed.Add(-time.Hour),
		IndexedAt:    &indexed,
	}
	m.VectorCount = 3
	if err := store.Save(m); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load("proj-1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	rec, ok := loaded.Documents["notes/a.txt"]
	if !ok {
		t.Fatal("expected document record to survive round trip")
	}
	if rec.ChunkCount != 3 || rec.Status != StatusIndexed {
		t.Errorf("unexpected record: %+v", rec)
	}
	if loaded.VectorCount != 3 {
		t.Errorf("expected vector count 3, got %d", loaded.VectorCount)
	}
}

func TestStore_CorruptManifestReplaced(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	dir := filepath.Join(root, "proj-1", MetaDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := store.Load("proj-1")
	if err != nil {
		t.Fatalf("expected fresh manifest for corrupt file, got error: %v", err)
	}
	if len(m.Documents) != 0 {
		t.Error("expected empty documents in fresh manifest")
	}
}

func TestDocumentRecord_Stale(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-time.Hour)

	cases := []struct {
		name string
		rec  DocumentRecord
		want bool
	}{
		{"pending", DocumentRecord{Status: StatusPending}, true},
		{"failed", DocumentRecord{Status: StatusFailed, IndexedAt: &now}, true},
		{"indexed without timestamp", DocumentRecord{Status: StatusIndexed}, true},
		{"modified after indexing", DocumentRecord{Status: StatusIndexed, IndexedAt: &earlier, LastModified: now}, true},
		{"up to date", DocumentRecord{Status: StatusIndexed, IndexedAt: &now, LastModified: earlier}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rec.Stale(); got != tc.want {
				t.Errorf("Stale() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSettings_MultiStrategy(t *testing.T) {
	s := Settings{}
	if s.MultiStrategy() {
		t.Error("no strategies should mean legacy mode")
	}

	s.Strategies = []StrategyConfig{{ID: "direct", Enabled: false}}
	if s.MultiStrategy() {
		t.Error("disabled strategies should mean legacy mode")
	}

	s.Strategies = append(s.Strategies, StrategyConfig{ID: "keywords", Enabled: true, Weight: 1.0})
	if !s.MultiStrategy() {
		t.Error("one enabled strategy should mean multi-strategy mode")
	}
	if got := len(s.EnabledStrategies()); got != 1 {
		t.Errorf("expected 1 enabled strategy, got %d", got)
	}
}

func TestNormalizePath(t *testing.T) {
	if got := NormalizePath(filepath.Join("sub", "a.txt")); got != "sub/a.txt" {
		t.Errorf("expected sub/a.txt, got %s", got)
	}
	if got := NormalizePath("./b.txt"); got != "b.txt" {
		t.Errorf("expected b.txt, got %s", got)
	}
}

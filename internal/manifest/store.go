package manifest

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// MetaDirName is the hidden per-project metadata folder holding the manifest
// and the vector store files.
const MetaDirName = ".ragdex"

const manifestFileName = "manifest.json"

// DefaultSettings returns the settings a fresh manifest starts with.
func DefaultSettings() Settings {
	return Settings{
		ChunkSize:    1000,
		ChunkOverlap: 200,
	}
}

// Store loads and persists project manifests. Each project lives in its own
// directory under Root; the manifest sits in the project's metadata folder.
type Store struct {
	root string
}

// NewStore creates a manifest store rooted at the given projects directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Path returns the manifest file path for a project.
func (s *Store) Path(projectID string) string {
	return filepath.Join(s.root, projectID, MetaDirName, manifestFileName)
}

// Load reads the manifest for a project, creating and persisting a default
// one if none exists. A corrupt manifest is logged and replaced with a fresh
// default rather than failing the caller.
func (s *Store) Load(projectID string) (*Manifest, error) {
	path := s.Path(projectID)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.create(projectID)
		}
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		log.Printf("manifest %s is corrupt (%v), starting fresh", path, err)
		return s.create(projectID)
	}
	if m.Documents == nil {
		m.Documents = make(map[string]DocumentRecord)
	}
	return &m, nil
}

// Save rewrites the manifest in full. The write goes through a temp file and
// rename so a crash never leaves a half-written manifest behind.
func (s *Store) Save(m *Manifest) error {
	dir := filepath.Join(s.root, m.ID, MetaDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create metadata dir: %w", err)
	}

	m.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	tmp := filepath.Join(dir, manifestFileName+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, manifestFileName)); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

func (s *Store) create(projectID string) (*Manifest, error) {
	now := time.Now().UTC()
	m := &Manifest{
		ID:        projectID,
		CreatedAt: now,
		UpdatedAt: now,
		Settings:  DefaultSettings(),
		Documents: make(map[string]DocumentRecord),
	}
	if err := s.Save(m); err != nil {
		return nil, fmt.Errorf("persist new manifest: %w", err)
	}
	return m, nil
}

package project

import (
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vkozyrev/ragdex/internal/manifest"
)

// DocumentsDirName is the subfolder of a project root that holds the corpus.
const DocumentsDirName = "documents"

// DefaultMaxFileSize is the largest document the enumerator will return (16 MB).
const DefaultMaxFileSize int64 = 16 << 20

// File holds metadata about one document discovered on disk.
type File struct {
	Path    string // Absolute path on disk.
	RelPath string // Slash-separated path relative to documents/.
	Name    string
	Size    int64
	ModTime time.Time
	Mime    string
}

// Layout resolves paths for projects stored under a common root directory.
type Layout struct {
	root string
}

// NewLayout creates a Layout rooted at the given projects directory.
func NewLayout(root string) *Layout {
	return &Layout{root: root}
}

// Root returns the projects root directory.
func (l *Layout) Root() string { return l.root }

// Dir returns the root directory of one project.
func (l *Layout) Dir(projectID string) string {
	return filepath.Join(l.root, projectID)
}

// DocumentsDir returns the documents folder of one project.
func (l *Layout) DocumentsDir(projectID string) string {
	return filepath.Join(l.root, projectID, DocumentsDirName)
}

// MetaDir returns the hidden metadata folder of one project.
func (l *Layout) MetaDir(projectID string) string {
	return filepath.Join(l.root, projectID, manifest.MetaDirName)
}

// Exists reports whether the project directory is present on disk.
func (l *Layout) Exists(projectID string) bool {
	info, err := os.Stat(l.Dir(projectID))
	return err == nil && info.IsDir()
}

// Create lays out the directory skeleton for a new project.
func (l *Layout) Create(projectID string) error {
	for _, dir := range []string{l.DocumentsDir(projectID), l.MetaDir(projectID)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// ListOptions filters document enumeration.
type ListOptions struct {
	Include     []string // doublestar globs; empty means everything
	Exclude     []string // doublestar globs
	MaxFileSize int64    // 0 = DefaultMaxFileSize
}

// ListDocuments walks a project's documents folder and returns every regular
// file that passes filtering, with paths normalized for use as manifest keys.
// Hidden files and directories are skipped.
func (l *Layout) ListDocuments(projectID string, opts ListOptions) ([]File, error) {
	docsDir := l.DocumentsDir(projectID)
	if _, err := os.Stat(docsDir); err != nil {
		return nil, fmt.Errorf("documents dir %s: %w", docsDir, err)
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var files []File
	err := filepath.WalkDir(docsDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip unreadable entries instead of aborting the listing.
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if name != DocumentsDirName && len(name) > 0 && name[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || name[0] == '.' {
			return nil
		}

		rel, err := filepath.Rel(docsDir, path)
		if err != nil {
			return nil
		}
		rel = manifest.NormalizePath(rel)

		if len(opts.Include) > 0 && !matchesAny(rel, opts.Include) {
			return nil
		}
		if matchesAny(rel, opts.Exclude) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxSize {
			return nil
		}

		files = append(files, File{
			Path:    path,
			RelPath: rel,
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Mime:    DetectMime(name),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return files, nil
}

func matchesAny(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// DetectMime maps a file name to a MIME type, defaulting to text/plain for
// extensionless or unknown files since the corpus is text-oriented.
func DetectMime(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return "text/plain"
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	switch ext {
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt", ".text", ".log":
		return "text/plain"
	default:
		return "text/plain"
	}
}

package engine

import (
	"github.com/vkozyrev/ragdex/internal/manifest"
	"github.com/vkozyrev/ragdex/internal/project"
)

// ChangeSet classifies the on-disk corpus against the manifest. The three
// slices are disjoint; Unchanged counts skipped documents for progress totals.
type ChangeSet struct {
	New       []project.File
	Changed   []project.File
	Removed   []string // manifest keys with no file on disk
	Unchanged int
}

// Total returns the number of documents an indexing run will touch.
func (c ChangeSet) Total() int {
	return len(c.New) + len(c.Changed) + len(c.Removed)
}

// DetectChanges compares manifest records with the current file listing.
// A document is unchanged only when it was indexed successfully and its
// source has not been modified since; previously failed documents are
// therefore retried on every run.
func DetectChanges(records map[string]manifest.DocumentRecord, files []project.File) ChangeSet {
	var cs ChangeSet
	onDisk := make(map[string]bool, len(files))

	for _, f := range files {
		onDisk[f.RelPath] = true

		rec, known := records[f.RelPath]
		if !known {
			cs.New = append(cs.New, f)
			continue
		}
		if rec.Status == manifest.StatusIndexed && rec.IndexedAt != nil && !f.ModTime.After(*rec.IndexedAt) {
			cs.Unchanged++
			continue
		}
		cs.Changed = append(cs.Changed, f)
	}

	for path := range records {
		if !onDisk[path] {
			cs.Removed = append(cs.Removed, path)
		}
	}
	return cs
}

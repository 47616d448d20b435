// Package watcher keeps a project's index in sync with its documents folder
// by watching the filesystem and triggering debounced re-index runs.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vkozyrev/ragdex/internal/engine"
	"github.com/vkozyrev/ragdex/internal/project"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// DefaultDebounce is how long the watcher waits after the last filesystem
// event before re-indexing, so bulk copies trigger a single run.
const DefaultDebounce = 2 * time.Second

// Indexer is the part of the engine the watcher drives.
type Indexer interface {
	IndexProject(ctx context.Context, projectID string, force bool) (*engine.IndexResult, error)
}

// Watcher watches one project's documents folder and re-indexes on changes.
type Watcher struct {
	projectID string
	docsDir   string
	indexer   Indexer
	debounce  time.Duration

	fsw  *fsnotify.Watcher
	stop chan struct{}
}

// New creates a watcher for a project. debounce <= 0 uses DefaultDebounce.
func New(layout *project.Layout, indexer Indexer, projectID string, debounce time.Duration) (*Watcher, error) {
	if !layout.Exists(projectID) {
		return nil, fmt.Errorf("%w: %s", engine.ErrProjectNotFound, projectID)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	return &Watcher{
		projectID: projectID,
		docsDir:   layout.DocumentsDir(projectID),
		indexer:   indexer,
		debounce:  debounce,
		fsw:       fsw,
		stop:      make(chan struct{}),
	}, nil
}

// Start begins watching. Events are processed on a background goroutine until
// ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.docsDir); err != nil {
		return fmt.Errorf("watching %s: %w", w.docsDir, err)
	}
	go w.run(ctx)
	return nil
}

// Stop stops the watcher and releases its resources.
func (w *Watcher) Stop() {
	select {
	case <-w.stop:
	default:
		close(w.stop)
		_ = w.fsw.Close()
	}
}

// addRecursive watches a directory tree. fsnotify watches are not recursive,
// so every subdirectory needs its own watch.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && len(name) > 0 && name[0] == '.' {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) run(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.stop:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// A new directory must be watched before files land in it.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(ev.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error for %s: %v", w.projectID, err)

		case <-fire:
			timer = nil
			fire = nil
			w.reindex(ctx)
		}
	}
}

func (w *Watcher) reindex(ctx context.Context) {
	res, err := w.indexer.IndexProject(ctx, w.projectID, false)
	if err != nil {
		// A run already in flight will pick up further changes on the next
		// debounce cycle.
		if errors.Is(err, engine.ErrAlreadyIndexing) {
			return
		}
		log.Printf("re-index of %s failed: %v", w.projectID, err)
		return
	}
	if res.Total > 0 {
		log.Printf("re-indexed %s: %d indexed, %d failed, %d removed",
			w.projectID, res.Indexed, res.Failed, res.Removed)
	}
}

package engine

import "sync"

// lockTable permits at most one in-flight indexing run per project within
// this process. Acquire-or-reject: contenders get an immediate error instead
// of queueing. Cross-process locking is out of scope.
type lockTable struct {
	mu   sync.Mutex
	held map[string]bool
}

func newLockTable() *lockTable {
	return &lockTable{held: make(map[string]bool)}
}

// acquire takes the project lock, reporting false if it is already held.
func (l *lockTable) acquire(projectID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[projectID] {
		return false
	}
	l.held[projectID] = true
	return true
}

func (l *lockTable) release(projectID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, projectID)
}

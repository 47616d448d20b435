package engine

import (
	"sync"
	"time"
)

// Status is the phase of an indexing run an Event reports.
type Status string

const (
	StatusStarted    Status = "started"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Event is the progress notification emitted during an indexing run. One run
// emits started, then processing once per document, then completed or error.
type Event struct {
	ProjectID          string    `json:"project_id"`
	Status             Status    `json:"status"`
	TotalDocuments     int       `json:"total_documents"`
	ProcessedDocuments int       `json:"processed_documents"`
	CurrentDocument    string    `json:"current_document,omitempty"`
	Error              string    `json:"error,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// Emitter fans events out to subscribers. Subscribers run synchronously on
// the indexing goroutine, in subscription order, so event ordering per run
// is exactly emission order.
type Emitter struct {
	mu   sync.Mutex
	subs []func(Event)
}

// Subscribe registers a callback for every future event.
func (e *Emitter) Subscribe(fn func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, fn)
}

func (e *Emitter) emit(ev Event) {
	ev.Timestamp = time.Now().UTC()
	e.mu.Lock()
	subs := make([]func(Event), len(e.subs))
	copy(subs, e.subs)
	e.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

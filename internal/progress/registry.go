package progress

import (
	"sync"
	"sync/atomic"
)

type session struct {
	queue     *Queue
	cancelled atomic.Bool
}

// Registry tracks the live import sessions' queues and cancellation flags.
// Entries live until Cleanup; a finished session's queue stays around so a
// late subscriber can still drain the backlog up to the done event.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*session)}
}

// GetOrCreateQueue is idempotent: producer and subscribers race to call it
// and all get the same queue.
func (r *Registry) GetOrCreateQueue(sessionID string) *Queue {
	return r.getOrCreate(sessionID).queue
}

func (r *Registry) Push(sessionID string, event Event) {
	r.getOrCreate(sessionID).queue.Push(event)
}

// RequestCancel flips the session's cancel flag. The import pipeline polls
// the flag between items; there is no forced abort.
func (r *Registry) RequestCancel(sessionID string) {
	r.getOrCreate(sessionID).cancelled.Store(true)
}

func (r *Registry) IsCancelled(sessionID string) bool {
	r.mu.Lock()
	entry := r.sessions[sessionID]
	r.mu.Unlock()
	return entry != nil && entry.cancelled.Load()
}

func (r *Registry) Cleanup(sessionID string) {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
}

func (r *Registry) getOrCreate(sessionID string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := r.sessions[sessionID]
	if entry == nil {
		entry = &session{queue: newQueue()}
		r.sessions[sessionID] = entry
	}
	return entry
}

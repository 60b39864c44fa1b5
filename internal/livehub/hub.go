package livehub

import (
	"log/slog"
	"sync"

	"github.com/cosmic-gao/nexo-sub000/editor"
	"github.com/cosmic-gao/nexo-sub000/internal/document"
)

// Hub owns every open document's Session, keyed by document id. One Hub
// typically backs one running server process.
type Hub struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	log        *slog.Logger
	maxHistory int
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithLogger sets the hub's logger, propagated to every session it
// creates. Defaults to slog.Default() (app.go's convention).
func WithLogger(l *slog.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}

// WithMaxHistory bounds the undo/redo history of every Controller the hub
// creates (editor.WithMaxHistory).
func WithMaxHistory(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.maxHistory = n
		}
	}
}

// New creates an empty Hub.
func New(opts ...HubOption) *Hub {
	h := &Hub{
		sessions:   make(map[string]*Session),
		log:        slog.Default(),
		maxHistory: 100,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// GetOrCreateSession returns the existing session for docID, or creates a
// fresh one (§12: "one active writer session per document").
func (h *Hub) GetOrCreateSession(docID string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[docID]; ok {
		return s
	}
	ctrl := editor.New(document.Document{},
		editor.WithLogger(h.log),
		editor.WithMaxHistory(h.maxHistory))
	s := newSession(docID, ctrl, h.log)
	h.sessions[docID] = s
	return s
}

// GetSession returns the session for docID, if one is open.
func (h *Hub) GetSession(docID string) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[docID]
	return s, ok
}

// CloseSession tears down and forgets docID's session, if open.
func (h *Hub) CloseSession(docID string) {
	h.mu.Lock()
	s, ok := h.sessions[docID]
	delete(h.sessions, docID)
	h.mu.Unlock()
	if ok {
		s.Close()
	}
}

// CloseAll tears down every open session (used by graceful shutdown).
func (h *Hub) CloseAll() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for id, s := range h.sessions {
		sessions = append(sessions, s)
		delete(h.sessions, id)
	}
	h.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

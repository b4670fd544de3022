package live

import (
	"log/slog"
	"sync"
)

// Hub tracks open preview sessions so the server can drain them on
// shutdown. Sessions are otherwise independent of each other.
//
// Teardown only ever signals a session via its closed channel; the send
// channel is never closed, so a session goroutine still draining queued
// events cannot panic on a late write.
type Hub struct {
	mu         sync.RWMutex
	sessions   map[string]*Session // clientID -> session
	register   chan *Session
	unregister chan *Session
	quit       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]*Session),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case s := <-h.register:
			h.addSession(s)
		case s := <-h.unregister:
			h.removeSession(s)
		case <-h.quit:
			return
		}
	}
}

// Register hands the session to the hub loop. After Stop the loop is
// gone; the session is shut down on the spot instead of blocking.
func (h *Hub) Register(s *Session) {
	select {
	case h.register <- s:
	case <-h.quit:
		s.close()
	}
}

// Unregister removes the session, completing the teardown inline when
// the hub loop has already exited.
func (h *Hub) Unregister(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.quit:
		h.removeSession(s)
	}
}

// Stop closes every open session and stops the hub loop.
func (h *Hub) Stop() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	close(h.quit)

	slog.Info("live hub stopped", "sessions", len(sessions))
}

func (h *Hub) addSession(s *Session) {
	h.mu.Lock()
	h.sessions[s.ClientID] = s
	h.mu.Unlock()

	slog.Info("preview session opened", "client", s.ClientID, "document", s.DocID)
}

func (h *Hub) removeSession(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s.ClientID]
	if ok {
		delete(h.sessions, s.ClientID)
	}
	h.mu.Unlock()

	s.close()

	if ok {
		slog.Info("preview session closed", "client", s.ClientID, "document", s.DocID)
	}
}

package live

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flexpath/flexpath/internal/document"
)

func newHubSession(t *testing.T, hub *Hub) *Session {
	t.Helper()
	doc := document.NewSampleDocument("doc_test")
	s := NewSession(hub, nil, "client_1", doc.ID, doc)
	hub.addSession(s)
	drainFrame(t, s) // initial render
	return s
}

func TestTeardownWithQueuedEventDoesNotPanic(t *testing.T) {
	hub := NewHub()
	s := newHubSession(t, hub)

	// The connection dropped while an event was still queued: teardown
	// runs first, then the session goroutine handles the leftover event.
	// The late sendMessage must be swallowed, not crash the process.
	hub.removeSession(s)
	s.handleMessage(Message{Type: TypeRenderForce})

	requireNoOutbound(t, s)
}

func TestRemoveSessionIsIdempotent(t *testing.T) {
	hub := NewHub()
	s := newHubSession(t, hub)

	hub.removeSession(s)
	hub.removeSession(s)

	select {
	case <-s.closed:
	default:
		t.Fatal("session not closed")
	}
}

func TestStopClosesOpenSessions(t *testing.T) {
	hub := NewHub()
	s := newHubSession(t, hub)

	hub.Stop()

	select {
	case <-s.closed:
	default:
		t.Fatal("session not closed by Stop")
	}
}

func TestUnregisterAfterStopReturns(t *testing.T) {
	hub := NewHub()
	s := newHubSession(t, hub)
	hub.Stop()

	// The hub loop is gone; a late disconnect must still complete its
	// deferred unregister instead of blocking forever.
	done := make(chan struct{})
	go func() {
		hub.Unregister(s)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked after Stop")
	}
}

func TestRegisterAfterStopClosesSession(t *testing.T) {
	hub := NewHub()
	hub.Stop()

	doc := document.NewSampleDocument("doc_test")
	s := NewSession(hub, nil, "client_late", doc.ID, doc)
	hub.Register(s)

	select {
	case <-s.closed:
	default:
		t.Fatal("late session not shut down")
	}
	assert.Empty(t, hub.sessions)
}

package live

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexpath/flexpath/internal/document"
	"github.com/flexpath/flexpath/internal/engine"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	doc := document.NewSampleDocument("doc_test")
	return NewSession(NewHub(), nil, "client_1", doc.ID, doc)
}

func payload(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

// drainFrame pops the next queued outbound message and decodes it as a
// render frame.
func drainFrame(t *testing.T, s *Session) engine.Frame {
	t.Helper()
	select {
	case data := <-s.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		require.Equal(t, TypeRenderFrame, msg.Type)
		var frame engine.Frame
		require.NoError(t, json.Unmarshal(msg.Payload, &frame))
		return frame
	default:
		t.Fatal("no outbound message queued")
		return engine.Frame{}
	}
}

func requireNoOutbound(t *testing.T, s *Session) {
	t.Helper()
	select {
	case data := <-s.send:
		t.Fatalf("unexpected outbound message: %s", data)
	default:
	}
}

func TestSessionInitialRender(t *testing.T) {
	s := newTestSession(t)

	// Setup renders immediately against the not-yet-reported (0,0) box.
	frame := drainFrame(t, s)
	assert.Zero(t, frame.Width)
	assert.Zero(t, frame.Height)
	require.NotEmpty(t, frame.Paths)
}

func TestSessionWatchesReportedAncestor(t *testing.T) {
	s := newTestSession(t)

	assert.Same(t, s.ancestor, s.handle.Ancestor())
}

func TestSessionViewportResizeRendersAndDedups(t *testing.T) {
	s := newTestSession(t)
	drainFrame(t, s) // initial

	vp := ViewportPayload{Target: Box{Width: 200, Height: 100}}
	s.handleMessage(Message{Type: TypeViewportResize, Payload: payload(t, vp)})

	frame := drainFrame(t, s)
	assert.Equal(t, 200.0, frame.Width)
	assert.Equal(t, "M 10,96 L 190,96", frame.Paths[0].D)

	// Same box again: deduped, nothing goes out.
	s.handleMessage(Message{Type: TypeViewportResize, Payload: payload(t, vp)})
	requireNoOutbound(t, s)
}

func TestSessionTransitionPolling(t *testing.T) {
	s := newTestSession(t)
	drainFrame(t, s)

	s.handleMessage(Message{Type: TypeViewportResize, Payload: payload(t, ViewportPayload{
		Target: Box{Width: 200, Height: 100},
	})})
	drainFrame(t, s)

	s.handleMessage(Message{Type: TypeTransitionStart, Payload: nil})

	// The box moves between ticks; each tick samples and renders.
	s.target.box = engine.Dimensions{Width: 220, Height: 100}
	s.frames.fire()
	frame := drainFrame(t, s)
	assert.Equal(t, 220.0, frame.Width)

	// Settled box: the tick is a no-op and the end event stops the loop.
	s.frames.fire()
	requireNoOutbound(t, s)
	s.handleMessage(Message{Type: TypeTransitionEnd, Payload: nil})
	s.frames.fire()
	requireNoOutbound(t, s)
}

func TestSessionDocUpdate(t *testing.T) {
	s := newTestSession(t)
	drainFrame(t, s)

	doc := document.PathDocument{
		ID: "doc_test",
		Paths: []document.PathDescriptor{{
			ID:      "path_solo",
			Visible: true,
			Commands: []document.PathCommand{
				{Cmd: document.CommandMoveTo, X: "0", Y: "0"},
			},
		}},
	}
	s.handleMessage(Message{Type: TypeDocUpdate, Payload: payload(t, doc)})

	frame := drainFrame(t, s)
	require.Len(t, frame.Paths, 1)
	assert.Equal(t, "path_solo", frame.Paths[0].ID)
}

func TestSessionInvalidDocUpdateReportsError(t *testing.T) {
	s := newTestSession(t)
	drainFrame(t, s)

	s.handleMessage(Message{Type: TypeDocUpdate, Payload: json.RawMessage(`{broken`)})

	select {
	case data := <-s.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, TypeError, msg.Type)
	default:
		t.Fatal("expected an error message")
	}
}

func TestSessionForceRenderBypassesDedup(t *testing.T) {
	s := newTestSession(t)
	drainFrame(t, s)

	s.handleMessage(Message{Type: TypeRenderForce, Payload: nil})
	drainFrame(t, s)
	s.handleMessage(Message{Type: TypeRenderForce, Payload: nil})
	drainFrame(t, s)
}

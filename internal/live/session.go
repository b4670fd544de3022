package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/flexpath/flexpath/internal/document"
	"github.com/flexpath/flexpath/internal/engine"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 256 * 1024

	// Server-side polling rate for transition/animation tracking.
	frameInterval = 33 * time.Millisecond
	framesPerSec  = 30
)

// remoteElement is an engine.Element backed by client-reported geometry.
// Bounds reflect the last viewport.resize payload, so the server-side
// scheduler sees the same boxes the browser does.
type remoteElement struct {
	box    engine.Dimensions
	parent *remoteElement
}

func (e *remoteElement) Bounds() engine.Dimensions { return e.box }

func (e *remoteElement) Parent() engine.Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// remoteInspector marks the reported ancestor as transition-enabled so the
// engine watches it instead of the target.
type remoteInspector struct{}

func (remoteInspector) Describe(el engine.Element) engine.StyleInfo {
	re, ok := el.(*remoteElement)
	if !ok {
		return engine.StyleInfo{}
	}
	// Only the top remote element (the reported ancestor) qualifies.
	return engine.StyleInfo{HasTransition: re.parent == nil}
}

// frameReq is one pending animation-frame callback.
type frameReq struct {
	fn        func()
	cancelled bool
}

// frameLoop is the session's engine.FrameScheduler. It is pumped by the
// session ticker, so all callbacks run on the session goroutine that the
// scheduler's single-threaded discipline requires.
type frameLoop struct {
	pending []*frameReq
}

func (l *frameLoop) RequestFrame(fn func()) (cancel func()) {
	r := &frameReq{fn: fn}
	l.pending = append(l.pending, r)
	return func() { r.cancelled = true }
}

func (l *frameLoop) fire() {
	batch := l.pending
	l.pending = nil
	for _, r := range batch {
		if !r.cancelled {
			r.fn()
		}
	}
}

// Session is one preview connection: a server-side rendering session whose
// geometry events arrive over the wire and whose sink pushes compiled
// frames back to the client.
//
// closed is the only teardown signal; send stays open for the session's
// lifetime so in-flight event handling never writes to a closed channel.
type Session struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	events    chan Message
	closed    chan struct{}
	closeOnce sync.Once
	ClientID  string
	DocID     string

	target   *remoteElement
	ancestor *remoteElement
	frames   *frameLoop
	handle   *engine.Handle
}

func NewSession(hub *Hub, conn *websocket.Conn, clientID, docID string, doc *document.PathDocument) *Session {
	ancestor := &remoteElement{}
	target := &remoteElement{parent: ancestor}
	frames := &frameLoop{}

	s := &Session{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		events:   make(chan Message, 64),
		closed:   make(chan struct{}),
		ClientID: clientID,
		DocID:    docID,
		target:   target,
		ancestor: ancestor,
		frames:   frames,
	}

	s.handle = engine.Setup(target, doc, engine.Deps{
		Sink:      sessionSink{s},
		Frames:    frames,
		Inspector: remoteInspector{},
	})

	return s
}

// Run is the session's event loop. Everything that touches the engine
// happens here: inbound geometry events and the frame ticker both funnel
// into this goroutine.
func (s *Session) Run() {
	ticker := time.NewTicker(frameInterval)
	defer func() {
		ticker.Stop()
		s.handle.Destroy()
	}()

	s.sendMessage(TypeWelcome, WelcomePayload{
		ClientID:   s.ClientID,
		DocumentID: s.DocID,
		FPS:        framesPerSec,
	})

	for {
		select {
		case msg := <-s.events:
			s.handleMessage(msg)
		case <-ticker.C:
			s.frames.fire()
		case <-s.closed:
			return
		}
	}
}

func (s *Session) handleMessage(msg Message) {
	switch msg.Type {
	case TypeViewportResize:
		var vp ViewportPayload
		if err := json.Unmarshal(msg.Payload, &vp); err != nil {
			slog.Warn("invalid viewport payload", "error", err, "client", s.ClientID)
			return
		}
		s.target.box = engine.Dimensions{Width: vp.Target.Width, Height: vp.Target.Height}
		if vp.Ancestor != nil {
			s.ancestor.box = engine.Dimensions{Width: vp.Ancestor.Width, Height: vp.Ancestor.Height}
		} else {
			s.ancestor.box = s.target.box
		}
		s.handle.OnResize()

	case TypeTransitionStart:
		s.handle.OnTransitionStart()
	case TypeTransitionEnd:
		s.handle.OnTransitionEnd()
	case TypeAnimationStart:
		s.handle.OnAnimationStart()
	case TypeAnimationEnd:
		s.handle.OnAnimationEnd()

	case TypeDocUpdate:
		var doc document.PathDocument
		if err := json.Unmarshal(msg.Payload, &doc); err != nil {
			s.sendMessage(TypeError, ErrorPayload{Reason: "invalid document"})
			return
		}
		s.handle.Update(&doc)

	case TypeRenderForce:
		s.handle.Render()

	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", s.ClientID)
	}
}

// sessionSink pushes each committed frame to the client.
type sessionSink struct {
	s *Session
}

func (k sessionSink) Apply(frame engine.Frame) {
	k.s.sendMessage(TypeRenderFrame, frame)
}

// close signals teardown exactly once. Safe to call from the hub, the
// pumps, and the session goroutine.
func (s *Session) close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

func (s *Session) sendMessage(msgType string, payload interface{}) {
	select {
	case <-s.closed:
		return
	default:
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "error", err, "type", msgType)
		return
	}

	data, err := json.Marshal(Message{Type: msgType, ClientID: s.ClientID, Payload: raw})
	if err != nil {
		slog.Error("marshal message", "error", err, "type", msgType)
		return
	}

	select {
	case s.send <- data:
	default:
		slog.Warn("session send buffer full, dropping message", "client", s.ClientID)
	}
}

func (s *Session) ReadPump(ctx context.Context) {
	defer func() {
		s.hub.Unregister(s)
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	s.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "client", s.ClientID)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "client", s.ClientID)
			continue
		}

		select {
		case s.events <- msg:
		case <-s.closed:
			return
		}
	}
}

func (s *Session) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-s.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "client", s.ClientID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-s.closed:
			return

		case <-ctx.Done():
			return
		}
	}
}

package engine

import "github.com/flexpath/flexpath/internal/document"

// Deps are the host capabilities a rendering session needs. Sink and Frames
// are required; Observe and Inspector are optional (a session without them
// simply never sees resize notifications or animated ancestors).
type Deps struct {
	Sink   Sink
	Frames FrameScheduler

	// Observe starts discrete size observation of the element and invokes
	// notify on every box change. It returns a stop function.
	Observe func(el Element, notify func()) (stop func())

	Inspector StyleInspector
}

// Handle is one live rendering session for one target element. It is
// returned by Setup and exposes the manual re-trigger, the lifecycle event
// entry points the integration layer forwards, and teardown.
type Handle struct {
	sched    *Scheduler
	ancestor Element
}

// Setup starts a rendering session: finds the watched ancestor, wires the
// resize observation, and performs the initial render. The document is
// treated as read-only; its Options carry the backdrop/viewBox flags.
func Setup(target Element, doc *document.PathDocument, deps Deps) *Handle {
	ancestor := FindAnimatedAncestor(target, deps.Inspector)

	s := NewScheduler(target, ancestor, doc.Paths, doc.Options, deps.Frames, deps.Sink)
	if deps.Observe != nil {
		s.SetResizeCancel(deps.Observe(target, s.OnResize))
	}

	s.Render()

	return &Handle{sched: s, ancestor: ancestor}
}

// Ancestor returns the element whose transition/animation lifecycle events
// must be forwarded to this handle.
func (h *Handle) Ancestor() Element { return h.ancestor }

// Render forces an immediate unconditional re-evaluation, bypassing the
// dimension-equality cache.
func (h *Handle) Render() { h.sched.Render() }

// Update replaces the session's path set and re-renders.
func (h *Handle) Update(doc *document.PathDocument) {
	h.sched.Update(doc.Paths, doc.Options)
}

// Destroy stops all observation and polling. No sink calls occur afterward.
func (h *Handle) Destroy() { h.sched.Destroy() }

// Event entry points, forwarded by the integration layer from the watched
// ancestor's lifecycle notifications.

func (h *Handle) OnResize()          { h.sched.OnResize() }
func (h *Handle) OnTransitionStart() { h.sched.OnTransitionStart() }
func (h *Handle) OnTransitionEnd()   { h.sched.OnTransitionEnd() }
func (h *Handle) OnAnimationStart()  { h.sched.OnAnimationStart() }
func (h *Handle) OnAnimationEnd()    { h.sched.OnAnimationEnd() }

package engine

import (
	"fmt"
	"log/slog"

	"github.com/flexpath/flexpath/internal/document"
)

// Dimensions is a sampled (width, height) pair. Compared by value for
// render deduplication.
type Dimensions struct {
	Width  float64
	Height float64
}

// Element is the engine's view of a drawable node in the host's tree.
// Implementations back it with a DOM element (wasm) or a client-reported
// viewport (live preview sessions). A detached or unmeasurable element
// reports zero bounds, which renders a degenerate but well-defined path.
type Element interface {
	Bounds() Dimensions
	Parent() Element
}

// Frame is one render's worth of output handed to the sink. The sink is
// expected to replace, not accumulate, prior primitives.
type Frame struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// ViewBox is the coordinate-space declaration sized to the target's
	// pixel box, or empty when the option is off.
	ViewBox string `json:"viewBox,omitempty"`

	// Backdrop asks the sink to draw its auxiliary backdrop layer.
	Backdrop bool `json:"backdrop,omitempty"`

	Paths []CompiledPath `json:"paths"`
}

// Sink materializes compiled path data into visible primitives.
type Sink interface {
	Apply(Frame)
}

// FrameScheduler schedules a callback on the host loop's next animation
// frame. The returned cancel function discards a not-yet-delivered frame.
// Callbacks must be delivered on the same loop that drives the scheduler.
type FrameScheduler interface {
	RequestFrame(fn func()) (cancel func())
}

// pollSource is the per-source state machine for the two continuous change
// sources. States: idle (active=false) and polling (active=true, cancel set
// while a frame is pending).
type pollSource struct {
	name   string
	active bool
	cancel func()
}

// Scheduler owns the render lifecycle for one target element. It tracks the
// last-rendered dimensions and reacts to three overlapping change sources:
// discrete resize notifications, and transition/animation phases polled per
// frame until their geometry settles.
//
// All methods must be called from the single goroutine that owns the host
// loop (the wasm main thread, or a live session's goroutine). The dedup
// check on dimensions is the only coordination between sources.
type Scheduler struct {
	target   Element
	ancestor Element
	frames   FrameScheduler
	sink     Sink

	paths []document.PathDescriptor
	opts  document.RenderOptions

	// Last committed target dimensions. Valid only after the first commit.
	cache      Dimensions
	cacheValid bool

	// Last sampled ancestor bounds, used by the end-notification
	// termination check.
	ancestorSeen      Dimensions
	ancestorSeenValid bool

	transition pollSource
	animation  pollSource

	stopResize func()
	destroyed  bool
}

// NewScheduler creates a scheduler for the target element. The ancestor is
// the element whose transition/animation lifecycle drives the polling loops
// (see FindAnimatedAncestor); it may equal the target.
func NewScheduler(target, ancestor Element, paths []document.PathDescriptor, opts document.RenderOptions, frames FrameScheduler, sink Sink) *Scheduler {
	return &Scheduler{
		target:     target,
		ancestor:   ancestor,
		frames:     frames,
		sink:       sink,
		paths:      paths,
		opts:       opts,
		transition: pollSource{name: "transition"},
		animation:  pollSource{name: "animation"},
	}
}

// SetResizeCancel registers the function that stops the discrete resize
// observation on Destroy.
func (s *Scheduler) SetResizeCancel(stop func()) {
	s.stopResize = stop
}

// Update replaces the path descriptors and forces a render at the current
// dimensions.
func (s *Scheduler) Update(paths []document.PathDescriptor, opts document.RenderOptions) {
	if s.destroyed {
		return
	}
	s.paths = paths
	s.opts = opts
	s.Render()
}

// OnResize handles a discrete size-observation notification.
func (s *Scheduler) OnResize() {
	s.attemptRender()
}

// OnTransitionStart enters the polling state for the transition source.
func (s *Scheduler) OnTransitionStart() {
	s.startPolling(&s.transition)
}

// OnTransitionEnd leaves the polling state, but only if the watched
// ancestor's geometry has settled: when another transition started before
// this one finished, the ancestor's bounds still differ from the last
// sampled ones and the loop intentionally keeps running.
func (s *Scheduler) OnTransitionEnd() {
	s.endPolling(&s.transition)
}

// OnAnimationStart enters the polling state for the animation source.
func (s *Scheduler) OnAnimationStart() {
	s.startPolling(&s.animation)
}

// OnAnimationEnd leaves the polling state under the same settled-geometry
// condition as OnTransitionEnd.
func (s *Scheduler) OnAnimationEnd() {
	s.endPolling(&s.animation)
}

// Render recomputes and commits unconditionally, bypassing the dimension
// cache. Used for manual re-trigger and for the initial render.
func (s *Scheduler) Render() {
	if s.destroyed {
		return
	}
	s.commit(s.target.Bounds())
}

// Destroy stops the resize observation and both polling loops. No sink
// calls occur after Destroy returns.
func (s *Scheduler) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true

	if s.stopResize != nil {
		s.stopResize()
		s.stopResize = nil
	}
	s.stopSource(&s.transition)
	s.stopSource(&s.animation)
}

// startPolling moves a source from idle to polling and schedules the first
// frame. A source that is already polling stays as it is; the loops are
// independent and may run concurrently with each other and with resize
// notifications.
func (s *Scheduler) startPolling(src *pollSource) {
	if s.destroyed || src.active {
		return
	}
	src.active = true
	s.scheduleStep(src)
}

// endPolling applies the termination check: the loop stops only once the
// ancestor's current bounds match the bounds sampled on the previous
// attempt. Transitions have no per-frame change event, so polling is the
// approximation and this is its self-termination point.
func (s *Scheduler) endPolling(src *pollSource) {
	if !src.active {
		return
	}

	current := s.ancestor.Bounds()
	if s.ancestorSeenValid && current != s.ancestorSeen {
		slog.Debug("geometry unsettled at end notification, polling continues",
			"source", src.name, "seen", boxString(s.ancestorSeen), "current", boxString(current))
		return
	}
	s.stopSource(src)
}

func (s *Scheduler) stopSource(src *pollSource) {
	src.active = false
	if src.cancel != nil {
		src.cancel()
		src.cancel = nil
	}
}

func (s *Scheduler) scheduleStep(src *pollSource) {
	src.cancel = s.frames.RequestFrame(func() {
		s.step(src)
	})
}

// step is one polling iteration. The exit condition is checked explicitly
// on every iteration before any work and before re-arming.
func (s *Scheduler) step(src *pollSource) {
	src.cancel = nil
	if s.destroyed || !src.active {
		return
	}

	s.attemptRender()

	if s.destroyed || !src.active {
		return
	}
	s.scheduleStep(src)
}

// attemptRender samples the target's current box and commits a render
// unless it exactly equals the last committed dimensions. The check is
// keyed on the target's own box: an ancestor resize that leaves the target
// unchanged is a no-op.
func (s *Scheduler) attemptRender() {
	if s.destroyed {
		return
	}

	s.ancestorSeen = s.ancestor.Bounds()
	s.ancestorSeenValid = true

	d := s.target.Bounds()
	if s.cacheValid && d == s.cache {
		return
	}
	s.commit(d)
}

func (s *Scheduler) commit(d Dimensions) {
	s.cache = d
	s.cacheValid = true

	frame := Frame{
		Width:    d.Width,
		Height:   d.Height,
		Backdrop: s.opts.Backdrop,
		Paths:    Compile(s.paths, d.Width, d.Height),
	}
	if s.opts.ViewBox {
		frame.ViewBox = fmt.Sprintf("0 0 %d %d", int(d.Width), int(d.Height))
	}
	s.sink.Apply(frame)
}

func boxString(d Dimensions) string {
	return fmt.Sprintf("%gx%g", d.Width, d.Height)
}

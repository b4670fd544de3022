//go:build js && wasm

package main

import (
	"encoding/json"
	"strings"
	"syscall/js"

	"github.com/flexpath/flexpath/internal/document"
	"github.com/flexpath/flexpath/internal/engine"
	"github.com/flexpath/flexpath/internal/typeid"
)

const svgNS = "http://www.w3.org/2000/svg"

// sessions maps handle IDs to live bindings. The wasm runtime is single
// threaded, so plain map access is safe.
var sessions = map[string]*binding{}

func main() {
	flexpathEngine := js.Global().Get("Object").New()

	flexpathEngine.Set("setup", js.FuncOf(setup))
	flexpathEngine.Set("destroy", js.FuncOf(destroy))
	flexpathEngine.Set("render", js.FuncOf(render))
	flexpathEngine.Set("update", js.FuncOf(update))

	js.Global().Set("flexpathEngine", flexpathEngine)

	// Signal that WASM is ready
	js.Global().Set("flexpathWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- JS API ---

// setup(targetId string, docJSON string) -> handleID or {error}
func setup(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "setup(targetId, docJSON)"})
	}

	target := js.Global().Get("document").Call("getElementById", args[0].String())
	if target.IsNull() || target.IsUndefined() {
		return js.ValueOf(map[string]interface{}{"error": "target element not found"})
	}

	var doc document.PathDocument
	if err := json.Unmarshal([]byte(args[1].String()), &doc); err != nil {
		return js.ValueOf(map[string]interface{}{"error": "invalid document: " + err.Error()})
	}

	b := newBinding(target, &doc)
	sessions[b.id] = b

	return js.ValueOf(b.id)
}

func destroy(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	if b, ok := sessions[args[0].String()]; ok {
		b.destroy()
		delete(sessions, args[0].String())
	}
	return nil
}

func render(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	if b, ok := sessions[args[0].String()]; ok {
		b.handle.Render()
	}
	return nil
}

func update(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	b, ok := sessions[args[0].String()]
	if !ok {
		return nil
	}

	var doc document.PathDocument
	if err := json.Unmarshal([]byte(args[1].String()), &doc); err != nil {
		return js.ValueOf(map[string]interface{}{"error": "invalid document: " + err.Error()})
	}
	b.handle.Update(&doc)
	return nil
}

// --- engine.Element over a DOM node ---

type domElement struct {
	v js.Value
}

func (e *domElement) Bounds() engine.Dimensions {
	rect := e.v.Call("getBoundingClientRect")
	return engine.Dimensions{
		Width:  rect.Get("width").Float(),
		Height: rect.Get("height").Float(),
	}
}

func (e *domElement) Parent() engine.Element {
	p := e.v.Get("parentElement")
	if p.IsNull() || p.IsUndefined() {
		return nil
	}
	return &domElement{v: p}
}

// --- engine.StyleInspector over getComputedStyle ---

type computedStyleInspector struct{}

func (computedStyleInspector) Describe(el engine.Element) engine.StyleInfo {
	de, ok := el.(*domElement)
	if !ok {
		return engine.StyleInfo{}
	}
	style := js.Global().Get("window").Call("getComputedStyle", de.v)

	animName := style.Get("animationName").String()
	hasAnimation := animName != "" && animName != "none"

	hasTransition := false
	for _, dur := range strings.Split(style.Get("transitionDuration").String(), ",") {
		if d := strings.TrimSpace(dur); d != "" && d != "0s" {
			hasTransition = true
			break
		}
	}

	return engine.StyleInfo{HasAnimation: hasAnimation, HasTransition: hasTransition}
}

// --- engine.FrameScheduler over requestAnimationFrame ---

type rafScheduler struct{}

func (rafScheduler) RequestFrame(fn func()) (cancel func()) {
	var cb js.Func
	cb = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		cb.Release()
		fn()
		return nil
	})
	id := js.Global().Call("requestAnimationFrame", cb)
	return func() {
		js.Global().Call("cancelAnimationFrame", id)
		cb.Release()
	}
}

// --- resize observation over ResizeObserver ---

func observeResize(el engine.Element, notify func()) (stop func()) {
	de := el.(*domElement)
	cb := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		notify()
		return nil
	})
	observer := js.Global().Get("ResizeObserver").New(cb)
	observer.Call("observe", de.v)
	return func() {
		observer.Call("disconnect")
		cb.Release()
	}
}

// --- SVG sink ---

// svgSink draws compiled paths into an overlay <svg> inside the target.
// Each Apply replaces the previous primitives; with the backdrop flag a
// blurred duplicate group is drawn behind the main one.
type svgSink struct {
	svg      js.Value
	backdrop js.Value // <g> with blur filter, created lazily
	group    js.Value // <g> holding the main paths
}

func newSVGSink(target js.Value) *svgSink {
	doc := js.Global().Get("document")
	svg := doc.Call("createElementNS", svgNS, "svg")
	svg.Call("setAttribute", "style",
		"position:absolute;inset:0;width:100%;height:100%;pointer-events:none;overflow:visible")
	group := doc.Call("createElementNS", svgNS, "g")
	svg.Call("appendChild", group)
	target.Call("appendChild", svg)
	return &svgSink{svg: svg, group: group, backdrop: js.Null()}
}

func (k *svgSink) Apply(frame engine.Frame) {
	if frame.ViewBox != "" {
		k.svg.Call("setAttribute", "viewBox", frame.ViewBox)
	} else {
		k.svg.Call("removeAttribute", "viewBox")
	}

	if frame.Backdrop {
		k.ensureBackdrop()
		k.fillGroup(k.backdrop, frame.Paths)
	} else if !k.backdrop.IsNull() {
		clearChildren(k.backdrop)
	}

	k.fillGroup(k.group, frame.Paths)
}

func (k *svgSink) fillGroup(group js.Value, paths []engine.CompiledPath) {
	doc := js.Global().Get("document")
	clearChildren(group)

	for _, p := range paths {
		el := doc.Call("createElementNS", svgNS, "path")
		el.Call("setAttribute", "d", p.D)
		if p.Style.Stroke != "" {
			el.Call("setAttribute", "stroke", p.Style.Stroke)
		}
		if p.Style.StrokeWidth > 0 {
			el.Call("setAttribute", "stroke-width", js.ValueOf(p.Style.StrokeWidth))
		}
		if p.Style.Fill != "" {
			el.Call("setAttribute", "fill", p.Style.Fill)
		} else {
			el.Call("setAttribute", "fill", "none")
		}
		if !p.Visible {
			el.Call("setAttribute", "display", "none")
		}
		group.Call("appendChild", el)
	}
}

func (k *svgSink) ensureBackdrop() {
	if !k.backdrop.IsNull() {
		return
	}
	doc := js.Global().Get("document")

	defs := doc.Call("createElementNS", svgNS, "defs")
	filter := doc.Call("createElementNS", svgNS, "filter")
	filter.Call("setAttribute", "id", "flexpath-backdrop-blur")
	blur := doc.Call("createElementNS", svgNS, "feGaussianBlur")
	blur.Call("setAttribute", "stdDeviation", "4")
	filter.Call("appendChild", blur)
	defs.Call("appendChild", filter)

	k.backdrop = doc.Call("createElementNS", svgNS, "g")
	k.backdrop.Call("setAttribute", "filter", "url(#flexpath-backdrop-blur)")
	k.backdrop.Call("setAttribute", "opacity", "0.35")

	k.svg.Call("insertBefore", defs, k.group)
	k.svg.Call("insertBefore", k.backdrop, k.group)
}

func (k *svgSink) remove() {
	parent := k.svg.Get("parentElement")
	if !parent.IsNull() && !parent.IsUndefined() {
		parent.Call("removeChild", k.svg)
	}
}

func clearChildren(v js.Value) {
	for {
		first := v.Get("firstChild")
		if first.IsNull() {
			return
		}
		v.Call("removeChild", first)
	}
}

// --- binding: one engine session wired to the DOM ---

type binding struct {
	id        string
	handle    *engine.Handle
	sink      *svgSink
	ancestor  js.Value
	listeners []listener
}

type listener struct {
	event string
	fn    js.Func
}

func newBinding(target js.Value, doc *document.PathDocument) *binding {
	sink := newSVGSink(target)

	b := &binding{
		id:   typeid.NewSessionID(),
		sink: sink,
	}

	b.handle = engine.Setup(&domElement{v: target}, doc, engine.Deps{
		Sink:      sink,
		Frames:    rafScheduler{},
		Observe:   observeResize,
		Inspector: computedStyleInspector{},
	})

	// Transition/animation lifecycle events come from the watched
	// ancestor, not from the target.
	b.ancestor = b.handle.Ancestor().(*domElement).v
	b.listen("transitionstart", b.handle.OnTransitionStart)
	b.listen("transitionend", b.handle.OnTransitionEnd)
	b.listen("transitioncancel", b.handle.OnTransitionEnd)
	b.listen("animationstart", b.handle.OnAnimationStart)
	b.listen("animationend", b.handle.OnAnimationEnd)
	b.listen("animationcancel", b.handle.OnAnimationEnd)

	return b
}

func (b *binding) listen(event string, fn func()) {
	cb := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		fn()
		return nil
	})
	b.ancestor.Call("addEventListener", event, cb)
	b.listeners = append(b.listeners, listener{event: event, fn: cb})
}

func (b *binding) destroy() {
	b.handle.Destroy()
	for _, l := range b.listeners {
		b.ancestor.Call("removeEventListener", l.event, l.fn)
		l.fn.Release()
	}
	b.listeners = nil
	b.sink.remove()
}

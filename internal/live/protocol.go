package live

import "encoding/json"

type Message struct {
	Type     string          `json:"type"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Geometry events (client → server). The client mirrors what its
	// ResizeObserver and transition/animation listeners see.
	TypeViewportResize  = "viewport.resize"
	TypeTransitionStart = "transition.start"
	TypeTransitionEnd   = "transition.end"
	TypeAnimationStart  = "animation.start"
	TypeAnimationEnd    = "animation.end"

	// Document and render control (client → server)
	TypeDocUpdate   = "doc.update"
	TypeRenderForce = "render.force"

	// Compiled output (server → client)
	TypeRenderFrame = "render.frame"
)

// Box is a reported element box in CSS pixels.
type Box struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ViewportPayload carries the client's current geometry. Ancestor is the
// watched ancestor's box and may be omitted when it equals the target's.
type ViewportPayload struct {
	Target   Box  `json:"target"`
	Ancestor *Box `json:"ancestor,omitempty"`
}

type WelcomePayload struct {
	ClientID   string `json:"clientId"`
	DocumentID string `json:"documentId,omitempty"`
	FPS        int    `json:"fps"`
}

type ErrorPayload struct {
	Reason string `json:"reason"`
}

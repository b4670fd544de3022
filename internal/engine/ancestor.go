package engine

// StyleInfo describes the animation-related computed style of an element.
type StyleInfo struct {
	HasAnimation  bool
	HasTransition bool
}

// StyleInspector reads the host's computed style for an element. It is an
// injected capability because computed style is host-global state the
// engine cannot reach portably.
type StyleInspector interface {
	Describe(Element) StyleInfo
}

// FindAnimatedAncestor walks up from the target and returns the nearest
// ancestor whose computed style shows an active animation or a
// transition-enabled property. Transition and animation subscriptions
// attach to this element, not to the target.
//
// The lookup is static: it runs once at setup. When no qualifying ancestor
// exists (or no inspector is available) the target itself is returned, so
// setup never fails.
func FindAnimatedAncestor(target Element, inspector StyleInspector) Element {
	if inspector == nil {
		return target
	}

	for el := target.Parent(); el != nil; el = el.Parent() {
		info := inspector.Describe(el)
		if info.HasAnimation || info.HasTransition {
			return el
		}
	}
	return target
}

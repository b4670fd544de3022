package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindAnimatedAncestorNearest(t *testing.T) {
	root := &fakeElement{style: StyleInfo{HasAnimation: true}}
	mid := &fakeElement{parent: root, style: StyleInfo{HasTransition: true}}
	target := &fakeElement{parent: mid}

	got := FindAnimatedAncestor(target, fakeInspector{})
	assert.Same(t, mid, got)
}

func TestFindAnimatedAncestorFallsBackToTarget(t *testing.T) {
	root := &fakeElement{}
	target := &fakeElement{parent: root}

	assert.Same(t, target, FindAnimatedAncestor(target, fakeInspector{}))
	assert.Same(t, target, FindAnimatedAncestor(target, nil))
}

func TestFindAnimatedAncestorSkipsTargetItself(t *testing.T) {
	// The walk starts at the parent: the target's own style does not make
	// it its own watched ancestor when a qualifying ancestor exists.
	root := &fakeElement{style: StyleInfo{HasTransition: true}}
	target := &fakeElement{parent: root, style: StyleInfo{HasAnimation: true}}

	assert.Same(t, root, FindAnimatedAncestor(target, fakeInspector{}))
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveLiterals(t *testing.T) {
	// Plain numbers are independent of the container dimensions.
	assert.Equal(t, 42.0, Resolve("42", 200, 100))
	assert.Equal(t, 42.0, Resolve("42", 0, 0))
	assert.Equal(t, 3.5, Resolve("3.5", 200, 100))
	assert.Equal(t, 0.25, Resolve(".25", 200, 100))
}

func TestResolvePercent(t *testing.T) {
	// A bare percentage literal is a fractional term.
	assert.Equal(t, 0.5, Resolve("50%", 200, 100))
	assert.Equal(t, 1.0, Resolve("100%", 200, 100))
	assert.Equal(t, 100.0, Resolve("50% * width", 200, 100))
}

func TestResolveSymbols(t *testing.T) {
	assert.Equal(t, 200.0, Resolve("width", 200, 100))
	assert.Equal(t, 100.0, Resolve("height", 200, 100))
	assert.Equal(t, 95.0, Resolve("width/2-5", 200, 100))
	assert.Equal(t, 90.0, Resolve("width/2 - 10", 200, 100))
	assert.Equal(t, 150.0, Resolve("(width + height) / 2", 200, 100))
	assert.Equal(t, 190.0, Resolve("-10 + width", 200, 100))
}

func TestResolvePrecedence(t *testing.T) {
	assert.Equal(t, 14.0, Resolve("2 + 3 * 4", 0, 0))
	assert.Equal(t, 20.0, Resolve("(2 + 3) * 4", 0, 0))
	assert.Equal(t, -6.0, Resolve("2 * -3", 0, 0))
}

func TestResolveFailSafe(t *testing.T) {
	// Malformed or unevaluable expressions resolve to 0, never panic.
	for _, expr := range []string{
		"",
		"width +",
		"foo",
		"heights", // no partial symbol match
		"widthheight",
		"(width",
		"10..5",
		"10 / 0",
		"width / (height - height)",
		"50 %% 2",
		"10 20",
	} {
		assert.Equal(t, 0.0, Resolve(expr, 200, 100), "expr %q", expr)
	}
}

func TestResolveZeroDimensions(t *testing.T) {
	// Unmeasurable geometry is a valid (0,0) box, not an error.
	assert.Equal(t, 0.0, Resolve("width/2", 0, 0))
	assert.Equal(t, 10.0, Resolve("width/2 + 10", 0, 0))
}

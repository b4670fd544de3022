package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexpath/flexpath/internal/document"
)

func descriptor(cmds ...document.PathCommand) document.PathDescriptor {
	return document.PathDescriptor{
		ID:       "path_test",
		Visible:  true,
		Style:    document.Style{Stroke: "#000", StrokeWidth: 2, Fill: "none"},
		Commands: cmds,
	}
}

func TestCompilePercentages(t *testing.T) {
	// Percentages resolve against the operand's own axis.
	out := Compile([]document.PathDescriptor{descriptor(
		document.PathCommand{Cmd: document.CommandMoveTo, X: "10%", Y: "10%"},
		document.PathCommand{Cmd: document.CommandLineTo, X: "90%", Y: "50%"},
	)}, 200, 100)

	require.Len(t, out, 1)
	require.Len(t, out[0].Commands, 2)
	assert.Equal(t, CompiledCommand{Cmd: document.CommandMoveTo, X: 20, Y: 10}, out[0].Commands[0])
	assert.Equal(t, CompiledCommand{Cmd: document.CommandLineTo, X: 180, Y: 50}, out[0].Commands[1])
	assert.Equal(t, "M 20,10 L 180,50", out[0].D)
}

func TestCompileLiteralsIgnoreDimensions(t *testing.T) {
	cmd := document.PathCommand{Cmd: document.CommandMoveTo, X: "12", Y: "7.9"}

	for _, dims := range [][2]float64{{200, 100}, {0, 0}, {13, 1}} {
		out := Compile([]document.PathDescriptor{descriptor(cmd)}, dims[0], dims[1])
		require.Len(t, out[0].Commands, 1)
		assert.Equal(t, 12, out[0].Commands[0].X)
		assert.Equal(t, 7, out[0].Commands[0].Y) // truncated toward zero
	}
}

func TestCompileArithmetic(t *testing.T) {
	out := Compile([]document.PathDescriptor{descriptor(
		document.PathCommand{Cmd: document.CommandMoveTo, X: "width/2-5", Y: "height/2"},
	)}, 200, 100)

	assert.Equal(t, 95, out[0].Commands[0].X)
	assert.Equal(t, 50, out[0].Commands[0].Y)
}

func TestCompileBareSymbols(t *testing.T) {
	out := Compile([]document.PathDescriptor{descriptor(
		document.PathCommand{Cmd: document.CommandMoveTo, X: "width", Y: "height"},
	)}, 200, 100)

	assert.Equal(t, 200, out[0].Commands[0].X)
	assert.Equal(t, 100, out[0].Commands[0].Y)
}

func TestCompileMalformedOperandDegradesToZero(t *testing.T) {
	// One bad coordinate must not abort sibling commands or paths.
	out := Compile([]document.PathDescriptor{descriptor(
		document.PathCommand{Cmd: document.CommandMoveTo, X: "width +", Y: "10"},
		document.PathCommand{Cmd: document.CommandLineTo, X: "90%", Y: "bogus"},
	)}, 200, 100)

	require.Len(t, out[0].Commands, 2)
	assert.Equal(t, CompiledCommand{Cmd: document.CommandMoveTo, X: 0, Y: 10}, out[0].Commands[0])
	assert.Equal(t, CompiledCommand{Cmd: document.CommandLineTo, X: 180, Y: 0}, out[0].Commands[1])
}

func TestCompilePassthrough(t *testing.T) {
	desc := descriptor(document.PathCommand{Cmd: document.CommandMoveTo, X: "0", Y: "0"})
	desc.Name = "Underline"
	desc.Visible = false

	out := Compile([]document.PathDescriptor{desc}, 200, 100)

	assert.Equal(t, "Underline", out[0].Name)
	assert.False(t, out[0].Visible)
	assert.Equal(t, desc.Style, out[0].Style)
}

func TestCompileTruncationTowardZero(t *testing.T) {
	out := Compile([]document.PathDescriptor{descriptor(
		document.PathCommand{Cmd: document.CommandMoveTo, X: "50%", Y: "0 - 7.9"},
	)}, 101, 100)

	assert.Equal(t, 50, out[0].Commands[0].X) // 50.5 truncates to 50
	assert.Equal(t, -7, out[0].Commands[0].Y) // toward zero, not floor
}

package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flexpath/flexpath/internal/document"
)

func TestBuildSVG(t *testing.T) {
	doc := &document.PathDocument{
		Paths: []document.PathDescriptor{
			{
				ID:      "path_1",
				Visible: true,
				Style:   document.Style{Stroke: "#333", StrokeWidth: 2},
				Commands: []document.PathCommand{
					{Cmd: document.CommandMoveTo, X: "10%", Y: "10%"},
					{Cmd: document.CommandLineTo, X: "90%", Y: "50%"},
				},
			},
			{
				ID:      "path_hidden",
				Visible: false,
				Commands: []document.PathCommand{
					{Cmd: document.CommandMoveTo, X: "0", Y: "0"},
				},
			},
		},
	}

	svg := BuildSVG(doc, 200, 100)

	assert.Contains(t, svg, `viewBox="0 0 200 100"`)
	assert.Contains(t, svg, `d="M 20,10 L 180,50"`)
	assert.Contains(t, svg, `stroke="#333"`)
	assert.Contains(t, svg, `stroke-width="2"`)
	assert.Contains(t, svg, `fill="none"`)
	assert.NotContains(t, svg, "path_hidden")
	assert.Equal(t, 1, strings.Count(svg, "<path"))
}

package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flexpath/flexpath/internal/document"
)

// CompiledCommand is one concrete drawing step: a command tag and integer
// coordinates. Fractional precision is discarded to match the sink's
// integer coordinate contract.
type CompiledCommand struct {
	Cmd document.CommandType `json:"cmd"`
	X   int                  `json:"x"`
	Y   int                  `json:"y"`
}

// CompiledPath is the render-ready form of one PathDescriptor at a specific
// container size. Instances are produced fresh on every render and handed
// to the sink; the engine keeps no reference to them.
type CompiledPath struct {
	ID       string            `json:"id"`
	Name     string            `json:"name,omitempty"`
	Visible  bool              `json:"visible"`
	Style    document.Style    `json:"style"`
	Commands []CompiledCommand `json:"commands"`

	// D is the serialized command list, e.g. "M 20,10 L 180,50".
	D string `json:"d"`
}

// Compile resolves every symbolic coordinate in the given descriptors
// against the container dimensions. Pure function of its inputs: no hidden
// state, no errors. A malformed operand degrades to coordinate 0 without
// affecting sibling commands or paths.
func Compile(paths []document.PathDescriptor, width, height float64) []CompiledPath {
	compiled := make([]CompiledPath, len(paths))
	for i, p := range paths {
		cp := CompiledPath{
			ID:       p.ID,
			Name:     p.Name,
			Visible:  p.Visible,
			Style:    p.Style,
			Commands: make([]CompiledCommand, len(p.Commands)),
		}

		parts := make([]string, len(p.Commands))
		for j, cmd := range p.Commands {
			x := compileOperand(cmd.X, width, height, "width")
			y := compileOperand(cmd.Y, width, height, "height")
			cp.Commands[j] = CompiledCommand{Cmd: cmd.Cmd, X: x, Y: y}
			parts[j] = fmt.Sprintf("%s %d,%d", cmd.Cmd, x, y)
		}
		cp.D = strings.Join(parts, " ")

		compiled[i] = cp
	}
	return compiled
}

// compileOperand resolves a single coordinate operand. Operands containing
// a percentage marker or an arithmetic operator go through the expression
// resolver, with percentages rewritten against the operand's own axis
// ("10%" on x becomes "10 * width / 100"). Anything else is a plain number.
// The result is truncated toward zero.
func compileOperand(op string, width, height float64, axis string) int {
	op = strings.TrimSpace(op)

	if strings.ContainsAny(op, "%+-*/") {
		rewritten := strings.ReplaceAll(op, "%", " * "+axis+" / 100")
		return int(Resolve(rewritten, width, height))
	}

	if n, err := strconv.ParseFloat(op, 64); err == nil {
		return int(n)
	}

	// Bare symbols ("width") and garbage both end up here; the resolver
	// handles the former and fail-safes the latter to 0.
	return int(Resolve(op, width, height))
}

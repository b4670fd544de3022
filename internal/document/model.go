package document

type PathDocument struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Version   int              `json:"version"`
	CreatedAt string           `json:"createdAt"`
	UpdatedAt string           `json:"updatedAt"`
	Paths     []PathDescriptor `json:"paths"`
	Options   RenderOptions    `json:"options"`
}

// RenderOptions are the per-document rendering flags consumed by the
// integration layer alongside the compiled path data.
type RenderOptions struct {
	// Backdrop enables the blurred duplicate layer drawn behind the paths.
	Backdrop bool `json:"backdrop"`
	// ViewBox emits a coordinate-space declaration sized to the target's
	// pixel box on every render.
	ViewBox bool `json:"viewBox"`
}

type CommandType string

const (
	CommandMoveTo CommandType = "M"
	CommandLineTo CommandType = "L"
)

// PathCommand is one step of a sub-path. X and Y are coordinate expressions:
// a plain number ("12"), a percentage of the container axis ("50%"), or
// arithmetic over the width/height symbols ("width/2 - 10"). They are
// re-resolved against the live container dimensions on every render.
type PathCommand struct {
	Cmd CommandType `json:"cmd"`
	X   string      `json:"x"`
	Y   string      `json:"y"`
}

// Style is passed through to the rendering sink unchanged.
type Style struct {
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Fill        string  `json:"fill"`
}

// PathDescriptor is one named, styleable sub-path. The engine treats it as
// read-only: commands are re-evaluated on each render, never mutated.
type PathDescriptor struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Visible  bool          `json:"visible"`
	Style    Style         `json:"style"`
	Commands []PathCommand `json:"commands"`
}

// NewEmptyDocument creates a blank document for a new stored path set.
func NewEmptyDocument(docID, name string) *PathDocument {
	return &PathDocument{
		ID:      docID,
		Name:    name,
		Version: 1,
		Paths:   []PathDescriptor{},
	}
}

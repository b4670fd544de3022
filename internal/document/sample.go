package document

// NewSampleDocument returns the built-in demo document: a responsive
// underline plus a diagonal accent, both expressed in container-relative
// coordinates so they track the element through resizes and transitions.
func NewSampleDocument(docID string) *PathDocument {
	return &PathDocument{
		ID:      docID,
		Name:    "Sample",
		Version: 1,
		Paths: []PathDescriptor{
			{
				ID:      "path_underline",
				Name:    "Underline",
				Visible: true,
				Style: Style{
					Stroke:      "#4f8cff",
					StrokeWidth: 2,
					Fill:        "none",
				},
				Commands: []PathCommand{
					{Cmd: CommandMoveTo, X: "5%", Y: "height - 4"},
					{Cmd: CommandLineTo, X: "95%", Y: "height - 4"},
				},
			},
			{
				ID:      "path_accent",
				Name:    "Accent",
				Visible: true,
				Style: Style{
					Stroke:      "#ff5c7a",
					StrokeWidth: 1.5,
					Fill:        "none",
				},
				Commands: []PathCommand{
					{Cmd: CommandMoveTo, X: "10%", Y: "10%"},
					{Cmd: CommandLineTo, X: "width/2", Y: "height/2"},
					{Cmd: CommandLineTo, X: "90%", Y: "10%"},
				},
			},
		},
		Options: RenderOptions{ViewBox: true},
	}
}

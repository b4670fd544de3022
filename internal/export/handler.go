package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/flexpath/flexpath/internal/document"
	"github.com/flexpath/flexpath/internal/engine"
)

const maxBodySize = 1 << 20 // 1MB

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

type exportRequest struct {
	Document document.PathDocument `json:"document"`
	Width    float64               `json:"width"`
	Height   float64               `json:"height"`
	Name     string                `json:"name"`
}

// ExportSVG compiles a path document at fixed dimensions and streams it
// back as a standalone SVG file.
func (h *Handler) ExportSVG(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Width <= 0 || req.Height <= 0 {
		http.Error(w, "width and height must be positive", http.StatusBadRequest)
		return
	}

	name := req.Name
	if name == "" {
		name = "paths"
	}
	// Sanitize filename
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)

	svg := BuildSVG(&req.Document, req.Width, req.Height)

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.svg"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(len(svg)))
	if _, err := w.Write([]byte(svg)); err != nil {
		slog.Debug("write export", "error", err)
		return
	}

	slog.Info("export complete", "name", name, "paths", len(req.Document.Paths), "size", len(svg))
}

// BuildSVG compiles the document at the given dimensions and renders it as
// an SVG document string. Hidden paths are skipped entirely.
func BuildSVG(doc *document.PathDocument, width, height float64) string {
	compiled := engine.Compile(doc.Paths, width, height)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		int(width), int(height), int(width), int(height))
	b.WriteString("\n")

	for _, p := range compiled {
		if !p.Visible || len(p.Commands) == 0 {
			continue
		}
		fmt.Fprintf(&b, `  <path d="%s" stroke="%s" stroke-width="%s" fill="%s"/>`,
			p.D, attr(p.Style.Stroke, "none"), formatFloat(p.Style.StrokeWidth), attr(p.Style.Fill, "none"))
		b.WriteString("\n")
	}

	b.WriteString("</svg>\n")
	return b.String()
}

func attr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

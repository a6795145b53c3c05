package terminal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer turns markdown into styled terminal text.
type Renderer struct {
	tr *glamour.TermRenderer
}

// NewRenderer creates a Renderer wrapping at width columns. An empty style
// picks one from the terminal background; "notty" renders plain text.
func NewRenderer(style string, width int) (*Renderer, error) {
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	if width <= 0 {
		width = 80
	}
	tr, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	return &Renderer{tr: tr}, nil
}

// Render returns the styled form of markdown. If rendering fails the source
// is returned as is.
func (r *Renderer) Render(markdown string) string {
	if r == nil || markdown == "" {
		return markdown
	}
	out, err := r.tr.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.Trim(out, "\n")
}

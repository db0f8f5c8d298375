// ABOUTME: Markdown rendering of a presenter via glamour
// ABOUTME: Builds a heading, the summary, and a field table, then styles it for the terminal

package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/mauromedda/spek/internal/spek"
)

// MarkdownSource returns the unstyled markdown document for p.
func MarkdownSource(p *spek.Presenter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.LabeledVersion())
	if summary := p.Summary(); summary != "" {
		fmt.Fprintf(&b, "%s\n\n", summary)
	}

	b.WriteString("| Field | Value |\n|---|---|\n")
	for _, f := range p.Fields() {
		fmt.Fprintf(&b, "| %s | %s |\n", f.Name, escapeCell(f.Value))
	}
	return b.String()
}

// Markdown renders MarkdownSource through glamour.
func (r *Renderer) Markdown(p *spek.Presenter) (string, error) {
	styleOpt := glamour.WithAutoStyle()
	if r.style != "auto" {
		styleOpt = glamour.WithStandardStyle(r.style)
	}

	renderer, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(r.width),
	)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}

	out, err := renderer.Render(MarkdownSource(p))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n ") + "\n", nil
}

func escapeCell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

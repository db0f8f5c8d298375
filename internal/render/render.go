// ABOUTME: Renders a Presenter for the terminal as styled text, markdown, or JSON
// ABOUTME: Format selection and shared options; each format lives in its own file

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mauromedda/spek/internal/spek"
)

// Format selects an output representation.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatMarkdown, FormatJSON:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q: want text, markdown or json", s)
	}
}

// Renderer writes presenters in a given format.
type Renderer struct {
	width int
	style string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithWidth sets the column budget. Non-positive values fall back to 80.
func WithWidth(w int) Option {
	return func(r *Renderer) {
		if w > 0 {
			r.width = w
		}
	}
}

// WithStyle sets the glamour style name: auto, dark, light or notty.
func WithStyle(style string) Option {
	return func(r *Renderer) {
		if style != "" {
			r.style = style
		}
	}
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{width: defaultWidth, style: "auto"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes p to w in format f.
func (r *Renderer) Render(w io.Writer, p *spek.Presenter, f Format) error {
	var (
		out string
		err error
	)
	switch f {
	case FormatText, "":
		out = r.Text(p)
	case FormatMarkdown:
		out, err = r.Markdown(p)
	case FormatJSON:
		var data []byte
		data, err = JSON(p)
		out = string(data)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
	if err != nil {
		return fmt.Errorf("rendering %s: %w", f, err)
	}

	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// ABOUTME: Styled key/value rendering of presenter fields with lipgloss
// ABOUTME: Labels are padded to a shared column; values are truncated to the terminal width

package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mauromedda/spek/internal/spek"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	emptyStyle = lipgloss.NewStyle().Faint(true)
)

const columnGap = 2

// Text renders the banner followed by one "key  value" line per field.
// Empty values are shown as "-".
func (r *Renderer) Text(p *spek.Presenter) string {
	fields := p.Fields()

	keyWidth := 0
	for _, f := range fields {
		keyWidth = max(keyWidth, visibleWidth(f.Name))
	}
	valueWidth := max(r.width-keyWidth-columnGap, 1)

	var b strings.Builder
	b.WriteString(titleStyle.Render(truncate(p.Banner(), r.width)))
	b.WriteString("\n\n")

	for _, f := range fields {
		b.WriteString(keyStyle.Render(padRight(f.Name, keyWidth)))
		b.WriteString(strings.Repeat(" ", columnGap))
		if f.Value == "" {
			b.WriteString(emptyStyle.Render("-"))
		} else {
			b.WriteString(truncate(f.Value, valueWidth))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

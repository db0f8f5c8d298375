// ABOUTME: Bubble Tea chooser that lets the user pick one of several installed gem versions
// ABOUTME: Typing filters candidates fuzzily; arrows move; enter picks; esc or ctrl+c cancels

package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mauromedda/spek/internal/spek"
)

// ErrCanceled is returned when the user dismisses the chooser.
var ErrCanceled = errors.New("gem selection canceled")

var (
	promptStyle   = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	detailStyle   = lipgloss.NewStyle().Faint(true)
	filterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// Item is one candidate row.
type Item struct {
	Label  string
	Detail string
}

// Model is a filterable list with value semantics.
type Model struct {
	items     []Item
	visible   []int
	selected  int
	scrollOff int
	maxHeight int
	filter    string
	chosen    int
	canceled  bool
}

// NewModel creates a Model over items. Nothing is chosen until enter.
func NewModel(items []Item) Model {
	m := Model{
		items:     items,
		maxHeight: 10,
		chosen:    -1,
	}
	m.applyFilter()
	return m
}

// Init returns nil; no commands needed at startup.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var key tea.KeyMsg
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// One row for the prompt, one spare so the list never scrolls the terminal.
		return m.SetMaxHeight(msg.Height - 2), nil
	case tea.KeyMsg:
		key = msg
	default:
		return m, nil
	}

	switch key.Type {
	case tea.KeyUp, tea.KeyShiftTab:
		m.moveUp()
	case tea.KeyDown, tea.KeyTab:
		m.moveDown()
	case tea.KeyEnter:
		if len(m.visible) > 0 {
			m.chosen = m.visible[m.selected]
			return m, tea.Quit
		}
	case tea.KeyEsc, tea.KeyCtrlC:
		m.canceled = true
		return m, tea.Quit
	case tea.KeyBackspace:
		if m.filter != "" {
			r := []rune(m.filter)
			m = m.SetFilter(string(r[:len(r)-1]))
		}
	case tea.KeyRunes, tea.KeySpace:
		m = m.SetFilter(m.filter + string(key.Runes))
	}
	return m, nil
}

// View renders the prompt, the filter, and the visible window of items.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(promptStyle.Render("Please select a gem:"))
	if m.filter != "" {
		b.WriteString(" " + filterStyle.Render(m.filter))
	}
	b.WriteByte('\n')

	end := min(m.scrollOff+m.maxHeight, len(m.visible))
	for i := m.scrollOff; i < end; i++ {
		item := m.items[m.visible[i]]
		row := "  " + item.Label
		if i == m.selected {
			row = selectedStyle.Render("> " + item.Label)
		}
		b.WriteString(row)
		if item.Detail != "" {
			b.WriteString("  " + detailStyle.Render(item.Detail))
		}
		b.WriteByte('\n')
	}
	if len(m.visible) == 0 {
		b.WriteString(detailStyle.Render("  no matches"))
		b.WriteByte('\n')
	}
	return b.String()
}

// SetFilter sets the fuzzy filter string and refilters. Returns a new model.
func (m Model) SetFilter(f string) Model {
	m.filter = f
	m.selected = 0
	m.scrollOff = 0
	m.applyFilter()
	return m
}

// SetMaxHeight limits the number of visible rows. Returns a new model.
// Update calls it whenever the terminal reports its size.
func (m Model) SetMaxHeight(h int) Model {
	m.maxHeight = max(h, 1)
	m.adjustScroll()
	return m
}

// Chosen returns the index into the original items, or -1.
func (m Model) Chosen() int {
	return m.chosen
}

// Canceled reports whether the user dismissed the chooser.
func (m Model) Canceled() bool {
	return m.canceled
}

// visibleItems returns the currently filtered items.
func (m Model) visibleItems() []Item {
	out := make([]Item, len(m.visible))
	for i, idx := range m.visible {
		out[i] = m.items[idx]
	}
	return out
}

func (m *Model) moveUp() {
	if m.selected > 0 {
		m.selected--
		m.adjustScroll()
	}
}

func (m *Model) moveDown() {
	if m.selected < len(m.visible)-1 {
		m.selected++
		m.adjustScroll()
	}
}

func (m *Model) adjustScroll() {
	if m.selected < m.scrollOff {
		m.scrollOff = m.selected
	}
	if m.selected >= m.scrollOff+m.maxHeight {
		m.scrollOff = m.selected - m.maxHeight + 1
	}
}

func (m *Model) applyFilter() {
	if m.filter == "" {
		m.visible = make([]int, len(m.items))
		for i := range m.items {
			m.visible[i] = i
		}
		return
	}

	labels := make([]string, len(m.items))
	for i, item := range m.items {
		labels[i] = item.Label
	}
	matches := fuzzy.Find(m.filter, labels)
	m.visible = make([]int, len(matches))
	for i, match := range matches {
		m.visible[i] = match.Index
	}
}

// Chooser runs Model as a Bubble Tea program. It satisfies spek.Chooser.
type Chooser struct {
	in  io.Reader
	out io.Writer
}

// NewChooser creates a Chooser that reads keys from in and draws on out.
func NewChooser(in io.Reader, out io.Writer) *Chooser {
	return &Chooser{in: in, out: out}
}

// Choose blocks until the user picks a candidate or cancels.
func (c *Chooser) Choose(candidates []*spek.Presenter) (int, error) {
	items := make([]Item, len(candidates))
	for i, p := range candidates {
		items[i] = Item{Label: p.NamedVersion(), Detail: p.SourcePath()}
	}

	prog := tea.NewProgram(NewModel(items), tea.WithInput(c.in), tea.WithOutput(c.out))
	final, err := prog.Run()
	if err != nil {
		return -1, fmt.Errorf("running chooser: %w", err)
	}

	m, ok := final.(Model)
	if !ok || m.Canceled() || m.Chosen() < 0 {
		return -1, ErrCanceled
	}
	return m.Chosen(), nil
}

// ABOUTME: Tests for the chooser Model Bubble Tea component
// ABOUTME: Feeds tea.KeyMsg values into Update and inspects the resulting model

package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/spek/internal/spek"
)

// Compile-time checks.
var (
	_ tea.Model    = Model{}
	_ spek.Chooser = (*Chooser)(nil)
)

func items() []Item {
	return []Item{
		{Label: "test 0.0.0", Detail: "/gems/a"},
		{Label: "test 1.0.0", Detail: "/gems/b"},
		{Label: "test 2.0.0", Detail: "/gems/c"},
	}
}

func send(m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var updated tea.Model
		updated, cmd = m.Update(msg)
		m = updated.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_Init(t *testing.T) {
	if cmd := NewModel(nil).Init(); cmd != nil {
		t.Error("Init() returned non-nil cmd")
	}
}

func TestModel_EnterChoosesFirst(t *testing.T) {
	m, cmd := send(NewModel(items()), tea.KeyMsg{Type: tea.KeyEnter})
	if m.Chosen() != 0 {
		t.Errorf("Chosen() = %d; want 0", m.Chosen())
	}
	if cmd == nil {
		t.Error("enter should return tea.Quit")
	}
}

func TestModel_Navigation(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.Msg
		want int
	}{
		{"down once", []tea.Msg{tea.KeyMsg{Type: tea.KeyDown}}, 1},
		{"down past end", []tea.Msg{tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}}, 2},
		{"up at top", []tea.Msg{tea.KeyMsg{Type: tea.KeyUp}}, 0},
		{"down then up", []tea.Msg{tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyUp}}, 0},
		{"tab", []tea.Msg{tea.KeyMsg{Type: tea.KeyTab}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := send(NewModel(items()), append(tt.keys, tea.KeyMsg{Type: tea.KeyEnter})...)
			if m.Chosen() != tt.want {
				t.Errorf("Chosen() = %d; want %d", m.Chosen(), tt.want)
			}
		})
	}
}

func TestModel_FilterMapsToOriginalIndex(t *testing.T) {
	m, _ := send(NewModel(items()), runes("2.0"))
	vis := m.visibleItems()
	if len(vis) == 0 || vis[0].Label != "test 2.0.0" {
		t.Fatalf("visibleItems() = %v; want test 2.0.0 first", vis)
	}

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Chosen() != 2 {
		t.Errorf("Chosen() = %d; want 2", m.Chosen())
	}
}

func TestModel_Backspace(t *testing.T) {
	m, _ := send(NewModel(items()), runes("zz"))
	if len(m.visibleItems()) != 0 {
		t.Fatalf("visibleItems() = %v; want none", m.visibleItems())
	}

	m, cmd := send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Chosen() != -1 || cmd != nil {
		t.Error("enter with no matches should do nothing")
	}

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace})
	if len(m.visibleItems()) != 3 {
		t.Errorf("visibleItems() after clearing = %d; want 3", len(m.visibleItems()))
	}
}

func TestModel_Cancel(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m, cmd := send(NewModel(items()), tea.KeyMsg{Type: key})
		if !m.Canceled() || m.Chosen() != -1 {
			t.Errorf("key %v: Canceled() = %v, Chosen() = %d", key, m.Canceled(), m.Chosen())
		}
		if cmd == nil {
			t.Errorf("key %v: expected tea.Quit", key)
		}
	}
}

func TestModel_View(t *testing.T) {
	view := NewModel(items()).View()
	if !strings.Contains(view, "Please select a gem:") {
		t.Errorf("View() missing prompt:\n%s", view)
	}
	for _, it := range items() {
		if !strings.Contains(view, it.Label) {
			t.Errorf("View() missing %q:\n%s", it.Label, view)
		}
	}
	if !strings.Contains(view, "> test 0.0.0") {
		t.Errorf("View() missing selection marker:\n%s", view)
	}
}

func TestModel_ScrollWindow(t *testing.T) {
	m := NewModel(items()).SetMaxHeight(1)
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})

	view := m.View()
	if strings.Contains(view, "test 0.0.0") || !strings.Contains(view, "test 2.0.0") {
		t.Errorf("scroll window wrong:\n%s", view)
	}
}

func TestModel_WindowSizeLimitsRows(t *testing.T) {
	m, cmd := send(NewModel(items()), tea.WindowSizeMsg{Width: 80, Height: 3})
	if cmd != nil {
		t.Error("WindowSizeMsg should not return a command")
	}
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})

	view := m.View()
	if strings.Contains(view, "test 1.0.0") || !strings.Contains(view, "test 2.0.0") {
		t.Errorf("window of one row expected:\n%s", view)
	}

	m, _ = send(m, tea.WindowSizeMsg{Width: 80, Height: 1})
	if !strings.Contains(m.View(), "test 2.0.0") {
		t.Errorf("tiny terminal should still show the selection:\n%s", m.View())
	}
}

func TestModel_ViewDetailOncePerRow(t *testing.T) {
	view := NewModel(items()).View()
	for _, it := range items() {
		if n := strings.Count(view, it.Detail); n != 1 {
			t.Errorf("detail %q rendered %d times:\n%s", it.Detail, n, view)
		}
	}
}

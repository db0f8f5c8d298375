// ABOUTME: Display-width helpers for fitting presenter values into terminal columns
// ABOUTME: Grapheme-aware via uniseg; per-cluster widths from go-runewidth

package render

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
	"golang.org/x/term"
)

const (
	defaultWidth = 80
	ellipsis     = "…"
)

// TerminalWidth reports the column count of f, or 80 when f is not a terminal.
func TerminalWidth(f *os.File) int {
	if f == nil {
		return defaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// visibleWidth returns the number of terminal cells s occupies.
func visibleWidth(s string) int {
	w := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		w += clusterWidth(cluster)
	}
	return w
}

func clusterWidth(cluster string) int {
	r, _ := utf8.DecodeRuneInString(cluster)
	return runewidth.RuneWidth(r)
}

// truncate shortens s to at most n cells, ending with an ellipsis when cut.
// Grapheme clusters are never split.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if visibleWidth(s) <= n {
		return s
	}

	limit := n - runewidth.StringWidth(ellipsis)
	var b strings.Builder
	w := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		cw := clusterWidth(cluster)
		if w+cw > limit {
			break
		}
		b.WriteString(cluster)
		w += cw
	}
	b.WriteString(ellipsis)
	return b.String()
}

// padRight pads s with spaces to exactly n cells. Longer strings are returned as is.
func padRight(s string, n int) string {
	if gap := n - visibleWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

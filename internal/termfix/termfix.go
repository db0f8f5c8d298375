// ABOUTME: Decides the terminal background before BubbleTea's init() can send OSC queries
// ABOUTME: Must be imported (with _) before any package that imports bubbletea

package termfix

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func init() {
	// An explicit background skips lipgloss's OSC 10/11 query, whose reply
	// would otherwise arrive as keystrokes in the chooser.
	lipgloss.SetHasDarkBackground(DarkBackground(os.Getenv("COLORFGBG")))
}

// DarkBackground interprets COLORFGBG ("fg;bg" or "fg;default;bg"). Colors
// 0-6 and 8 are dark. An unset or unparsable value is treated as dark.
func DarkBackground(colorfgbg string) bool {
	parts := strings.Split(colorfgbg, ";")
	bg, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return true
	}
	return bg <= 6 || bg == 8
}

// ABOUTME: E2E tests for interactive version picking through the Bubble Tea chooser
// ABOUTME: Drives arrow keys, enter, and Ctrl+C through the real binary PTY

package e2e

import (
	"testing"
	"time"
)

const (
	keyDown  = "\x1b[B"
	keyEnter = "\r"
)

func TestPick_ArrowAndEnter(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	s := startSpek(t, "pick", "test")
	defer s.close()

	s.expectStringTimeout(t, "Please select a gem:", 5*time.Second)
	s.expectStringTimeout(t, "test 1.0.0", 5*time.Second)

	s.send(t, keyDown)
	time.Sleep(100 * time.Millisecond)
	s.send(t, keyEnter)

	s.expectStringTimeout(t, "test-1.0.0.gem", 5*time.Second)
	if code := s.waitExit(t, 5*time.Second); code != 0 {
		t.Errorf("exit code = %d; want 0", code)
	}
}

func TestPick_FilterThenEnter(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	s := startSpek(t, "pick", "test")
	defer s.close()

	s.expectStringTimeout(t, "Please select a gem:", 5*time.Second)
	s.send(t, "0.1")
	time.Sleep(100 * time.Millisecond)
	s.send(t, keyEnter)

	s.expectStringTimeout(t, "test-0.1.0.gem", 5*time.Second)
	s.waitExit(t, 5*time.Second)
}

func TestPick_CtrlC_Cancels(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	s := startSpek(t, "pick", "test")
	defer s.close()

	s.expectStringTimeout(t, "Please select a gem:", 5*time.Second)
	s.sendCtrl(t, 'c')

	s.expectStringTimeout(t, "gem selection canceled", 5*time.Second)
	if code := s.waitExit(t, 5*time.Second); code != 1 {
		t.Errorf("exit code = %d; want 1", code)
	}
}

// ABOUTME: Error kinds surfaced by the picker and versioner
// ABOUTME: NotFoundError and SelectionError are typed; ErrNoVersionLine is a sentinel

package spek

import (
	"errors"
	"fmt"
)

// ErrNoVersionLine means a specification file has no version assignment to rewrite.
var ErrNoVersionLine = errors.New("no version assignment found")

// NotFoundError reports a name with no installed specifications.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Unknown or uninstalled gem: %s.", e.Name)
}

// SelectionError reports interactive input that does not name a candidate.
type SelectionError struct {
	Input string
	Count int
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("invalid gem selection %q: expected a number from 1 to %d", e.Input, e.Count)
}

// ABOUTME: Fuzzy "did you mean" suggestions for gem names that are not installed
// ABOUTME: Ranks installed names with sahilm/fuzzy and keeps the best few

package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// DefaultLimit caps the number of suggestions.
const DefaultLimit = 3

// Namer lists installed gem names.
type Namer interface {
	Names(ctx context.Context) ([]string, error)
}

// Find returns up to limit installed names resembling name, best first.
// The name itself is never suggested.
func Find(name string, names []string, limit int) []string {
	if name == "" || limit <= 0 {
		return nil
	}

	var out []string
	for _, m := range fuzzy.Find(name, names) {
		if m.Str == name {
			continue
		}
		out = append(out, m.Str)
		if len(out) == limit {
			break
		}
	}
	return out
}

// ForName loads installed names from namer and returns suggestions for name.
func ForName(ctx context.Context, namer Namer, name string) ([]string, error) {
	names, err := namer.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing installed gems: %w", err)
	}
	return Find(name, names, DefaultLimit), nil
}

// Hint formats suggestions as a one-line hint, or "" when there are none.
func Hint(suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}
	return "Did you mean: " + strings.Join(suggestions, ", ") + "?"
}

// ABOUTME: Semantic version value type: parse, compare, format, bump
// ABOUTME: Accepts "1", "1.2", "1.2.3" with optional "v" prefix; CompareRaw orders any RubyGems version

package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalid is returned when a string cannot be parsed as a Version.
var ErrInvalid = errors.New("invalid version")

// Version is an immutable major.minor.patch triple.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Level names the component incremented by Bump.
type Level string

const (
	LevelMajor Level = "major"
	LevelMinor Level = "minor"
	LevelPatch Level = "patch"
)

// Parse converts s into a Version. Missing minor/patch components are zero.
// An empty string parses as 0.0.0.
func Parse(s string) (Version, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "v")
	if raw == "" {
		return Version{}, nil
	}

	parts := strings.Split(raw, ".")
	if len(parts) > 3 {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParse is like Parse but panics on error. Intended for literals.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String formats the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or +1 depending on whether v sorts before, equal to,
// or after other.
func (v Version) Compare(other Version) int {
	for _, d := range [...]int{v.Major - other.Major, v.Minor - other.Minor, v.Patch - other.Patch} {
		switch {
		case d < 0:
			return -1
		case d > 0:
			return 1
		}
	}
	return 0
}

// Bump returns the next version at the given level, resetting lower components.
func (v Version) Bump(level Level) (Version, error) {
	switch level {
	case LevelMajor:
		return Version{Major: v.Major + 1}, nil
	case LevelMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}, nil
	case LevelPatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}, nil
	default:
		return v, fmt.Errorf("unknown bump level %q: expected major, minor, or patch", level)
	}
}

// CompareRaw orders two version strings the way RubyGems does, so strings
// Parse rejects (four components, prereleases like "1.0.0.pre") still sort.
// Each string splits into numeric and alphabetic segments; missing trailing
// segments count as 0, and an alphabetic segment sorts before any number.
func CompareRaw(a, b string) int {
	sa, sb := segments(a), segments(b)
	for i := range max(len(sa), len(sb)) {
		x, y := segmentAt(sa, i), segmentAt(sb, i)
		if c := compareSegment(x, y); c != 0 {
			return c
		}
	}
	return 0
}

func segments(s string) []string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	var out []string
	start := -1
	digit := false
	for i, r := range s {
		isDigit := r >= '0' && r <= '9'
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		switch {
		case !isDigit && !isAlpha:
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
		case start < 0:
			start, digit = i, isDigit
		case isDigit != digit:
			out = append(out, s[start:i])
			start, digit = i, isDigit
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

func segmentAt(segs []string, i int) string {
	if i < len(segs) {
		return segs[i]
	}
	return "0"
}

func compareSegment(x, y string) int {
	nx, errX := strconv.Atoi(x)
	ny, errY := strconv.Atoi(y)
	switch {
	case errX == nil && errY == nil:
		return cmpInt(nx, ny)
	case errX == nil:
		return 1
	case errY == nil:
		return -1
	default:
		return strings.Compare(x, y)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

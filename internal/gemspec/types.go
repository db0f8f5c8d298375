// ABOUTME: Specification record produced by the store: gem metadata with store defaults
// ABOUTME: Also models dependencies, requirements, and the ParseError returned by parsers

package gemspec

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Store defaults mirroring RubyGems.
const (
	DefaultHost        = "https://rubygems.org"
	DefaultBindir      = "bin"
	DefaultPlatform    = "ruby"
	DefaultRequirement = ">= 0"
)

// DependencyType distinguishes runtime from development dependencies.
type DependencyType string

const (
	Runtime     DependencyType = "runtime"
	Development DependencyType = "development"
)

// Constraint is a single operator/version pair such as "~> 1.0".
type Constraint struct {
	Op      string
	Version string
}

func (c Constraint) String() string {
	return c.Op + " " + c.Version
}

// Requirement is a conjunction of constraints. The empty requirement means ">= 0".
type Requirement []Constraint

// String joins the constraints with ", ", or returns DefaultRequirement when empty.
func (r Requirement) String() string {
	if len(r) == 0 {
		return DefaultRequirement
	}
	parts := make([]string, len(r))
	for i, c := range r {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// ParseRequirement converts strings like "~> 1.0" or "3.0" into a Requirement.
// A bare version implies "=".
func ParseRequirement(raw ...string) Requirement {
	var req Requirement
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		op, ver := "=", r
		for _, candidate := range []string{"~>", ">=", "<=", "!=", ">", "<", "="} {
			if rest, ok := strings.CutPrefix(r, candidate); ok {
				op, ver = candidate, strings.TrimSpace(rest)
				break
			}
		}
		req = append(req, Constraint{Op: op, Version: ver})
	}
	return req
}

// Dependency is a named gem requirement.
type Dependency struct {
	Name        string
	Requirement Requirement
	Type        DependencyType
}

func (d Dependency) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Requirement)
}

// Specification is the raw record parsed from a gemspec. Once returned by the
// store it is treated as read-only.
type Specification struct {
	Name                string
	Version             string
	Authors             []string
	Emails              []string
	Homepage            string
	Summary             string
	Description         string
	Licenses            []string
	Metadata            map[string]string
	Bindir              string
	Executables         []string
	ExtraRdocFiles      []string
	Files               []string
	RequirePaths        []string
	Dependencies        []Dependency
	CertChain           []string
	SigningKey          string
	Platform            string
	RequiredRubyVersion Requirement

	// LoadedFrom is the file the record was parsed from, if any.
	LoadedFrom string
	// BaseDir is the gem installation directory owning the record.
	BaseDir string
}

// New returns an empty Specification carrying the store defaults.
func New() *Specification {
	return &Specification{
		Metadata:     map[string]string{},
		Bindir:       DefaultBindir,
		RequirePaths: []string{"lib"},
		Platform:     DefaultPlatform,
		Executables:  []string{},
		Files:        []string{},
	}
}

// License returns the first declared license, or "" when none.
func (s *Specification) License() string {
	if len(s.Licenses) == 0 {
		return ""
	}
	return s.Licenses[0]
}

// RuntimeDependencies filters Dependencies down to runtime ones.
func (s *Specification) RuntimeDependencies() []Dependency {
	deps := []Dependency{}
	for _, d := range s.Dependencies {
		if d.Type == Runtime {
			deps = append(deps, d)
		}
	}
	return deps
}

// FullName is "name-version", with a platform suffix for non-ruby platforms.
func (s *Specification) FullName() string {
	name := s.Name + "-" + s.Version
	if s.Platform != "" && s.Platform != DefaultPlatform {
		name += "-" + s.Platform
	}
	return name
}

// FullGemPath is the directory an installed copy of the gem would live in.
func (s *Specification) FullGemPath() string {
	return filepath.Join(s.BaseDir, "gems", s.FullName())
}

// ParseError reports a manifest that could not be parsed.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parsing %s:%d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("parsing %s: %s", e.Path, e.Msg)
}

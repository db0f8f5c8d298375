// ABOUTME: Specification store: loads manifests by path and enumerates installed gems by name
// ABOUTME: Installed specs live in <gem dir>/specifications; lookups parse candidates in parallel

package gemspec

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/mauromedda/spek/internal/log"
	"github.com/mauromedda/spek/pkg/version"
)

const (
	specDirName = "specifications"
	specExt     = ".gemspec"
	maxParallel = 8
)

var (
	namePattern     = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	fileNamePattern = regexp.MustCompile(`^(.+?)-\d[^-]*(?:-.+)?\.gemspec$`)
)

// Store parses specification files and searches gem directories.
type Store struct {
	paths []string
	home  string
}

// Option configures a Store.
type Option func(*Store)

// WithPaths sets the gem directories searched by Find, in priority order.
func WithPaths(paths ...string) Option {
	return func(s *Store) { s.paths = paths }
}

// WithHome sets the gem directory assigned to specifications loaded from
// outside any gem directory.
func WithHome(dir string) Option {
	return func(s *Store) { s.home = dir }
}

// NewStore creates a Store.
func NewStore(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load parses the specification at path. YAML files use the YAML reader,
// everything else the gemspec DSL reader.
func (s *Store) Load(path string) (*Specification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading specification: %w", err)
	}

	var spec *Specification
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		spec, err = ParseYAML(path, data)
	default:
		spec, err = ParseRuby(path, data)
	}
	if err != nil {
		return nil, err
	}

	spec.BaseDir = s.baseDirFor(path)
	return spec, nil
}

func (s *Store) baseDirFor(path string) string {
	dir := filepath.Dir(path)
	if filepath.Base(dir) == specDirName {
		return filepath.Dir(dir)
	}
	return s.home
}

// Find returns every installed specification named exactly name, ordered by
// gem directory priority and then ascending version. Unparseable candidates
// are skipped with a warning. An unknown name yields an empty slice.
func (s *Store) Find(ctx context.Context, name string) ([]*Specification, error) {
	if !namePattern.MatchString(name) {
		return []*Specification{}, nil
	}

	type candidate struct {
		file string
		rank int
	}
	var candidates []candidate
	for rank, dir := range s.paths {
		specDir := filepath.Join(dir, specDirName)
		found, err := doublestar.Glob(os.DirFS(specDir), name+"-*"+specExt)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", specDir, err)
		}
		for _, f := range found {
			candidates = append(candidates, candidate{file: filepath.Join(specDir, f), rank: rank})
		}
	}

	results := make([]*Specification, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, c := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			spec, err := s.Load(c.file)
			if err != nil {
				log.Warn("skipping %s: %v", c.file, err)
				return nil
			}
			if spec.Name == name {
				results[i] = spec
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	type ranked struct {
		spec *Specification
		rank int
	}
	var found []ranked
	for i, spec := range results {
		if spec != nil {
			found = append(found, ranked{spec: spec, rank: candidates[i].rank})
		}
	}
	slices.SortStableFunc(found, func(a, b ranked) int {
		if c := cmp.Compare(a.rank, b.rank); c != 0 {
			return c
		}
		return version.CompareRaw(a.spec.Version, b.spec.Version)
	})

	specs := make([]*Specification, len(found))
	for i, r := range found {
		specs[i] = r.spec
	}
	return specs, nil
}

// Names lists the distinct names of installed gems, sorted. Names are derived
// from file names, so nothing is parsed.
func (s *Store) Names(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	for _, dir := range s.paths {
		specDir := filepath.Join(dir, specDirName)
		found, err := doublestar.Glob(os.DirFS(specDir), "*"+specExt)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", specDir, err)
		}
		for _, f := range found {
			if m := fileNamePattern.FindStringSubmatch(f); m != nil {
				seen[m[1]] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// ABOUTME: Loader parses a specification file through the store and wraps it in a Presenter
// ABOUTME: Store failures pass through unchanged; the loader adds no error kinds

package spek

import "github.com/mauromedda/spek/internal/gemspec"

// SpecLoader is the path-based half of the specification store.
type SpecLoader interface {
	Load(path string) (*gemspec.Specification, error)
}

// Loader turns specification files into Presenters.
type Loader struct {
	store SpecLoader
}

// NewLoader creates a Loader backed by store.
func NewLoader(store SpecLoader) *Loader {
	return &Loader{store: store}
}

// Load parses the file at path. Each call produces a fresh record.
func (l *Loader) Load(path string) (*Presenter, error) {
	record, err := l.store.Load(path)
	if err != nil {
		return nil, err
	}
	return NewPresenter(record), nil
}

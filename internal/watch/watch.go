// ABOUTME: Reloads a specification through the Loader whenever its file changes on disk
// ABOUTME: Watches the parent directory with fsnotify so editor rename-and-replace saves are seen

package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/mauromedda/spek/internal/log"
	"github.com/mauromedda/spek/internal/spek"
)

// DefaultDebounce is the quiet window before a reload.
const DefaultDebounce = 150 * time.Millisecond

// Editor swap and backup files that never trigger a reload.
var defaultIgnore = []string{"**/.*.swp", "**/*~", "**/.*.tmp", "**/#*#", "**/.git"}

// Loader is the part of spek.Loader the watcher needs.
type Loader interface {
	Load(path string) (*spek.Presenter, error)
}

// Update is one reload result. Exactly one of Presenter and Err is set.
type Update struct {
	Presenter *spek.Presenter
	Err       error
}

// Watcher emits an Update each time the watched file settles after a change.
type Watcher struct {
	path     string
	loader   Loader
	debounce time.Duration
	ignore   []string
	triggers []string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithIgnore adds doublestar patterns for paths that never trigger a reload.
func WithIgnore(patterns ...string) Option {
	return func(w *Watcher) { w.ignore = append(w.ignore, patterns...) }
}

// WithTriggers adds doublestar patterns, relative to the specification's
// directory, for other files whose changes also cause a reload, such as
// "lib/**/version.rb".
func WithTriggers(patterns ...string) Option {
	return func(w *Watcher) { w.triggers = append(w.triggers, patterns...) }
}

// New creates a Watcher for the specification at path.
func New(path string, loader Loader, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	w := &Watcher{
		path:     abs,
		loader:   loader,
		debounce: DefaultDebounce,
		ignore:   append([]string(nil), defaultIgnore...),
	}
	for _, opt := range opts {
		opt(w)
	}
	for _, p := range slices.Concat(w.ignore, w.triggers) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}
	return w, nil
}

// Run loads the file once, then again after every change, sending each
// result on updates. It returns when ctx is done or the fsnotify watcher fails.
// updates is not closed.
func (w *Watcher) Run(ctx context.Context, updates chan<- Update) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir()); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir(), err)
	}
	for _, p := range w.triggers {
		base, _ := doublestar.SplitPattern(p)
		w.addTree(fsw, filepath.Join(w.dir(), filepath.FromSlash(base)))
	}

	reload := make(chan struct{}, 1)
	debouncer := NewDebouncer(w.debounce, func([]string) {
		select {
		case reload <- struct{}{}:
		default:
		}
	})
	defer debouncer.Stop()

	w.emit(ctx, updates)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && w.triggered(event.Name) {
				w.addTree(fsw, event.Name)
			}
			if w.relevant(event) {
				log.Debug("watch: %s %s", event.Op, event.Name)
				debouncer.Add(event.Name)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching %s: %w", w.path, err)

		case <-reload:
			w.emit(ctx, updates)
		}
	}
}

func (w *Watcher) emit(ctx context.Context, updates chan<- Update) {
	p, err := w.loader.Load(w.path)
	if err != nil {
		log.Warn("watch: reloading %s: %v", w.path, err)
	}
	select {
	case updates <- Update{Presenter: p, Err: err}:
	case <-ctx.Done():
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	if w.shouldIgnore(event.Name) {
		return false
	}
	return filepath.Clean(event.Name) == w.path || w.triggered(event.Name)
}

func (w *Watcher) dir() string {
	return filepath.Dir(w.path)
}

// triggered reports whether path matches a trigger pattern or lies in a
// directory that could hold matches.
func (w *Watcher) triggered(path string) bool {
	rel, err := filepath.Rel(w.dir(), path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.triggers {
		if match, _ := doublestar.Match(pattern, rel); match {
			return true
		}
		base, _ := doublestar.SplitPattern(pattern)
		if base == "." || rel == base || strings.HasPrefix(rel, base+"/") {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				return true
			}
		}
	}
	return false
}

// addTree watches root and every directory below it. fsnotify is not
// recursive.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			log.Debug("watch: cannot watch %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.dir(), path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.ignore {
		if match, _ := doublestar.Match(pattern, rel); match {
			return true
		}
	}
	return false
}

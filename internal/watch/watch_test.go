// ABOUTME: Tests for the reload-on-change watcher against a real temp directory
// ABOUTME: Uses the real store and loader; waits on the updates channel with timeouts

package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mauromedda/spek/internal/gemspec"
	"github.com/mauromedda/spek/internal/spek"
	"github.com/mauromedda/spek/pkg/version"
)

const gemspecTemplate = `Gem::Specification.new do |spec|
  spec.name = "test"
  spec.version = "%s"
end
`

func writeSpec(t *testing.T, path, ver string) {
	t.Helper()
	content := []byte(fmt.Sprintf(gemspecTemplate, ver))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
}

func next(t *testing.T, updates <-chan Update) Update {
	t.Helper()
	select {
	case u := <-updates:
		return u
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

func startWatcher(t *testing.T, path string, opts ...Option) <-chan Update {
	t.Helper()
	opts = append([]Option{WithDebounce(20 * time.Millisecond)}, opts...)
	w, err := New(path, spek.NewLoader(gemspec.NewStore()), opts...)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan Update, 4)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, updates) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	})
	return updates
}

func TestWatcher_InitialAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.gemspec")
	writeSpec(t, path, "0.0.0")

	updates := startWatcher(t, path)

	u := next(t, updates)
	if u.Err != nil || u.Presenter.Version().String() != "0.0.0" {
		t.Fatalf("initial update = %+v", u)
	}

	writeSpec(t, path, "1.2.3")
	u = next(t, updates)
	if u.Err != nil {
		t.Fatalf("reload error: %v", u.Err)
	}
	if got := u.Presenter.Version().String(); got != "1.2.3" {
		t.Errorf("reloaded version = %q; want 1.2.3", got)
	}
}

func TestWatcher_VersionerRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.gemspec")
	writeSpec(t, path, "0.0.0")

	updates := startWatcher(t, path)
	next(t, updates)

	if _, err := spek.NewVersioner(spek.NewLoader(gemspec.NewStore())).Bump(version.LevelMinor, path); err != nil {
		t.Fatal(err)
	}

	u := next(t, updates)
	if u.Err != nil || u.Presenter.Version().String() != "0.1.0" {
		t.Errorf("update after rename-and-replace = %+v", u)
	}
}

func TestWatcher_ParseErrorReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.gemspec")
	writeSpec(t, path, "0.0.0")

	updates := startWatcher(t, path)
	next(t, updates)

	if err := os.WriteFile(path, []byte("Gem::Specification.new do |spec|\n  spec.name = \"test\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	u := next(t, updates)
	if u.Err == nil || u.Presenter != nil {
		t.Errorf("update = %+v; want error only", u)
	}
}

func TestWatcher_Triggers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.gemspec")
	writeSpec(t, path, "0.0.0")
	lib := filepath.Join(dir, "lib", "test")
	if err := os.MkdirAll(lib, 0o755); err != nil {
		t.Fatal(err)
	}

	updates := startWatcher(t, path, WithTriggers("lib/**/version.rb"))
	next(t, updates)

	if err := os.WriteFile(filepath.Join(lib, "version.rb"), []byte("VERSION = \"1\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if u := next(t, updates); u.Err != nil {
		t.Errorf("trigger reload error: %v", u.Err)
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	t.Parallel()
	if _, err := New("test.gemspec", nil, WithIgnore("[")); err == nil {
		t.Error("expected error for invalid ignore pattern")
	}
}

func TestShouldIgnore(t *testing.T) {
	t.Parallel()
	w, err := New("/work/test.gemspec", nil)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		path string
		want bool
	}{
		{"/work/.test.gemspec.123.tmp", true},
		{"/work/.test.gemspec.swp", true},
		{"/work/test.gemspec~", true},
		{"/work/.git", true},
		{"/work/test.gemspec", false},
		{"/work/lib/test.rb", false},
	}
	for _, tt := range tests {
		if got := w.shouldIgnore(tt.path); got != tt.want {
			t.Errorf("shouldIgnore(%q) = %v; want %v", tt.path, got, tt.want)
		}
	}
}

// ABOUTME: Tests for Loader against the real store and a failing fake
// ABOUTME: Store errors must reach the caller unchanged

package spek

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/mauromedda/spek/internal/gemspec"
)

const fixture = "testdata/test.gemspec"

type failingStore struct{ err error }

func (s failingStore) Load(string) (*gemspec.Specification, error) { return nil, s.err }

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	p, err := NewLoader(gemspec.NewStore()).Load(fixture)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := p.NamedVersion(); got != "test 0.0.0" {
		t.Errorf("NamedVersion() = %q; want test 0.0.0", got)
	}
	if got := p.Banner(); got != "Undefined 0.0.0: A test summary." {
		t.Errorf("Banner() = %q", got)
	}
	if got := p.RequiredRubyVersion().String(); got != ">= 3.3" {
		t.Errorf("RequiredRubyVersion() = %q; want >= 3.3", got)
	}
}

func TestLoader_FreshRecords(t *testing.T) {
	t.Parallel()

	loader := NewLoader(gemspec.NewStore())
	a, err := loader.Load(fixture)
	if err != nil {
		t.Fatal(err)
	}
	b, err := loader.Load(fixture)
	if err != nil {
		t.Fatal(err)
	}
	if a.record == b.record {
		t.Error("Load returned a shared record")
	}
}

func TestLoader_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewLoader(gemspec.NewStore()).Load(filepath.Join(t.TempDir(), "bogus.gemspec"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v; want fs.ErrNotExist", err)
	}
}

func TestLoader_ParseError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.gemspec")
	if err := os.WriteFile(path, []byte("Gem::Specification.new do |spec|\n  spec.name = \"test\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewLoader(gemspec.NewStore()).Load(path)
	var pe *gemspec.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("error = %v; want *gemspec.ParseError", err)
	}
}

func TestLoader_PassesErrorsThrough(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := NewLoader(failingStore{err: boom}).Load("any")
	if err != boom {
		t.Errorf("error = %v; want the store's error unchanged", err)
	}
}

// ABOUTME: Tests for the specification store: path loading and installed-gem lookup
// ABOUTME: Builds throwaway gem directories with specifications/ under t.TempDir()

package gemspec

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeSpec(t *testing.T, gemDir, name, ver string) string {
	t.Helper()
	dir := filepath.Join(gemDir, "specifications")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.gemspec", name, ver))
	src := fmt.Sprintf("Gem::Specification.new do |s|\n  s.name = %q\n  s.version = %q\nend\n", name, ver)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStore_Load(t *testing.T) {
	t.Parallel()

	store := NewStore(WithHome("/home/gems"))

	spec, err := store.Load(filepath.Join("testdata", "test.gemspec"))
	if err != nil {
		t.Fatalf("Load gemspec: %v", err)
	}
	if spec.Name != "test" || spec.BaseDir != "/home/gems" {
		t.Errorf("name/basedir = %q/%q", spec.Name, spec.BaseDir)
	}

	spec, err = store.Load(filepath.Join("testdata", "test.yaml"))
	if err != nil {
		t.Fatalf("Load yaml: %v", err)
	}
	if spec.Version != "1.2.3" {
		t.Errorf("yaml Version = %q; want 1.2.3", spec.Version)
	}
}

func TestStore_LoadInstalledBaseDir(t *testing.T) {
	t.Parallel()

	gemDir := t.TempDir()
	path := writeSpec(t, gemDir, "test", "1.0.0")

	spec, err := NewStore(WithHome("/elsewhere")).Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if spec.BaseDir != gemDir {
		t.Errorf("BaseDir = %q; want %q", spec.BaseDir, gemDir)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	t.Parallel()

	_, err := NewStore().Load(filepath.Join(t.TempDir(), "missing.gemspec"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v; want fs.ErrNotExist", err)
	}
}

func TestStore_Find(t *testing.T) {
	t.Parallel()

	first, second := t.TempDir(), t.TempDir()
	writeSpec(t, first, "test", "0.10.0")
	writeSpec(t, first, "test", "0.9.0")
	writeSpec(t, first, "test-helper", "1.0.0")
	writeSpec(t, second, "test", "0.1.0")
	writeSpec(t, second, "other", "2.0.0")

	store := NewStore(WithPaths(first, second))
	specs, err := store.Find(context.Background(), "test")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	var got []string
	for _, s := range specs {
		got = append(got, s.Version)
	}
	want := []string{"0.9.0", "0.10.0", "0.1.0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("versions = %v; want %v", got, want)
	}
	for _, s := range specs {
		if s.Name != "test" {
			t.Errorf("unexpected name %q", s.Name)
		}
	}
}

func TestStore_FindRubyGemsVersions(t *testing.T) {
	t.Parallel()

	gemDir := t.TempDir()
	dir := filepath.Join(gemDir, "specifications")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, ver := range []string{"7.0.8.1", "1.0.0.pre", "1.0.0"} {
		src := fmt.Sprintf("# -*- encoding: utf-8 -*-\n# stub: x %[1]s ruby lib\n\nGem::Specification.new do |s|\n  s.name = \"x\".freeze\n  s.version = \"%[1]s\".freeze\n  s.add_runtime_dependency(%%q<rack>.freeze, [\">= 2.2\"])\nend\n", ver)
		if err := os.WriteFile(filepath.Join(dir, "x-"+ver+".gemspec"), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	specs, err := NewStore(WithPaths(gemDir)).Find(context.Background(), "x")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	var got []string
	for _, s := range specs {
		got = append(got, s.Version)
	}
	want := []string{"1.0.0.pre", "1.0.0", "7.0.8.1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("versions = %v; want %v", got, want)
	}

	spec, err := NewStore().Load(filepath.Join(dir, "x-7.0.8.1.gemspec"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if spec.Version != "7.0.8.1" || len(spec.Dependencies) != 1 || spec.Dependencies[0].Name != "rack" {
		t.Errorf("Load = %+v", spec)
	}
}

func TestStore_FindNoMatches(t *testing.T) {
	t.Parallel()

	gemDir := t.TempDir()
	writeSpec(t, gemDir, "test", "1.0.0")
	store := NewStore(WithPaths(gemDir, filepath.Join(gemDir, "missing")))

	for _, name := range []string{"unknown", "bad/name", "*"} {
		specs, err := store.Find(context.Background(), name)
		if err != nil {
			t.Fatalf("Find(%q): %v", name, err)
		}
		if specs == nil || len(specs) != 0 {
			t.Errorf("Find(%q) = %v; want empty slice", name, specs)
		}
	}
}

func TestStore_FindSkipsBrokenSpecs(t *testing.T) {
	t.Parallel()

	gemDir := t.TempDir()
	writeSpec(t, gemDir, "test", "1.0.0")
	broken := filepath.Join(gemDir, "specifications", "test-2.0.0.gemspec")
	if err := os.WriteFile(broken, []byte("not a gemspec"), 0o644); err != nil {
		t.Fatal(err)
	}

	specs, err := NewStore(WithPaths(gemDir)).Find(context.Background(), "test")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(specs) != 1 || specs[0].Version != "1.0.0" {
		t.Errorf("Find = %v; want only 1.0.0", specs)
	}
}

func TestStore_FindCanceled(t *testing.T) {
	t.Parallel()

	gemDir := t.TempDir()
	writeSpec(t, gemDir, "test", "1.0.0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewStore(WithPaths(gemDir)).Find(ctx, "test"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v; want context.Canceled", err)
	}
}

func TestStore_Names(t *testing.T) {
	t.Parallel()

	first, second := t.TempDir(), t.TempDir()
	writeSpec(t, first, "test", "1.0.0")
	writeSpec(t, first, "test-helper", "1.0.0")
	writeSpec(t, second, "test", "2.0.0")
	writeSpec(t, second, "refinements", "12.0.0")

	names, err := NewStore(WithPaths(first, second)).Names(context.Background())
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	want := []string{"refinements", "test", "test-helper"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Names = %v; want %v", names, want)
	}
}

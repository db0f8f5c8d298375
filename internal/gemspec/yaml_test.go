// ABOUTME: Tests for the YAML specification reader
// ABOUTME: Uses a `gem specification --yaml` style fixture with Ruby object tags

package gemspec

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseYAML_Fixture(t *testing.T) {
	t.Parallel()

	path := filepath.Join("testdata", "test.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}

	spec, err := ParseYAML(path, data)
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}

	if spec.Name != "test" || spec.Version != "1.2.3" {
		t.Errorf("name/version = %q/%q; want test/1.2.3", spec.Name, spec.Version)
	}
	if spec.Bindir != "exe" || spec.Platform != "ruby" {
		t.Errorf("bindir/platform = %q/%q", spec.Bindir, spec.Platform)
	}
	if !reflect.DeepEqual(spec.Files, []string{"README.adoc", "lib/test.rb"}) {
		t.Errorf("Files = %v", spec.Files)
	}
	if spec.Metadata["label"] != "Test" {
		t.Errorf("Metadata = %v", spec.Metadata)
	}
	if spec.SigningKey != "" {
		t.Errorf("SigningKey = %q; want empty for null", spec.SigningKey)
	}
	if len(spec.CertChain) != 0 {
		t.Errorf("CertChain = %v; want empty", spec.CertChain)
	}
	if spec.RequiredRubyVersion.String() != ">= 0" {
		t.Errorf("RequiredRubyVersion = %q; want >= 0", spec.RequiredRubyVersion)
	}

	runtime := spec.RuntimeDependencies()
	if len(spec.Dependencies) != 2 || len(runtime) != 1 {
		t.Fatalf("Dependencies = %v", spec.Dependencies)
	}
	if runtime[0].String() != "refinements (~> 12.0)" {
		t.Errorf("runtime dependency = %q", runtime[0])
	}
}

func TestParseYAML_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{"not yaml", "name: [unclosed"},
		{"not a mapping", "- a\n- b\n"},
		{"nameless dependency", "name: x\ndependencies:\n- type: :runtime\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseYAML("spec.yaml", []byte(tt.src))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v; want *ParseError", err)
			}
		})
	}
}

func TestParseYAML_VersionKeptVerbatim(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"four segments", "name: rails\nversion: 7.0.8.1\n", "7.0.8.1"},
		{"prerelease object", "name: demo\nversion: !ruby/object:Gem::Version\n  version: 1.0.0.pre\n", "1.0.0.pre"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec, err := ParseYAML("spec.yaml", []byte(tt.src))
			if err != nil {
				t.Fatalf("ParseYAML: %v", err)
			}
			if spec.Version != tt.want {
				t.Errorf("Version = %q; want %q", spec.Version, tt.want)
			}
		})
	}
}

// ABOUTME: Versioner rewrites the version assignment in a gemspec and reloads it
// ABOUTME: The first `version = ...` line becomes `version = "<value>"`; writes go through tmp+rename

package spek

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/mauromedda/spek/internal/log"
	"github.com/mauromedda/spek/pkg/version"
)

// versionLine matches from the version token to the end of its line, so a
// receiver prefix such as "spec." is kept. The word boundary skips
// required_ruby_version.
var versionLine = regexp.MustCompile(`(?m)\bversion\s*=[^\r\n]*(?:\r?\n|$)`)

// Versioner updates a specification's declared version.
type Versioner struct {
	loader *Loader
}

// NewVersioner creates a Versioner that reloads through loader.
func NewVersioner(loader *Loader) *Versioner {
	return &Versioner{loader: loader}
}

// SetVersion replaces the version in the file at path and returns the
// reloaded specification. The caller must have exclusive access to the file;
// nothing locks it. When no version line exists the file is left untouched
// and ErrNoVersionLine is returned.
func (v *Versioner) SetVersion(ver version.Version, path string) (*Presenter, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	updated, err := rewriteVersion(content, ver)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := writeFile(path, updated); err != nil {
		return nil, err
	}
	log.Debug("versioner: set %s to %s", path, ver)

	return v.loader.Load(path)
}

// Bump increments one component of the current version and writes it back.
// A version outside major.minor.patch, such as "7.0.8.1", is not bumped.
func (v *Versioner) Bump(level version.Level, path string) (*Presenter, error) {
	current, err := v.loader.Load(path)
	if err != nil {
		return nil, err
	}
	base, err := version.Parse(current.record.Version)
	if err != nil {
		return nil, fmt.Errorf("bumping %s: %w", path, err)
	}
	next, err := base.Bump(level)
	if err != nil {
		return nil, err
	}
	return v.SetVersion(next, path)
}

func rewriteVersion(content []byte, ver version.Version) ([]byte, error) {
	loc := versionLine.FindIndex(content)
	if loc == nil {
		return nil, ErrNoVersionLine
	}

	eol := "\n"
	if bytes.HasSuffix(content[loc[0]:loc[1]], []byte("\r\n")) {
		eol = "\r\n"
	}
	replacement := fmt.Sprintf("version = %q%s", ver.String(), eol)
	out := make([]byte, 0, len(content)+len(replacement))
	out = append(out, content[:loc[0]]...)
	out = append(out, replacement...)
	out = append(out, content[loc[1]:]...)
	return out, nil
}

// writeFile replaces path atomically, keeping its permissions. A symlink is
// followed so the link survives and its target is rewritten.
func writeFile(link string, data []byte) error {
	path, err := filepath.EvalSymlinks(link)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", link, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming %s: %w", tmpPath, err)
	}
	committed = true
	return nil
}

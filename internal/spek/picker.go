// ABOUTME: Picker resolves a gem name to exactly one installed specification
// ABOUTME: One match resolves directly; several go through a Chooser; none is a NotFoundError

package spek

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mauromedda/spek/internal/gemspec"
	"github.com/mauromedda/spek/internal/log"
)

// Finder enumerates installed specifications by exact name.
type Finder interface {
	Find(ctx context.Context, name string) ([]*gemspec.Specification, error)
}

// Chooser picks one of several candidates and returns its zero-based index.
type Chooser interface {
	Choose(candidates []*Presenter) (int, error)
}

// Picker disambiguates installed specifications.
type Picker struct {
	finder  Finder
	chooser Chooser
}

// NewPicker creates a Picker. The chooser is only consulted when a name
// matches more than one specification.
func NewPicker(finder Finder, chooser Chooser) *Picker {
	return &Picker{finder: finder, chooser: chooser}
}

// Pick returns the single specification for name. It fails with a
// *NotFoundError when nothing is installed under that name and with a
// *SelectionError when the chooser's answer is out of range.
func (p *Picker) Pick(ctx context.Context, name string) (*gemspec.Specification, error) {
	specs, err := p.finder.Find(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("finding %s: %w", name, err)
	}

	switch {
	case len(specs) == 1:
		return specs[0], nil
	case len(specs) > 1:
		return p.choose(specs)
	default:
		return nil, &NotFoundError{Name: name}
	}
}

func (p *Picker) choose(specs []*gemspec.Specification) (*gemspec.Specification, error) {
	candidates := make([]*Presenter, len(specs))
	for i, s := range specs {
		candidates[i] = NewPresenter(s)
	}

	log.Debug("picker: %d candidates for %s", len(specs), candidates[0].Name())
	idx, err := p.chooser.Choose(candidates)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(specs) {
		return nil, &SelectionError{Input: strconv.Itoa(idx + 1), Count: len(specs)}
	}
	return specs[idx], nil
}

// PromptChooser lists candidates as "{rank}. {named version}" and reads a
// 1-based rank from its input. It reads only from the stream it was given.
type PromptChooser struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPromptChooser creates a PromptChooser over the given streams.
func NewPromptChooser(in io.Reader, out io.Writer) *PromptChooser {
	return &PromptChooser{in: bufio.NewReader(in), out: out}
}

// Choose blocks until one line is read.
func (c *PromptChooser) Choose(candidates []*Presenter) (int, error) {
	for i, candidate := range candidates {
		if _, err := fmt.Fprintf(c.out, "%d. %s\n", i+1, candidate.NamedVersion()); err != nil {
			return -1, fmt.Errorf("writing gem choices: %w", err)
		}
	}
	if _, err := fmt.Fprint(c.out, "\nPlease enter gem selection:\n"); err != nil {
		return -1, fmt.Errorf("writing gem prompt: %w", err)
	}

	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return -1, fmt.Errorf("reading gem selection: %w", err)
	}

	input := strings.TrimSpace(line)
	rank, err := strconv.Atoi(input)
	if err != nil || rank < 1 || rank > len(candidates) {
		return -1, &SelectionError{Input: input, Count: len(candidates)}
	}
	return rank - 1, nil
}

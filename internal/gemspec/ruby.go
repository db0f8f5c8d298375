// ABOUTME: Reader for the Ruby gemspec DSL subset used by Gem::Specification.new blocks
// ABOUTME: Evaluates literal assignments, metadata, dependencies, and Dir[] globs without Ruby

package gemspec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mauromedda/spek/internal/log"
)

var (
	headerPattern = regexp.MustCompile(`Gem::Specification\.new(?:\s*\(\s*\))?\s+do\s*\|\s*(\w+)\s*\|$`)
	blockPattern  = regexp.MustCompile(`\bdo(?:\s*\|[^|]*\|)?$`)
)

// errUnsupported marks Ruby the reader does not evaluate. Such statements are
// skipped with a warning rather than failing the whole manifest.
var errUnsupported = errors.New("unsupported expression")

type rubyReader struct {
	path string
	dir  string
	spec *Specification
	recv string
}

// ParseRuby reads gemspec DSL source. path locates the file for error
// messages and anchors Dir[] globs.
func ParseRuby(path string, src []byte) (*Specification, error) {
	stmts, err := splitStatements(string(src))
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}

	r := &rubyReader{path: path, dir: filepath.Dir(path), spec: New()}
	r.spec.LoadedFrom = path
	if err := r.run(stmts); err != nil {
		return nil, err
	}
	return r.spec, nil
}

func (r *rubyReader) fail(line int, msg string) error {
	return &ParseError{Path: r.path, Line: line, Msg: msg}
}

// run locates the specification block and applies each statement in it.
// Conditionals take their first branch; nested do/begin/case blocks are skipped.
func (r *rubyReader) run(stmts []statement) error {
	start := -1
	for i, st := range stmts {
		if m := headerPattern.FindStringSubmatch(st.text); m != nil {
			r.recv = m[1]
			start = i + 1
			break
		}
	}
	if start < 0 {
		return r.fail(0, "no Gem::Specification.new block")
	}

	var frames []bool
	active := func() bool { return len(frames) == 0 || frames[len(frames)-1] }

	for _, st := range stmts[start:] {
		first, _, _ := strings.Cut(st.text, " ")
		switch {
		case st.text == "end":
			if len(frames) == 0 {
				return nil
			}
			frames = frames[:len(frames)-1]
		case first == "if" || first == "unless":
			frames = append(frames, active())
		case first == "else" || first == "elsif":
			if len(frames) == 0 {
				return r.fail(st.line, "unexpected "+first)
			}
			frames[len(frames)-1] = false
		case first == "begin" || first == "case" || first == "while" || first == "until" || blockPattern.MatchString(st.text):
			log.Debug("gemspec: skipping block at %s:%d", r.path, st.line)
			frames = append(frames, false)
		case active():
			if err := r.apply(st); err != nil {
				return err
			}
		}
	}

	last := 0
	if len(stmts) > 0 {
		last = stmts[len(stmts)-1].line
	}
	return r.fail(last, "missing end for Gem::Specification block")
}

func (r *rubyReader) apply(st statement) error {
	toks, err := tokenize(st.text)
	if err != nil {
		return r.fail(st.line, err.Error())
	}
	toks = stripModifier(toks)

	if len(toks) < 3 || toks[0].kind != tokIdent || toks[0].text != r.recv ||
		toks[1].text != "." || toks[2].kind != tokIdent {
		log.Debug("gemspec: skipping %s:%d: %s", r.path, st.line, st.text)
		return nil
	}

	attr, rest := toks[2].text, toks[3:]
	switch {
	case strings.HasPrefix(attr, "add_") && strings.HasSuffix(attr, "dependency"):
		err = r.addDependency(attr, rest)
	case attr == "metadata" && len(rest) > 0 && rest[0].kind == tokOp && rest[0].text == "[":
		err = r.setMetadata(rest[1:])
	case len(rest) > 0 && rest[0].kind == tokOp && rest[0].text == "=":
		var val any
		if val, err = r.eval(rest[1:]); err == nil {
			err = r.assign(attr, val)
		}
	case len(rest) > 0 && rest[0].kind == tokOp && (rest[0].text == "<<" || rest[0].text == "+="):
		var val any
		if val, err = r.eval(rest[1:]); err == nil {
			err = r.appendTo(attr, val)
		}
	default:
		err = errUnsupported
	}

	if errors.Is(err, errUnsupported) {
		log.Warn("gemspec: ignoring %s:%d: %s", r.path, st.line, st.text)
		return nil
	}
	if err != nil {
		return r.fail(st.line, err.Error())
	}
	return nil
}

// stripModifier drops a trailing "if ..." or "unless ..." modifier.
func stripModifier(toks []token) []token {
	depth := 0
	for i, t := range toks {
		switch {
		case t.kind == tokOp && strings.Contains("([{", t.text):
			depth++
		case t.kind == tokOp && strings.Contains(")]}", t.text):
			depth--
		case i > 0 && depth == 0 && t.kind == tokIdent && (t.text == "if" || t.text == "unless"):
			return toks[:i]
		}
	}
	return toks
}

func (r *rubyReader) scalarField(attr string) *string {
	s := r.spec
	switch attr {
	case "name":
		return &s.Name
	case "homepage":
		return &s.Homepage
	case "summary":
		return &s.Summary
	case "description":
		return &s.Description
	case "bindir":
		return &s.Bindir
	case "signing_key":
		return &s.SigningKey
	case "platform":
		return &s.Platform
	}
	return nil
}

func (r *rubyReader) listField(attr string) *[]string {
	s := r.spec
	switch attr {
	case "author", "authors":
		return &s.Authors
	case "email", "emails":
		return &s.Emails
	case "licenses":
		return &s.Licenses
	case "files":
		return &s.Files
	case "executables":
		return &s.Executables
	case "extra_rdoc_files":
		return &s.ExtraRdocFiles
	case "require_paths":
		return &s.RequirePaths
	case "cert_chain":
		return &s.CertChain
	}
	return nil
}

func (r *rubyReader) assign(attr string, val any) error {
	if field := r.scalarField(attr); field != nil {
		str, err := toString(val)
		if err != nil {
			return err
		}
		*field = str
		return nil
	}
	if field := r.listField(attr); field != nil {
		list, err := toList(val)
		if err != nil {
			return err
		}
		*field = list
		return nil
	}

	switch attr {
	case "version":
		str, err := toString(val)
		if err != nil {
			return err
		}
		r.spec.Version = str
	case "license":
		str, err := toString(val)
		if err != nil {
			return err
		}
		r.spec.Licenses = nil
		if str != "" {
			r.spec.Licenses = []string{str}
		}
	case "required_ruby_version":
		list, err := toList(val)
		if err != nil {
			return err
		}
		r.spec.RequiredRubyVersion = ParseRequirement(list...)
	case "metadata":
		m, ok := val.(map[string]any)
		if !ok && val != nil {
			return errUnsupported
		}
		r.spec.Metadata = map[string]string{}
		for k, v := range m {
			str, err := toString(v)
			if err != nil {
				return err
			}
			r.spec.Metadata[k] = str
		}
	default:
		return errUnsupported
	}
	return nil
}

func (r *rubyReader) appendTo(attr string, val any) error {
	field := r.listField(attr)
	if field == nil {
		return errUnsupported
	}
	list, err := toList(val)
	if err != nil {
		return err
	}
	*field = append(*field, list...)
	return nil
}

// setMetadata handles `spec.metadata["key"] = value`; toks starts after "[".
func (r *rubyReader) setMetadata(toks []token) error {
	p := &exprParser{r: r, toks: toks}
	k, err := p.expr()
	if err != nil {
		return err
	}
	if !p.accept("]") || !p.accept("=") {
		return errUnsupported
	}
	v, err := p.expr()
	if err != nil {
		return err
	}
	if !p.done() {
		return errUnsupported
	}

	key, err := toString(k)
	if err != nil {
		return err
	}
	if v == nil {
		delete(r.spec.Metadata, key)
		return nil
	}
	str, err := toString(v)
	if err != nil {
		return err
	}
	r.spec.Metadata[key] = str
	return nil
}

func (r *rubyReader) addDependency(attr string, toks []token) error {
	typ := Runtime
	switch attr {
	case "add_dependency", "add_runtime_dependency":
	case "add_development_dependency":
		typ = Development
	default:
		return errUnsupported
	}

	if n := len(toks); n >= 2 && toks[0].text == "(" && toks[n-1].text == ")" {
		toks = toks[1 : n-1]
	}

	p := &exprParser{r: r, toks: toks}
	var args []string
	for !p.done() {
		v, err := p.expr()
		if err != nil {
			return err
		}
		list, err := toList(v)
		if err != nil {
			return err
		}
		args = append(args, list...)
		if !p.done() && !p.accept(",") {
			return errUnsupported
		}
	}
	if len(args) == 0 {
		return fmt.Errorf("%s requires a gem name", attr)
	}

	r.spec.Dependencies = append(r.spec.Dependencies, Dependency{
		Name:        args[0],
		Requirement: ParseRequirement(args[1:]...),
		Type:        typ,
	})
	return nil
}

func (r *rubyReader) eval(toks []token) (any, error) {
	p := &exprParser{r: r, toks: toks}
	v, err := p.expr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, errUnsupported
	}
	return v, nil
}

// glob expands Dir[] patterns relative to the gemspec directory.
func (r *rubyReader) glob(patterns []string) ([]string, error) {
	fsys := os.DirFS(r.dir)
	matches := []string{}
	for _, pattern := range patterns {
		found, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		matches = append(matches, found...)
	}
	return matches, nil
}

// exprParser evaluates literal Ruby expressions into string, bool, nil,
// []string, []any, or map[string]any values.
type exprParser struct {
	r    *rubyReader
	toks []token
	pos  int
}

func (p *exprParser) done() bool { return p.pos >= len(p.toks) }

func (p *exprParser) accept(op string) bool {
	if p.done() || p.toks[p.pos].kind != tokOp || p.toks[p.pos].text != op {
		return false
	}
	p.pos++
	return true
}

func (p *exprParser) ident() (string, bool) {
	if p.done() || p.toks[p.pos].kind != tokIdent {
		return "", false
	}
	p.pos++
	return p.toks[p.pos-1].text, true
}

func (p *exprParser) expr() (any, error) {
	v, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.accept(".") {
		name, ok := p.ident()
		if !ok || name != "freeze" {
			return nil, errUnsupported
		}
	}
	return v, nil
}

func (p *exprParser) primary() (any, error) {
	if p.done() {
		return nil, errors.New("missing value")
	}
	t := p.toks[p.pos]
	p.pos++

	switch t.kind {
	case tokString:
		if t.dynamic {
			return nil, errUnsupported
		}
		return t.text, nil
	case tokWords:
		return t.words, nil
	case tokSymbol, tokNumber:
		return t.text, nil
	case tokIdent:
		switch t.text {
		case "nil":
			return nil, nil
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "Dir":
			return p.dirGlob()
		case "Gem":
			return p.gemPath()
		}
	case tokOp:
		switch t.text {
		case "[":
			return p.list("]")
		case "{":
			return p.hash()
		case "(":
			v, err := p.expr()
			if err != nil {
				return nil, err
			}
			if !p.accept(")") {
				return nil, errUnsupported
			}
			return v, nil
		}
	}
	return nil, errUnsupported
}

func (p *exprParser) list(closer string) ([]any, error) {
	items := []any{}
	for {
		if p.accept(closer) {
			return items, nil
		}
		p.accept("*")
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		if p.accept(",") {
			continue
		}
		if p.accept(closer) {
			return items, nil
		}
		return nil, errUnsupported
	}
}

func (p *exprParser) hash() (map[string]any, error) {
	m := map[string]any{}
	for {
		if p.accept("}") {
			return m, nil
		}

		if p.done() {
			return nil, errUnsupported
		}

		var key string
		t := p.toks[p.pos]
		if (t.kind == tokIdent || t.kind == tokString) && p.pos+1 < len(p.toks) &&
			p.toks[p.pos+1].kind == tokOp && p.toks[p.pos+1].text == ":" {
			key = t.text
			p.pos += 2
		} else {
			k, err := p.expr()
			if err != nil {
				return nil, err
			}
			if key, err = toString(k); err != nil {
				return nil, err
			}
			if !p.accept("=>") {
				return nil, errUnsupported
			}
		}

		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		m[key] = v

		if p.accept(",") {
			continue
		}
		if p.accept("}") {
			return m, nil
		}
		return nil, errUnsupported
	}
}

// dirGlob handles Dir["a", "b"] and Dir.glob("a").
func (p *exprParser) dirGlob() ([]string, error) {
	var args []any
	var err error
	switch {
	case p.accept("["):
		args, err = p.list("]")
	case p.accept("."):
		if name, ok := p.ident(); !ok || name != "glob" || !p.accept("(") {
			return nil, errUnsupported
		}
		args, err = p.list(")")
	default:
		return nil, errUnsupported
	}
	if err != nil {
		return nil, err
	}

	patterns, err := toList(args)
	if err != nil {
		return nil, err
	}
	return p.r.glob(patterns)
}

// gemPath handles Gem.default_key_path and Gem.default_cert_path.
func (p *exprParser) gemPath() (string, error) {
	if !p.accept(".") {
		return "", errUnsupported
	}
	name, _ := p.ident()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	switch name {
	case "default_key_path":
		return filepath.Join(home, ".gem", "gem-private_key.pem"), nil
	case "default_cert_path":
		return filepath.Join(home, ".gem", "gem-public_cert.pem"), nil
	}
	return "", errUnsupported
}

func toString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		if x {
			return "true", nil
		}
		return "false", nil
	}
	return "", errUnsupported
}

func toList(v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return x, nil
	case []any:
		out := []string{}
		for _, item := range x {
			list, err := toList(item)
			if err != nil {
				return nil, err
			}
			out = append(out, list...)
		}
		return out, nil
	}
	s, err := toString(v)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}

// ABOUTME: Tokenizer and statement splitter for the gemspec Ruby DSL subset
// ABOUTME: Tracks strings, %w literals, comments, and bracket depth to find logical lines

package gemspec

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokWords
	tokSymbol
	tokNumber
	tokOp
)

type token struct {
	kind  tokenKind
	text  string
	words []string
	// dynamic marks a double-quoted string containing #{} interpolation.
	dynamic bool
}

// statement is one logical line of a gemspec.
type statement struct {
	text string
	line int
}

// percentClosers maps %-literal openers to their closers.
var percentClosers = map[byte]byte{'[': ']', '(': ')', '{': '}', '<': '>'}

// splitStatements breaks src into logical statements. A newline ends a
// statement only outside strings, at bracket depth zero, and when the line
// does not end with a continuation character.
func splitStatements(src string) ([]statement, error) {
	var (
		stmts     []statement
		buf       strings.Builder
		line      = 1
		startLine = 1
		depth     int
	)

	flush := func() {
		text := strings.TrimSpace(buf.String())
		if text != "" {
			stmts = append(stmts, statement{text: text, line: startLine})
		}
		buf.Reset()
		startLine = line
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '"' || c == '\'':
			end, err := skipQuoted(src, i, c)
			if err != nil {
				return nil, &ParseError{Line: line, Msg: err.Error()}
			}
			line += strings.Count(src[i:end+1], "\n")
			buf.WriteString(src[i : end+1])
			i = end
		case c == '%' && i+2 < len(src) && isPercentLiteral(src[i+1:]):
			end, err := skipPercent(src, i)
			if err != nil {
				return nil, &ParseError{Line: line, Msg: err.Error()}
			}
			line += strings.Count(src[i:end+1], "\n")
			buf.WriteString(src[i : end+1])
			i = end
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			i--
		case c == '(' || c == '[' || c == '{':
			depth++
			buf.WriteByte(c)
		case c == ')' || c == ']' || c == '}':
			if depth == 0 {
				return nil, &ParseError{Line: line, Msg: fmt.Sprintf("unexpected %q", c)}
			}
			depth--
			buf.WriteByte(c)
		case c == ';' && depth == 0:
			flush()
		case c == '\n':
			line++
			current := strings.TrimRight(buf.String(), " \t\r")
			switch {
			case depth > 0:
				buf.WriteByte(' ')
			case strings.HasSuffix(current, "\\"):
				buf.Reset()
				buf.WriteString(strings.TrimSuffix(current, "\\"))
				buf.WriteByte(' ')
			case strings.HasSuffix(current, ",") || strings.HasSuffix(current, "=") ||
				strings.HasSuffix(current, "<<") || strings.HasSuffix(current, "."):
				buf.WriteByte(' ')
			default:
				flush()
			}
		default:
			buf.WriteByte(c)
		}
	}

	if depth != 0 {
		return nil, &ParseError{Line: line, Msg: "unbalanced brackets at end of file"}
	}
	flush()
	return stmts, nil
}

func isPercentLiteral(rest string) bool {
	if _, ok := percentClosers[rest[0]]; ok {
		return true
	}
	if strings.IndexByte("wWiIqQ", rest[0]) < 0 {
		return false
	}
	_, ok := percentClosers[rest[1]]
	return ok
}

// skipQuoted returns the index of the closing quote matching src[start].
func skipQuoted(src string, start int, quote byte) (int, error) {
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i, nil
		}
	}
	return 0, fmt.Errorf("unterminated string")
}

// skipPercent returns the index of the closer of the %-literal at src[start].
func skipPercent(src string, start int) (int, error) {
	i := start + 1
	if _, ok := percentClosers[src[i]]; !ok {
		i++
	}
	open := src[i]
	closer := percentClosers[open]
	nest := 0
	for i++; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case open:
			nest++
		case closer:
			if nest == 0 {
				return i, nil
			}
			nest--
		}
	}
	return 0, fmt.Errorf("unterminated %%-literal")
}

// tokenize splits a single statement into tokens.
func tokenize(text string) ([]token, error) {
	var toks []token
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '"' || c == '\'':
			end, err := skipQuoted(text, i, c)
			if err != nil {
				return nil, err
			}
			body := text[i+1 : end]
			toks = append(toks, token{
				kind:    tokString,
				text:    unquote(body, c),
				dynamic: c == '"' && strings.Contains(body, "#{"),
			})
			i = end + 1
		case c == '%' && i+2 < len(text) && isPercentLiteral(text[i+1:]):
			end, err := skipPercent(text, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, percentToken(text[i:end+1]))
			i = end + 1
		case c == ':' && i+1 < len(text) && isIdentStart(text[i+1]):
			j := scanIdent(text, i+1)
			toks = append(toks, token{kind: tokSymbol, text: text[i+1 : j]})
			i = j
		case isIdentStart(c):
			j := scanIdent(text, i)
			toks = append(toks, token{kind: tokIdent, text: text[i:j]})
			i = j
		case c >= '0' && c <= '9':
			j := i
			for j < len(text) && (text[j] >= '0' && text[j] <= '9' || text[j] == '.' || text[j] == '_') {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: text[i:j]})
			i = j
		default:
			op := string(c)
			for _, two := range []string{"::", "=>", "<<", "+=", "==", "||", "&&"} {
				if strings.HasPrefix(text[i:], two) {
					op = two
					break
				}
			}
			toks = append(toks, token{kind: tokOp, text: op})
			i += len(op)
		}
	}
	return toks, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func scanIdent(text string, i int) int {
	for i < len(text) {
		c := text[i]
		if isIdentStart(c) || c >= '0' && c <= '9' {
			i++
			continue
		}
		if c == '?' || c == '!' {
			i++
		}
		break
	}
	return i
}

// percentToken converts %w[a b], %i[a b], %q(x) and %(x) into tokens.
func percentToken(lit string) token {
	kind := byte('Q')
	body := lit[2 : len(lit)-1]
	if _, ok := percentClosers[lit[1]]; !ok {
		kind = lit[1]
		body = lit[3 : len(lit)-1]
	}
	switch kind {
	case 'w', 'W', 'i', 'I':
		words := strings.Fields(body)
		for i, w := range words {
			words[i] = norm.NFC.String(w)
		}
		return token{kind: tokWords, words: words}
	default:
		return token{kind: tokString, text: norm.NFC.String(body)}
	}
}

// unquote resolves the escapes Ruby recognizes in the given quote style.
func unquote(body string, quote byte) string {
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		next := body[i]
		if quote == '\'' {
			if next != '\'' && next != '\\' {
				b.WriteByte('\\')
			}
			b.WriteByte(next)
			continue
		}
		switch next {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteByte(next)
		}
	}
	return norm.NFC.String(b.String())
}

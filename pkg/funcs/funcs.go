// Package funcs removes named functions from C files: whole definitions
// (with their leading comment block) from source files and declaration
// lines from headers.
package funcs

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/l3aro/cprep/pkg/syntax"
	"github.com/l3aro/cprep/pkg/textbuf"
)

// Options controls a removal pass.
type Options struct {
	// Header selects declaration-line removal instead of definitions.
	Header bool
	// All removes every definition of a name instead of the first only.
	All bool
	// Lenient skips names whose body never closes instead of failing.
	Lenient bool
	Engine  syntax.Engine
}

// IsHeader reports whether path names a header file.
func IsHeader(path string) bool {
	return filepath.Ext(path) == ".h"
}

// Removal is one removed span.
type Removal struct {
	Name string
	Span textbuf.Span
}

// Result holds the rewritten buffer and what happened to each name.
type Result struct {
	Lines    textbuf.Lines
	Removals []Removal
	Missing  []string
	// Skipped holds malformed-input errors tolerated in lenient mode.
	Skipped []error
}

// Changed reports whether any line was removed.
func (r *Result) Changed() bool {
	return len(r.Removals) > 0
}

// Remove deletes the named functions from lines. Spans are located on the
// original buffer and removed in one pass.
func Remove(lines textbuf.Lines, names []string, opts Options) (*Result, error) {
	var tree *syntax.Tree
	if opts.Engine == syntax.EngineAST {
		t, err := syntax.Parse([]byte(lines.String()))
		if err != nil {
			return nil, err
		}
		defer t.Close()
		tree = t
	}

	res := &Result{}
	var spans []textbuf.Span
	for _, name := range names {
		found, err := locate(lines, tree, name, opts)
		if err != nil {
			if opts.Lenient && errors.Is(err, textbuf.ErrMalformed) {
				res.Skipped = append(res.Skipped, err)
				continue
			}
			return nil, err
		}
		if len(found) == 0 {
			res.Missing = append(res.Missing, name)
			continue
		}
		for _, s := range found {
			res.Removals = append(res.Removals, Removal{Name: name, Span: s})
		}
		spans = append(spans, found...)
	}

	res.Lines = textbuf.Remove(lines, spans)
	return res, nil
}

func locate(lines textbuf.Lines, tree *syntax.Tree, name string, opts Options) ([]textbuf.Span, error) {
	if opts.Header {
		if tree != nil {
			return tree.FunctionDeclarations(name), nil
		}
		return declarationLines(lines, name), nil
	}

	var spans []textbuf.Span
	if tree != nil {
		spans = tree.FunctionDefinitions(name)
		if !opts.All && len(spans) > 1 {
			spans = spans[:1]
		}
	} else {
		var err error
		spans, err = definitions(lines, name, opts.All)
		if err != nil {
			return nil, err
		}
	}
	for i := range spans {
		spans[i].Start = textbuf.ExtendBackward(lines, spans[i].Start, isCommentMarker)
	}
	return spans, nil
}

// declarationLines matches header lines that start with name.
func declarationLines(lines textbuf.Lines, name string) []textbuf.Span {
	var spans []textbuf.Span
	for i := range lines {
		rest, ok := strings.CutPrefix(lines.Trimmed(i), name)
		if !ok {
			continue
		}
		if rest != "" && isIdentByte(rest[0]) {
			continue
		}
		spans = append(spans, textbuf.Span{Start: i, End: i})
	}
	return spans
}

// definitions finds function bodies whose signature names name at file
// scope. Prototypes, calls nested in other bodies and preprocessor lines,
// including backslash continuations, are not definitions.
func definitions(lines textbuf.Lines, name string, all bool) ([]textbuf.Span, error) {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b\s*\(`)

	var spans []textbuf.Span
	depth := 0
	continued := false
	for i := 0; i < len(lines); i++ {
		trimmed := lines.Trimmed(i)
		if continued || strings.HasPrefix(trimmed, "#") {
			continued = strings.HasSuffix(trimmed, "\\")
			continue
		}

		if depth == 0 {
			if loc := re.FindStringIndex(lines[i]); loc != nil {
				end, err := bodyEnd(lines, i, loc[0], name)
				if err != nil {
					return nil, err
				}
				if end >= 0 {
					spans = append(spans, textbuf.Span{Start: i, End: end})
					if !all {
						return spans, nil
					}
					i = end
					continue
				}
			}
		}
		depth += braceDelta(lines[i])
		if depth < 0 {
			depth = 0
		}
	}
	return spans, nil
}

// knrDeclRe matches an old-style parameter declaration such as "char *b".
var knrDeclRe = regexp.MustCompile(`^[\w\s*\[\],]+$`)

// bodyEnd returns the line where the braces opened after the signature at
// (start, col) balance again, or -1 when start is not a definition. A ';'
// between the parameter list and the body ends a prototype unless the text
// before it is an old-style parameter declaration.
func bodyEnd(lines textbuf.Lines, start, col int, name string) (int, error) {
	count, parens := 0, 0
	opened, params := false, false
	var decl strings.Builder
	for i := start; i < len(lines); i++ {
		line := lines[i]
		if !opened && i > start && strings.TrimSpace(line) == "" {
			return -1, nil
		}
		j := 0
		if i == start {
			j = col
		}
		for ; j < len(line); j++ {
			c := line[j]
			switch {
			case c == '{':
				count++
				opened = true
			case c == '}':
				if !opened {
					return -1, nil
				}
				count--
			case opened:
			case !params && c == '(':
				parens++
			case !params && c == ')':
				parens--
				params = parens == 0
			case c == ';':
				if !params {
					return -1, nil
				}
				d := strings.TrimSpace(decl.String())
				if d == "" || !knrDeclRe.MatchString(d) {
					return -1, nil
				}
				decl.Reset()
			case params:
				decl.WriteByte(c)
			}
		}
		if opened && count <= 0 {
			return i, nil
		}
	}
	if !opened {
		return -1, nil
	}
	return -1, &textbuf.MalformedError{
		Kind: textbuf.KindUnbalancedBraces,
		Name: name,
		Line: start + 1,
	}
}

func braceDelta(line string) int {
	return strings.Count(line, "{") - strings.Count(line, "}")
}

func isCommentMarker(trimmed string) bool {
	// "*" also covers the closing "*/".
	return strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*")
}

func isIdentByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

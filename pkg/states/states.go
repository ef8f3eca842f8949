// Package states removes designated entries of the form
//
//	[NAME] = {
//		...
//	},
//
// from state tables in C source files.
package states

import (
	"errors"
	"regexp"
	"strings"

	"github.com/l3aro/cprep/pkg/syntax"
	"github.com/l3aro/cprep/pkg/textbuf"
)

var (
	entryRe   = regexp.MustCompile(`\[(\w+)\]\s*=\s*\{`)
	commentRe = regexp.MustCompile(`/\*.*\*/`)
)

// entryEnd is the token closing an entry in the line engine.
const entryEnd = "},"

// Options controls a removal pass.
type Options struct {
	// All removes every entry with a name instead of the first only.
	All bool
	// Lenient skips entries that never close instead of failing.
	Lenient bool
	Engine  syntax.Engine
}

// Removal is one removed entry.
type Removal struct {
	Name string
	Span textbuf.Span
}

// Result holds the rewritten buffer and what happened to each name.
type Result struct {
	Lines    textbuf.Lines
	Removals []Removal
	Missing  []string
	Skipped  []error
}

// Changed reports whether any line was removed.
func (r *Result) Changed() bool {
	return len(r.Removals) > 0
}

// Remove deletes the entries for names from lines.
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
		var found []textbuf.Span
		var err error
		if tree != nil {
			found = tree.DesignatedEntries(name)
			if !opts.All && len(found) > 1 {
				found = found[:1]
			}
		} else {
			found, err = entries(lines, name, opts.All)
		}
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
			s.Start = withComment(lines, s.Start)
			res.Removals = append(res.Removals, Removal{Name: name, Span: s})
			spans = append(spans, s)
		}
	}

	res.Lines = textbuf.Remove(lines, spans)
	return res, nil
}

// entries finds `[name] = {` lines and extends each to the first line
// containing "},", starting from the opening line itself.
func entries(lines textbuf.Lines, name string, all bool) ([]textbuf.Span, error) {
	var spans []textbuf.Span
	for i := 0; i < len(lines); i++ {
		m := entryRe.FindStringSubmatch(lines[i])
		if m == nil || m[1] != name {
			continue
		}

		end := -1
		for j := i; j < len(lines); j++ {
			if strings.Contains(lines[j], entryEnd) {
				end = j
				break
			}
		}
		if end < 0 {
			return nil, &textbuf.MalformedError{
				Kind: textbuf.KindUnterminatedEntry,
				Name: name,
				Line: i + 1,
			}
		}

		spans = append(spans, textbuf.Span{Start: i, End: end})
		if !all {
			break
		}
		i = end
	}
	return spans, nil
}

// withComment includes a single-line comment directly above start.
func withComment(lines textbuf.Lines, start int) int {
	if start > 0 && commentRe.MatchString(lines[start-1]) {
		return start - 1
	}
	return start
}

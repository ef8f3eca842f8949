// Package textbuf provides the line buffer shared by the rewriters.
// Lines keep their terminators so that a buffer split and joined again
// reproduces the input byte for byte.
package textbuf

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMalformed is the sentinel for structurally broken input, matched by
// every *MalformedError via errors.Is.
var ErrMalformed = errors.New("malformed input")

// Malformed input kinds.
const (
	KindUnbalancedBraces  = "unbalanced braces"
	KindUnterminatedEntry = "unterminated entry"
)

// MalformedError reports a named construct whose end could not be found.
type MalformedError struct {
	Kind string
	Name string
	Line int // 1-based line where the construct starts
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: %s starting at line %d", e.Kind, e.Name, e.Line)
}

// Is makes errors.Is(err, ErrMalformed) true.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

// Lines is an ordered sequence of text lines, each with its terminator.
type Lines []string

// Split breaks content into lines. The final line has no terminator when
// content does not end in a newline.
func Split(content string) Lines {
	if content == "" {
		return Lines{}
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return Lines(lines)
}

// String joins the lines back into content.
func (l Lines) String() string {
	return strings.Join(l, "")
}

// Trimmed returns line i without surrounding whitespace.
func (l Lines) Trimmed(i int) string {
	return strings.TrimSpace(l[i])
}

// Span is a 0-based inclusive line range.
type Span struct {
	Start int
	End   int
}

// Len returns the number of lines covered.
func (s Span) Len() int {
	return s.End - s.Start + 1
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start+1, s.End+1)
}

// Normalize sorts spans and merges overlapping or adjacent ones.
func Normalize(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End < sorted[j].End
		}
		return sorted[i].Start < sorted[j].Start
	})

	merged := []Span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End+1 {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// Remove returns a new buffer without the lines covered by spans. The input
// is not modified. Spans outside the buffer are clipped.
func Remove(lines Lines, spans []Span) Lines {
	spans = Normalize(spans)
	out := make(Lines, 0, len(lines))
	next := 0
	for i, line := range lines {
		for next < len(spans) && spans[next].End < i {
			next++
		}
		if next < len(spans) && spans[next].Start <= i && i <= spans[next].End {
			continue
		}
		out = append(out, line)
	}
	return out
}

// ExtendBackward moves start up while the preceding line satisfies match.
func ExtendBackward(lines Lines, start int, match func(trimmed string) bool) int {
	for start > 0 && match(lines.Trimmed(start-1)) {
		start--
	}
	return start
}

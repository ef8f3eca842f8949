// Package macro resolves IS_ENABLED(FLAG) invocations to literal 0/1 using
// the #define and #undef directives of a configuration header.
package macro

import (
	"regexp"
	"strings"
)

var (
	defineRe = regexp.MustCompile(`(?m)^[ \t]*#[ \t]*define[ \t]+(\w+)`)
	undefRe  = regexp.MustCompile(`(?m)^[ \t]*#[ \t]*undef[ \t]+(\w+)`)

	// IS_ENABLED must not be the tail of a longer identifier.
	invocationRe = regexp.MustCompile(`\bIS_ENABLED\((\w+)\)`)
)

// Flags maps a flag name to its enablement. Order keeps first-seen order
// of the names for reporting.
type Flags struct {
	values map[string]bool
	order  []string
}

// NewFlags returns an empty mapping.
func NewFlags() *Flags {
	return &Flags{values: make(map[string]bool)}
}

// Set records name as enabled or disabled; later calls win.
func (f *Flags) Set(name string, enabled bool) {
	if _, ok := f.values[name]; !ok {
		f.order = append(f.order, name)
	}
	f.values[name] = enabled
}

// Lookup returns the value for name and whether it is known.
func (f *Flags) Lookup(name string) (enabled, ok bool) {
	enabled, ok = f.values[name]
	return enabled, ok
}

// Names returns the known names in first-seen order.
func (f *Flags) Names() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Len returns the number of known names.
func (f *Flags) Len() int {
	return len(f.order)
}

// ParseHeader collects every #define as enabled, then every #undef as
// disabled. A name that is both defined and undefined ends up disabled.
func ParseHeader(header string) *Flags {
	flags := NewFlags()
	for _, m := range defineRe.FindAllStringSubmatch(header, -1) {
		flags.Set(m[1], true)
	}
	for _, m := range undefRe.FindAllStringSubmatch(header, -1) {
		flags.Set(m[1], false)
	}
	return flags
}

// Literal is the value an enabled/disabled flag resolves to.
func Literal(enabled bool) string {
	if enabled {
		return "1"
	}
	return "0"
}

// Annotate returns the replacement text for IS_ENABLED(name).
func Annotate(name string, enabled bool) string {
	return Literal(enabled) + "/*IS_ENABLED(" + name + ")*/"
}

// Substitution counts the replacements made for one flag.
type Substitution struct {
	Name  string
	Value string
	Count int
}

// Result describes a Resolve pass.
type Result struct {
	Content       string
	Substitutions []Substitution
	// Unresolved lists names used in IS_ENABLED but absent from the header.
	Unresolved []string
}

// Changed reports whether any invocation was rewritten.
func (r *Result) Changed() bool {
	return len(r.Substitutions) > 0
}

// Resolve rewrites every IS_ENABLED(NAME) with a known NAME into its
// literal, keeping the original invocation in a trailing comment.
// Invocations that already sit inside such a comment are left alone, so
// resolving twice changes nothing.
func Resolve(src string, flags *Flags) *Result {
	res := &Result{}
	counts := make(map[string]int)
	unresolved := make(map[string]bool)

	var sb strings.Builder
	last := 0
	for _, loc := range invocationRe.FindAllStringSubmatchIndex(src, -1) {
		start, end := loc[0], loc[1]
		name := src[loc[2]:loc[3]]

		if strings.HasSuffix(src[:start], "/*") {
			continue
		}
		enabled, ok := flags.Lookup(name)
		if !ok {
			if !unresolved[name] {
				unresolved[name] = true
				res.Unresolved = append(res.Unresolved, name)
			}
			continue
		}

		sb.WriteString(src[last:start])
		sb.WriteString(Annotate(name, enabled))
		last = end
		counts[name]++
	}
	sb.WriteString(src[last:])
	res.Content = sb.String()

	for _, name := range flags.Names() {
		if n := counts[name]; n > 0 {
			enabled, _ := flags.Lookup(name)
			res.Substitutions = append(res.Substitutions, Substitution{
				Name:  name,
				Value: Literal(enabled),
				Count: n,
			})
		}
	}
	return res
}

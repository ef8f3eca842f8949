package scanner

import (
	"path"
	"strings"
)

// IgnorePattern represents a single gitignore-style pattern.
type IgnorePattern struct {
	pattern     string // Original pattern
	isNegation  bool   // True if pattern starts with !
	isDirectory bool   // True if pattern ends with /
	isAbsolute  bool   // True if pattern starts with / or contains an inner /
	segments    []string
}

// ParseIgnorePattern parses a gitignore-style pattern string.
func ParseIgnorePattern(pattern string) IgnorePattern {
	p := IgnorePattern{pattern: pattern}

	if strings.HasPrefix(pattern, "!") {
		p.isNegation = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		p.isDirectory = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if strings.HasPrefix(pattern, "/") {
		p.isAbsolute = true
		pattern = pattern[1:]
	} else if strings.Contains(pattern, "/") {
		p.isAbsolute = true
	}

	p.segments = strings.Split(pattern, "/")
	return p
}

// IsNegation returns true if this pattern is a negation pattern.
func (p IgnorePattern) IsNegation() bool {
	return p.isNegation
}

// Match checks if the slash-separated relative path matches. isDir tells
// whether the path itself is a directory; directory patterns also match
// everything below a matching directory.
func (p IgnorePattern) Match(relPath string, isDir bool) bool {
	segs := strings.Split(relPath, "/")

	starts := []int{0}
	if !p.isAbsolute {
		starts = starts[:0]
		for i := range segs {
			starts = append(starts, i)
		}
	}

	for _, start := range starts {
		for end := start + 1; end <= len(segs); end++ {
			if !matchSegments(p.segments, segs[start:end]) {
				continue
			}
			// A match on a proper prefix means an ancestor directory matched.
			if end < len(segs) || isDir || !p.isDirectory {
				return true
			}
		}
	}
	return false
}

// matchSegments matches glob segments, with ** spanning any number of
// path segments.
func matchSegments(pattern, segs []string) bool {
	if len(pattern) == 0 {
		return len(segs) == 0
	}
	if pattern[0] == "**" {
		for i := 0; i <= len(segs); i++ {
			if matchSegments(pattern[1:], segs[i:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	ok, err := path.Match(pattern[0], segs[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pattern[1:], segs[1:])
}

// Package scanner expands directory arguments into the C source and header
// files below them. It respects .cprepignore files with gitignore-style
// patterns.
package scanner

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Kind classifies a C file.
type Kind string

const (
	Source Kind = "source"
	Header Kind = "header"
)

// KindOf returns the kind for a path and whether it is a C file at all.
func KindOf(path string) (Kind, bool) {
	switch filepath.Ext(path) {
	case ".c":
		return Source, true
	case ".h":
		return Header, true
	default:
		return "", false
	}
}

// FileInfo represents information about a discovered file.
type FileInfo struct {
	Path     string // Relative path from root, slash separated
	FullPath string // Absolute path
	Kind     Kind
	Size     int64
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden      bool     // Skip hidden files and directories (starting with .)
	DefaultExcludes []string // Directory names never entered
	IgnoreFileName  string   // Name of the ignore file (default: .cprepignore)
	Kinds           []Kind   // Kinds to return; empty means all
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		IgnoreFileName: ".cprepignore",
		DefaultExcludes: []string{
			".git",
			".hg",
			".svn",
			"build",
			"out",
			"third_party",
		},
	}
}

// Scanner provides file tree scanning capabilities.
type Scanner struct {
	opts Options
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	return &Scanner{opts: opts}
}

// Scan walks root and returns the matching C files sorted by path.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}

	ignores := make(map[string][]IgnorePattern)
	var files []FileInfo

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		relSlash := filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." {
				if s.opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				if s.isDefaultExcluded(d.Name()) || s.ignored(ignores, relSlash, true) {
					return filepath.SkipDir
				}
			}
			patterns, err := s.loadIgnorePatterns(path)
			if err != nil {
				return fmt.Errorf("loading ignore patterns: %w", err)
			}
			ignores[relSlash] = patterns
			return nil
		}

		if s.opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		kind, ok := KindOf(path)
		if !ok || !s.wantKind(kind) {
			return nil
		}
		if s.ignored(ignores, relSlash, false) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{
			Path:     relSlash,
			FullPath: path,
			Kind:     kind,
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (s *Scanner) wantKind(kind Kind) bool {
	if len(s.opts.Kinds) == 0 {
		return true
	}
	for _, k := range s.opts.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// isDefaultExcluded checks if the name matches default exclusion patterns.
func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// ignored applies the patterns of every ancestor directory of relPath,
// outermost first, each relative to its own directory. Later patterns and
// negations override earlier ones.
func (s *Scanner) ignored(ignores map[string][]IgnorePattern, relPath string, isDir bool) bool {
	ignored := false
	dir := "."
	rest := relPath
	for {
		for _, p := range ignores[dir] {
			if p.Match(rest, isDir) {
				ignored = !p.IsNegation()
			}
		}
		i := strings.IndexByte(rest, '/')
		if i < 0 {
			return ignored
		}
		if dir == "." {
			dir = rest[:i]
		} else {
			dir = dir + "/" + rest[:i]
		}
		rest = rest[i+1:]
	}
}

// loadIgnorePatterns loads ignore patterns from the ignore file in dir.
func (s *Scanner) loadIgnorePatterns(dir string) ([]IgnorePattern, error) {
	if s.opts.IgnoreFileName == "" {
		return nil, nil
	}
	file, err := os.Open(filepath.Join(dir, s.opts.IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var patterns []IgnorePattern
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, ParseIgnorePattern(line))
	}
	return patterns, sc.Err()
}

// Expand returns path itself when it is a file, or the C files under it when
// it is a directory.
func Expand(path string, opts Options) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := New(opts).Scan(path)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.FullPath)
	}
	return paths, nil
}

// Package namelist reads the companion lists of identifiers (function or
// state names) that drive the removers.
package namelist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Default companion file names.
const (
	FunctionsFile = "functions_to_remove.txt"
	StatesFile    = "states_to_remove.txt"
)

// Parse reads one name per line. Blank lines and lines starting with '#'
// are skipped; duplicates keep their first position.
func Parse(r io.Reader) ([]string, error) {
	var names []string
	seen := make(map[string]bool)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading name list: %w", err)
	}
	return names, nil
}

// Load parses the list file at path.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening name list %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// DefaultPath returns file located next to the running executable.
func DefaultPath(file string) (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), file), nil
}

// Package diffview renders the unified diff shown by --dry-run.
package diffview

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pmezard/go-difflib/difflib"
)

var (
	baseStyle   = lipgloss.NewStyle().TabWidth(lipgloss.NoTabConversion)
	headerStyle = baseStyle.Bold(true)
	hunkStyle   = baseStyle.Foreground(lipgloss.Color("81")) // Cyan
	addStyle    = baseStyle.Foreground(lipgloss.Color("42")) // Green
	delStyle    = baseStyle.Foreground(lipgloss.Color("203"))
)

// ContextLines is the number of unchanged lines around each hunk.
const ContextLines = 3

// Unified returns the unified diff between before and after, labelled with
// path. An empty string means the contents are equal.
func Unified(path, before, after string) (string, error) {
	if before == after {
		return "", nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  ContextLines,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("computing diff for %s: %w", path, err)
	}
	return text, nil
}

// Colorize styles each line of a unified diff.
func Colorize(diff string) string {
	if diff == "" {
		return ""
	}
	lines := strings.SplitAfter(diff, "\n")
	var sb strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		body := strings.TrimSuffix(line, "\n")
		nl := line[len(body):]
		switch {
		case strings.HasPrefix(body, "+++"), strings.HasPrefix(body, "---"):
			body = headerStyle.Render(body)
		case strings.HasPrefix(body, "@@"):
			body = hunkStyle.Render(body)
		case strings.HasPrefix(body, "+"):
			body = addStyle.Render(body)
		case strings.HasPrefix(body, "-"):
			body = delStyle.Render(body)
		}
		sb.WriteString(body)
		sb.WriteString(nl)
	}
	return sb.String()
}

// Write prints the diff between before and after to w, colored when color
// is set. Nothing is written when the contents are equal.
func Write(w io.Writer, path, before, after string, color bool) error {
	diff, err := Unified(path, before, after)
	if err != nil || diff == "" {
		return err
	}
	if color {
		diff = Colorize(diff)
	}
	_, err = io.WriteString(w, diff)
	return err
}

package extractor

import (
	"fmt"
	"os"
	"strings"

	"github.com/dshills/gogat/pkg/types"
)

// Snippet is a syntactically complete excerpt of a source file
type Snippet struct {
	Path      string
	StartLine int
	EndLine   int
	Lang      string
	Lines     []string
}

// Text joins the snippet lines, newline terminated
func (s Snippet) Text() string {
	if len(s.Lines) == 0 {
		return ""
	}
	return strings.Join(s.Lines, "\n") + "\n"
}

// Location returns the span the snippet covers
func (s Snippet) Location() types.Location {
	return types.Location{Path: s.Path, StartLine: s.StartLine, EndLine: s.EndLine}
}

// Extract scans forward from the 1-based start line, one line at a time,
// until the oracle reports a complete definition. Lines start..end are
// returned. When input ends first the result is types.ErrTruncated and no
// partial snippet.
func Extract(lines []string, start int, oracle Oracle) ([]string, error) {
	if start < 1 || start > len(lines) {
		return nil, fmt.Errorf("start line %d out of range 1..%d", start, len(lines))
	}

	first := lines[start-1]
	var acc strings.Builder
	for i := start - 1; i < len(lines); i++ {
		acc.WriteString(lines[i])
		acc.WriteByte('\n')

		if !oracle.Complete([]byte(acc.String())) {
			continue
		}
		if next, ok := nextNonBlank(lines, i+1); ok && oracle.Continues(first, next) {
			continue
		}

		out := make([]string, i-start+2)
		copy(out, lines[start-1:i+1])
		return out, nil
	}

	return nil, fmt.Errorf("%w: scanned lines %d..%d", types.ErrTruncated, start, len(lines))
}

func nextNonBlank(lines []string, from int) (string, bool) {
	for i := from; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i], true
		}
	}
	return "", false
}

// ExtractFile reads path and extracts the definition starting at line start
// with the oracle matching the file extension
func ExtractFile(path string, start int) (Snippet, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Snippet{}, &types.IOError{Path: path, Err: err}
	}

	lines, err := Extract(SplitLines(string(src)), start, For(path))
	if err != nil {
		return Snippet{}, fmt.Errorf("extract %s:%d: %w", path, start, err)
	}

	return Snippet{
		Path:      path,
		StartLine: start,
		EndLine:   start + len(lines) - 1,
		Lang:      Language(path),
		Lines:     lines,
	}, nil
}

// SplitLines splits src into lines without terminators. A trailing newline
// does not produce an empty last line.
func SplitLines(src string) []string {
	if src == "" {
		return nil
	}
	src = strings.TrimSuffix(src, "\n")
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

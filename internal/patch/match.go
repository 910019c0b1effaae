// Package patch resolves a model-supplied "old content" block against real
// file text and applies create/replace operations to the filesystem.
package patch

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy identifies which matching tier produced a replacement.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyExact
	StrategyIndentAware
	StrategySingleLine
)

func (s Strategy) String() string {
	switch s {
	case StrategyExact:
		return "exact"
	case StrategyIndentAware:
		return "indent-aware"
	case StrategySingleLine:
		return "single-line"
	default:
		return "none"
	}
}

// ErrEmptyOldContent rejects a replace whose old content is blank after
// trimming; a blank block cannot be located.
var ErrEmptyOldContent = errors.New("old content is blank, nothing to match")

// NoMatchError reports that every strategy failed. It carries the raw file
// text and the requested block so the caller can show the user exactly what
// did not line up.
type NoMatchError struct {
	FileText   string
	OldContent string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no matching block found (searched %d file lines for %d block lines)",
		len(splitLines(e.FileText)), len(splitLines(e.OldContent)))
}

// Replace resolves oldContent against fileText and splices in newContent,
// trying the exact, indentation-aware and single-line strategies in order.
// On success the returned text has normalized line endings; on failure
// fileText is returned unchanged alongside the error. At most one contiguous
// block is ever modified.
func Replace(fileText, oldContent, newContent string) (string, Strategy, error) {
	if strings.TrimSpace(oldContent) == "" {
		return fileText, StrategyNone, ErrEmptyOldContent
	}

	// Tier 1: verbatim substring, first occurrence, indentation trusted.
	if strings.Contains(fileText, oldContent) {
		out := strings.Replace(fileText, oldContent, newContent, 1)
		return normalizeNewlines(out), StrategyExact, nil
	}

	pattern := strippedNonBlankLines(oldContent)
	if len(pattern) > 1 {
		if out, ok := replaceIndentAware(fileText, pattern, newContent); ok {
			return normalizeNewlines(out), StrategyIndentAware, nil
		}
	}
	if len(pattern) == 1 {
		if out, ok := replaceSingleLine(fileText, pattern[0], newContent); ok {
			return normalizeNewlines(out), StrategySingleLine, nil
		}
	}

	return fileText, StrategyNone, &NoMatchError{FileText: fileText, OldContent: oldContent}
}

// replaceIndentAware matches the stripped non-blank pattern lines against
// the file, skipping blank file lines, and re-indents the replacement with
// the indentation found at the first matched line.
func replaceIndentAware(fileText string, pattern []string, newContent string) (string, bool) {
	lines := splitLines(fileText)

	for start := range lines {
		if strings.TrimSpace(lines[start]) != pattern[0] {
			continue
		}
		end, ok := walkCandidate(lines, start, pattern)
		if !ok {
			continue
		}
		indent := leadingWhitespace(lines[start])
		return splice(lines, start, end, reindent(newContent, indent)), true
	}
	return "", false
}

// walkCandidate greedily matches pattern lines from start, skipping blank
// file lines. Any content mismatch aborts the candidate outright; there is
// no fuzzy recovery. Returns the index of the last matched line.
func walkCandidate(lines []string, start int, pattern []string) (int, bool) {
	i := start
	for p := 1; p < len(pattern); p++ {
		i++
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}
		if i >= len(lines) || strings.TrimSpace(lines[i]) != pattern[p] {
			return 0, false
		}
	}
	return i, true
}

// replaceSingleLine matches a one-line pattern against the first file line
// with equal fully-trimmed text (all whitespace ignored, so "x+1" finds
// "x + 1") and splices the re-indented replacement in place of that line.
func replaceSingleLine(fileText, pattern, newContent string) (string, bool) {
	want := collapseWhitespace(pattern)
	lines := splitLines(fileText)
	for i, line := range lines {
		if collapseWhitespace(line) != want {
			continue
		}
		indent := leadingWhitespace(line)
		return splice(lines, i, i, reindent(newContent, indent)), true
	}
	return "", false
}

// reindent rewrites every line of content with the single indentation
// string; blank lines stay blank.
func reindent(content, indent string) []string {
	src := splitLines(content)
	out := make([]string, 0, len(src))
	for _, line := range src {
		if strings.TrimSpace(line) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, indent+strings.TrimLeft(line, " \t"))
	}
	return out
}

func splice(lines []string, start, end int, replacement []string) string {
	out := make([]string, 0, len(lines)-(end-start+1)+len(replacement))
	out = append(out, lines[:start]...)
	out = append(out, replacement...)
	out = append(out, lines[end+1:]...)
	return strings.Join(out, "\n")
}

func strippedNonBlankLines(s string) []string {
	var out []string
	for _, line := range splitLines(s) {
		if t := strings.TrimSpace(line); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

func splitLines(s string) []string {
	return strings.Split(normalizeNewlines(s), "\n")
}

// normalizeNewlines canonicalizes CRLF and stray CR to LF.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

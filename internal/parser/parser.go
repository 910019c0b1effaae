// Package parser extracts file operations and terminal commands from the
// tagged markup the model embeds in its replies. Markers are literal,
// non-recursive start/end pairs; anything between them, including text that
// looks like another marker, belongs to the body.
package parser

import (
	"fmt"
	"strings"
)

// Tag grammar markers.
const (
	markCreateOpen   = "[CREATE="
	markCreateClose  = "[/CREATE]"
	markReplaceOpen  = "[REPLACE="
	markReplaceTo    = "[TO]"
	markReplaceClose = "[/REPLACE]"
	markTerminal     = "[TERMINAL]"
	markTerminalEnd  = "[/TERMINAL]"
	markEnd          = "[END]"
)

// OpKind discriminates the FileOperation variants.
type OpKind int

const (
	OpCreate OpKind = iota
	OpReplace
)

func (k OpKind) String() string {
	if k == OpCreate {
		return "create"
	}
	return "replace"
}

// FileOperation is one create or replace request parsed from a turn.
// Immutable once parsed; OldContent/NewContent are only set for OpReplace.
type FileOperation struct {
	Kind       OpKind
	Path       string
	Content    string
	OldContent string
	NewContent string
}

// StripEnd reports whether text ends with the end-of-turn marker and returns
// the text with the marker removed. The marker only counts at the very end
// of the trimmed text; an [END] mid-prose is body text.
func StripEnd(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasSuffix(trimmed, markEnd) {
		return text, false
	}
	return strings.TrimSpace(strings.TrimSuffix(trimmed, markEnd)), true
}

// Commands returns the terminal-command strings of a turn, in document order.
func Commands(text string) []string {
	text, _ = StripEnd(text)
	var cmds []string
	for {
		body, rest, ok := scanBlock(text, markTerminal, markTerminalEnd)
		if !ok {
			return cmds
		}
		if cmd := strings.TrimSpace(body); cmd != "" {
			cmds = append(cmds, cmd)
		}
		text = rest
	}
}

// Operations returns the file operations of a turn in document order, plus
// warnings for blocks that were dropped. Malformed or empty blocks are never
// fatal.
func Operations(text string) ([]FileOperation, []string) {
	text, _ = StripEnd(text)

	var ops []FileOperation
	var warnings []string
	for rest := text; ; {
		op, next, ok, warn := scanOperation(rest)
		if warn != "" {
			warnings = append(warnings, warn)
		}
		if !ok && next == "" {
			break
		}
		if ok {
			ops = append(ops, op)
		}
		rest = next
	}
	return ops, warnings
}

// scanOperation finds the next create or replace block, whichever starts
// first. ok reports a parsed operation; next is the remaining text, empty
// when scanning is done.
func scanOperation(text string) (op FileOperation, next string, ok bool, warn string) {
	ci := strings.Index(text, markCreateOpen)
	ri := strings.Index(text, markReplaceOpen)
	switch {
	case ci < 0 && ri < 0:
		return FileOperation{}, "", false, ""
	case ri < 0 || (ci >= 0 && ci < ri):
		return scanCreate(text, ci)
	default:
		return scanReplace(text, ri)
	}
}

func scanCreate(text string, start int) (FileOperation, string, bool, string) {
	path, body, rest, ok := scanPathBlock(text[start:], markCreateOpen, markCreateClose)
	if !ok {
		// Unterminated block: skip past the opener so scanning makes progress.
		return FileOperation{}, text[start+len(markCreateOpen):], false, ""
	}
	content := StripCodeFences(strings.TrimSpace(body))
	if content == "" {
		// Empty creates are dropped silently.
		return FileOperation{}, rest, false, ""
	}
	return FileOperation{Kind: OpCreate, Path: path, Content: content}, rest, true, ""
}

func scanReplace(text string, start int) (FileOperation, string, bool, string) {
	path, body, rest, ok := scanPathBlock(text[start:], markReplaceOpen, markReplaceClose)
	if !ok {
		return FileOperation{}, text[start+len(markReplaceOpen):], false, ""
	}
	to := strings.Index(body, markReplaceTo)
	if to < 0 {
		return FileOperation{}, rest, false,
			fmt.Sprintf("replace block for %q has no [TO] delimiter; dropped", path)
	}
	oldContent := trimBlockEdges(body[:to])
	newContent := trimBlockEdges(body[to+len(markReplaceTo):])
	if strings.TrimSpace(oldContent) == "" {
		return FileOperation{}, rest, false,
			fmt.Sprintf("replace block for %q has empty old content; dropped", path)
	}
	return FileOperation{
		Kind:       OpReplace,
		Path:       path,
		OldContent: oldContent,
		NewContent: newContent,
	}, rest, true, ""
}

// scanPathBlock parses "<open><path>]...<close>" at the start of text.
// The body runs to the first close marker (non-greedy), so nested-looking
// openers inside the body stay literal.
func scanPathBlock(text, open, close string) (path, body, rest string, ok bool) {
	inner := text[len(open):]
	pathEnd := strings.IndexByte(inner, ']')
	if pathEnd < 0 {
		return "", "", "", false
	}
	path = strings.TrimSpace(inner[:pathEnd])
	inner = inner[pathEnd+1:]
	end := strings.Index(inner, close)
	if end < 0 || path == "" {
		return "", "", "", false
	}
	return path, inner[:end], inner[end+len(close):], true
}

// scanBlock parses the first "<open>...<close>" pair in text.
func scanBlock(text, open, close string) (body, rest string, ok bool) {
	start := strings.Index(text, open)
	if start < 0 {
		return "", "", false
	}
	inner := text[start+len(open):]
	end := strings.Index(inner, close)
	if end < 0 {
		return "", "", false
	}
	return inner[:end], inner[end+len(close):], true
}

// trimBlockEdges removes at most one leading and one trailing newline so the
// block bodies keep their interior whitespace byte-for-byte. Tags are
// written on their own lines; those framing newlines are markup, not body.
func trimBlockEdges(s string) string {
	s = strings.TrimPrefix(s, "\r\n")
	s = strings.TrimPrefix(s, "\n")
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s
}

// StripCodeFences removes a markdown code fence wrapping the whole body, if
// present. Models habitually fence CREATE bodies even when told not to.
func StripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return content
	}
	firstNL := strings.IndexByte(trimmed, '\n')
	if firstNL < 0 || !strings.HasSuffix(trimmed[firstNL:], "```") {
		return content
	}
	fenceLine := trimmed[3:firstNL]
	if strings.ContainsAny(fenceLine, " `") && strings.TrimSpace(fenceLine) != "" {
		return content
	}
	inner := trimmed[firstNL+1 : len(trimmed)-3]
	return strings.TrimRight(inner, "\n")
}

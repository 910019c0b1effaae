package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SystemPrompt teaches the model the tag protocol the parser understands.
const SystemPrompt = `You are a coding assistant operating inside the user's project directory.
You cannot call tools. Instead you act through tagged blocks in your reply:

[CREATE=path/to/file]
full file content
[/CREATE]
  Creates or overwrites the file with exactly the content between the tags.

[REPLACE=path/to/file]
existing lines, copied verbatim from the file
[TO]
replacement lines
[/REPLACE]
  Replaces the first occurrence of the existing lines. Copy them exactly as
  they appear in the file, including indentation. Never leave the old part
  blank.

[TERMINAL]command[/TERMINAL]
  Requests that a shell command be run. The user confirms each command and
  you get its output on the next turn.

File context is shown to you with "  N | " line-number prefixes. Those
prefixes are not part of the file; never include them in CREATE or REPLACE
blocks.

When your answer is complete, finish with [END] on its own at the very end.
If you omit [END], you will be prompted to continue the same answer.`

// Entry is one message of the running conversation.
type Entry struct {
	Role    string
	Content string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// FileContext renders the current, line-numbered content of paths relative
// to dir. Unreadable paths are skipped. This keeps the model editing
// against what is actually on disk rather than what it wrote earlier.
func FileContext(dir string, paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		data, err := os.ReadFile(filepath.Join(dir, p))
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "--- Current content of %s ---\n%s\n\n", p, NumberLines(string(data)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildPrompt flattens the conversation into a single role-tagged transcript.
// Only the most recent limit entries are kept; 0 keeps everything.
func BuildPrompt(system string, history []Entry, limit int) string {
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	var b strings.Builder
	b.WriteString(system)
	for _, e := range history {
		fmt.Fprintf(&b, "\n\n[%s]\n%s", e.Role, e.Content)
	}
	b.WriteString("\n\n[assistant]\n")
	return b.String()
}

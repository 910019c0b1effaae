package app

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var mentionPattern = regexp.MustCompile(`@([\w./-]+)`)

// ExpandMentions resolves @path references in the user's input and prepends
// the referenced content so the model reads it before the request itself.
// @codebase injects the workspace file listing. An unresolvable mention gets
// a note instead of content; the token itself always stays in the text.
func ExpandMentions(input, root string, limit int) string {
	matches := mentionPattern.FindAllStringSubmatch(input, -1)
	if len(matches) == 0 {
		return input
	}

	var blocks []string
	seen := make(map[string]bool)
	for _, m := range matches {
		target := strings.TrimRight(m[1], ".")
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true

		if target == "codebase" {
			files := WorkspaceFiles(root, limit)
			blocks = append(blocks, fmt.Sprintf("--- Workspace files ---\n%s", strings.Join(files, "\n")))
			continue
		}

		path := filepath.Join(root, target)
		info, err := os.Stat(path)
		if err != nil {
			blocks = append(blocks, fmt.Sprintf("Note: @%s does not match any file or directory in the workspace.", target))
			continue
		}
		if info.IsDir() {
			entries, err := os.ReadDir(path)
			if err != nil {
				continue
			}
			var names []string
			for _, e := range entries {
				name := e.Name()
				if e.IsDir() {
					name += "/"
				}
				names = append(names, name)
			}
			blocks = append(blocks, fmt.Sprintf("--- Contents of directory %s ---\n%s", target, strings.Join(names, "\n")))
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("--- Content of %s ---\n%s", target, NumberLines(string(data))))
	}

	if len(blocks) == 0 {
		return input
	}
	return strings.Join(blocks, "\n\n") + "\n\n" + input
}

// NumberLines prefixes each line with its 1-based number, the shape the
// model is told file context arrives in.
func NumberLines(content string) string {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%4d | %s\n", i+1, line)
	}
	return strings.TrimRight(b.String(), "\n")
}

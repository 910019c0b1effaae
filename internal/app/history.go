package app

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

const historyFileName = ".codagent_history"

// InputHistory persists the lines the user typed, one per line, in the
// working directory. New sessions pick up where older ones left off.
type InputHistory struct {
	path  string
	lines []string
}

func OpenInputHistory(dir string) *InputHistory {
	h := &InputHistory{path: filepath.Join(dir, historyFileName)}
	file, err := os.Open(h.path)
	if err != nil {
		return h
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line != "" {
			h.lines = append(h.lines, line)
		}
	}
	return h
}

func (h *InputHistory) Lines() []string {
	return h.lines
}

// Append records a line and writes it through to disk. Blank lines and
// immediate repeats are skipped.
func (h *InputHistory) Append(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if n := len(h.lines); n > 0 && h.lines[n-1] == line {
		return
	}
	h.lines = append(h.lines, line)

	file, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	_, _ = file.WriteString(line + "\n")
}

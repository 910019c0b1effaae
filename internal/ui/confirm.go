package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm asks a yes/no question and returns true for answers starting
// with "y" (case-insensitive). EOF or a read error counts as no.
func (t Theme) Confirm(in *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s ", t.Accent.Render(question+" (y/n):"))
	answer, err := in.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y")
}

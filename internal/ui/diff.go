package ui

import (
	"fmt"
	"strings"

	"codagent/internal/parser"
	"codagent/internal/patch"
)

const createPreviewLines = 5

type changeKind int

const (
	changeEqual changeKind = iota
	changeAdd
	changeRemove
)

type change struct {
	Kind changeKind
	Line string
}

// computeChanges computes a line-level diff between old and new content.
// Lines are compared byte-for-byte so indentation defects stay visible.
func computeChanges(old, new []string) []change {
	var changes []change
	oldIdx, newIdx := 0, 0

	for oldIdx < len(old) || newIdx < len(new) {
		if oldIdx >= len(old) {
			for ; newIdx < len(new); newIdx++ {
				changes = append(changes, change{Kind: changeAdd, Line: new[newIdx]})
			}
			break
		}
		if newIdx >= len(new) {
			for ; oldIdx < len(old); oldIdx++ {
				changes = append(changes, change{Kind: changeRemove, Line: old[oldIdx]})
			}
			break
		}

		if old[oldIdx] == new[newIdx] {
			changes = append(changes, change{Kind: changeEqual, Line: old[oldIdx]})
			oldIdx++
			newIdx++
			continue
		}

		matchOld, matchNew := findNextMatch(old[oldIdx:], new[newIdx:])
		switch {
		case matchOld == -1 && matchNew == -1:
			changes = append(changes, change{Kind: changeRemove, Line: old[oldIdx]})
			changes = append(changes, change{Kind: changeAdd, Line: new[newIdx]})
			oldIdx++
			newIdx++
		case matchNew < matchOld || matchOld == -1:
			for i := 0; i < matchNew; i++ {
				changes = append(changes, change{Kind: changeAdd, Line: new[newIdx+i]})
			}
			newIdx += matchNew
		default:
			for i := 0; i < matchOld; i++ {
				changes = append(changes, change{Kind: changeRemove, Line: old[oldIdx+i]})
			}
			oldIdx += matchOld
		}
	}

	return changes
}

// findNextMatch looks a few lines ahead in both slices for the nearest
// common line, anchoring the diff.
func findNextMatch(old, new []string) (int, int) {
	const maxLook = 5

	for i := 1; i < len(old) && i <= maxLook; i++ {
		for j := 0; j < len(new) && j <= maxLook; j++ {
			if old[i] == new[j] {
				return i, j
			}
		}
	}
	for j := 1; j < len(new) && j <= maxLook; j++ {
		for i := 0; i < len(old) && i <= maxLook; i++ {
			if old[i] == new[j] {
				return i, j
			}
		}
	}
	return -1, -1
}

// RenderDiff renders a colored line diff of the literal old and new blocks.
func (t Theme) RenderDiff(oldContent, newContent string) string {
	oldLines := strings.Split(oldContent, "\n")
	newLines := strings.Split(newContent, "\n")

	var b strings.Builder
	for _, c := range computeChanges(oldLines, newLines) {
		switch c.Kind {
		case changeAdd:
			b.WriteString(t.Added.Render("+" + c.Line))
		case changeRemove:
			b.WriteString(t.Removed.Render("-" + c.Line))
		default:
			b.WriteString(t.Context.Render(" " + c.Line))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderOperations renders the full batch of pending file operations for
// review: creates show a content head, replaces show a literal diff.
func (t Theme) RenderOperations(ops []parser.FileOperation) string {
	if len(ops) == 0 {
		return t.RenderBox("File Operations", t.Muted.Render("No file operations proposed."))
	}

	var sections []string
	for _, op := range ops {
		switch op.Kind {
		case parser.OpCreate:
			head := t.Success.Render("CREATE ") + t.Accent.Render(op.Path)
			lines := strings.Split(op.Content, "\n")
			shown := lines
			if len(shown) > createPreviewLines {
				shown = shown[:createPreviewLines]
			}
			body := t.Added.Render("+" + strings.Join(shown, "\n+"))
			if len(lines) > createPreviewLines {
				body += "\n" + t.Muted.Render(fmt.Sprintf("… %d more lines", len(lines)-createPreviewLines))
			}
			sections = append(sections, head+"\n"+body)
		case parser.OpReplace:
			head := t.Warn.Render("REPLACE ") + t.Accent.Render(op.Path)
			sections = append(sections, head+"\n"+t.RenderDiff(op.OldContent, op.NewContent))
		}
	}
	return t.RenderBox("File Operations", strings.Join(sections, "\n\n"))
}

// RenderCommands renders pending terminal commands for review.
func (t Theme) RenderCommands(cmds []string) string {
	var b strings.Builder
	for i, cmd := range cmds {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t.Warn.Render("$ ") + t.Text.Render(cmd))
	}
	return t.RenderBox("Terminal Commands", b.String())
}

// RenderOutcomes renders the applier's per-operation results.
func (t Theme) RenderOutcomes(report patch.Report) string {
	var b strings.Builder
	for _, o := range report.Successful {
		line := t.Success.Render("✓ "+o.Op.Kind.String()) + " " + t.Accent.Render(o.Op.Path)
		if o.Strategy != patch.StrategyNone {
			line += t.Muted.Render(" (" + o.Strategy.String() + ")")
		}
		b.WriteString(line + "\n")
	}
	for _, o := range report.Failed {
		b.WriteString(t.Error.Render("✗ "+o.Op.Kind.String()) + " " +
			t.Accent.Render(o.Op.Path) + t.Muted.Render(": "+o.Reason) + "\n")
	}
	return t.RenderBox("Apply Results", strings.TrimRight(b.String(), "\n"))
}

// RenderMatchFailure dumps the literal file content and the requested block
// so the user can see why matching failed.
func (t Theme) RenderMatchFailure(path string, noMatch *patch.NoMatchError) string {
	var b strings.Builder
	b.WriteString(t.Error.Render("No matching block in "+path) + "\n\n")
	b.WriteString(t.Muted.Render("Requested old content:") + "\n")
	b.WriteString(t.Removed.Render(noMatch.OldContent) + "\n\n")
	b.WriteString(t.Muted.Render("Current file content:") + "\n")
	b.WriteString(t.Context.Render(noMatch.FileText))
	return t.RenderBox("Match Failure", strings.TrimRight(b.String(), "\n"))
}

package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInputHistoryPersistsAcrossSessions(t *testing.T) {
	dir := t.TempDir()

	h := OpenInputHistory(dir)
	h.Append("first request")
	h.Append("second request")

	reopened := OpenInputHistory(dir)
	lines := reopened.Lines()
	if len(lines) != 2 || lines[0] != "first request" || lines[1] != "second request" {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestInputHistorySkipsBlankAndRepeats(t *testing.T) {
	dir := t.TempDir()

	h := OpenInputHistory(dir)
	h.Append("fix the bug")
	h.Append("fix the bug")
	h.Append("   ")
	h.Append("run the tests")

	data, err := os.ReadFile(filepath.Join(dir, historyFileName))
	if err != nil {
		t.Fatal(err)
	}
	want := "fix the bug\nrun the tests\n"
	if string(data) != want {
		t.Fatalf("got %q want %q", data, want)
	}
}

func TestInputHistoryMissingFileIsEmpty(t *testing.T) {
	h := OpenInputHistory(t.TempDir())
	if len(h.Lines()) != 0 {
		t.Fatalf("expected empty history, got %v", h.Lines())
	}
}

func TestFileHistorySummary(t *testing.T) {
	h := NewFileHistory(nil)
	if h.Summary() != "" {
		t.Fatal("empty history must produce no summary")
	}

	h.RecordCreated("new.go")
	h.RecordModified("old.go")
	h.RecordModified("new.go")

	created := h.Created()
	if len(created) != 1 || created[0] != "new.go" {
		t.Fatalf("created: %v", created)
	}
	modified := h.Modified()
	if len(modified) != 1 || modified[0] != "old.go" {
		t.Fatalf("modified: %v", modified)
	}

	summary := h.Summary()
	if !strings.Contains(summary, "created:  new.go") || !strings.Contains(summary, "modified: old.go") {
		t.Fatalf("summary: %q", summary)
	}
}

func TestFileHistoryCreateSupersedesModify(t *testing.T) {
	h := NewFileHistory(nil)
	h.RecordModified("a.go")
	h.RecordCreated("a.go")

	created := h.Created()
	if len(created) != 1 || created[0] != "a.go" {
		t.Fatalf("created: %v", created)
	}
	if modified := h.Modified(); len(modified) != 0 {
		t.Fatalf("a rewritten file must leave the modified set: %v", modified)
	}
}

func TestFileHistoryKeepsWorkspaceSnapshot(t *testing.T) {
	h := NewFileHistory([]string{"main.go", "go.mod"})
	ws := h.Workspace()
	if len(ws) != 2 || ws[0] != "main.go" || ws[1] != "go.mod" {
		t.Fatalf("workspace: %v", ws)
	}
}

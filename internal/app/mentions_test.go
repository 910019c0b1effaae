package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandMentionsInjectsNumberedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := ExpandMentions("what does @main.go do?", dir, 0)
	if !strings.Contains(got, "what does @main.go do?") {
		t.Fatalf("original input must survive: %q", got)
	}
	if !strings.Contains(got, "--- Content of main.go ---") {
		t.Fatalf("content header missing: %q", got)
	}
	if !strings.Contains(got, "1 | package main") || !strings.Contains(got, "3 | func main() {}") {
		t.Fatalf("lines must be numbered: %q", got)
	}
	if strings.Index(got, "--- Content of main.go ---") > strings.Index(got, "what does") {
		t.Fatalf("file content must come before the request: %q", got)
	}
}

func TestExpandMentionsCodebaseListsWorkspace(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{"a.go", "sub/b.go", ".git/hidden"} {
		full := filepath.Join(dir, p)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got := ExpandMentions("describe @codebase", dir, 0)
	if !strings.Contains(got, "a.go") || !strings.Contains(got, "sub/b.go") {
		t.Fatalf("workspace listing incomplete: %q", got)
	}
	if strings.Contains(got, "hidden") {
		t.Fatalf("dot directories must be skipped: %q", got)
	}
}

func TestExpandMentionsUnknownPathNoted(t *testing.T) {
	dir := t.TempDir()
	input := "look at @does-not-exist.go please"
	got := ExpandMentions(input, dir, 0)
	if !strings.Contains(got, input) {
		t.Fatalf("original input must survive: %q", got)
	}
	if !strings.Contains(got, "@does-not-exist.go does not match") {
		t.Fatalf("missing target must be noted: %q", got)
	}
}

func TestExpandMentionsDirectoryListing(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "pkg", "deep"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pkg", "a.go"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := ExpandMentions("check @pkg", dir, 0)
	if !strings.Contains(got, "--- Contents of directory pkg ---") {
		t.Fatalf("directory header missing: %q", got)
	}
	if !strings.Contains(got, "a.go") || !strings.Contains(got, "deep/") {
		t.Fatalf("listing incomplete: %q", got)
	}
}

func TestExpandMentionsTrailingPunctuation(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("remember"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := ExpandMentions("see @notes.txt.", dir, 0)
	if !strings.Contains(got, "--- Content of notes.txt ---") {
		t.Fatalf("sentence-final period must not break the mention: %q", got)
	}
}

func TestWorkspaceFilesLimit(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files := WorkspaceFiles(dir, 2)
	if len(files) != 2 {
		t.Fatalf("limit not applied: %v", files)
	}
}

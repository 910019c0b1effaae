package patch

import (
	"os"
	"path/filepath"
	"testing"

	"codagent/internal/parser"
)

func TestApplyCreateMakesParentDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deep", "nested", "file.txt")

	report := Apply([]parser.FileOperation{{
		Kind:    parser.OpCreate,
		Path:    path,
		Content: "hello\r\nworld\r\n",
	}})
	if len(report.Failed) != 0 {
		t.Fatalf("unexpected failures: %+v", report.Failed)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading created file: %v", err)
	}
	if string(data) != "hello\nworld\n" {
		t.Fatalf("content not normalized: %q", data)
	}
}

func TestApplyReplaceMissingFileIsDistinctFailure(t *testing.T) {
	report := Apply([]parser.FileOperation{{
		Kind:       parser.OpReplace,
		Path:       filepath.Join(t.TempDir(), "missing.go"),
		OldContent: "a",
		NewContent: "b",
	}})
	if len(report.Failed) != 1 {
		t.Fatalf("expected 1 failure, got %+v", report)
	}
	if report.Failed[0].Reason != "file does not exist" {
		t.Fatalf("wrong reason: %q", report.Failed[0].Reason)
	}
	if report.Failed[0].NoMatch != nil {
		t.Fatalf("missing file must not be reported as a match failure")
	}
}

func TestApplyBatchContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(target, []byte("alpha\nbeta\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	report := Apply([]parser.FileOperation{
		{Kind: parser.OpReplace, Path: filepath.Join(dir, "nope.txt"), OldContent: "x", NewContent: "y"},
		{Kind: parser.OpReplace, Path: target, OldContent: "beta", NewContent: "gamma"},
	})
	if len(report.Failed) != 1 || len(report.Successful) != 1 {
		t.Fatalf("expected 1 failure and 1 success, got %+v", report)
	}
	if report.Successful[0].Strategy != StrategyExact {
		t.Fatalf("expected exact strategy, got %s", report.Successful[0].Strategy)
	}
	data, _ := os.ReadFile(target)
	if string(data) != "alpha\ngamma\n" {
		t.Fatalf("replace not applied: %q", data)
	}
}

func TestApplyFailedReplaceLeavesFileBytesIdentical(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.txt")
	before := []byte("keep\nthese\nbytes\n")
	if err := os.WriteFile(target, before, 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	report := Apply([]parser.FileOperation{{
		Kind: parser.OpReplace, Path: target, OldContent: "absent block", NewContent: "x",
	}})
	if len(report.Failed) != 1 {
		t.Fatalf("expected failure, got %+v", report)
	}
	if report.Failed[0].NoMatch == nil {
		t.Fatalf("match failure must carry diagnostics")
	}
	after, _ := os.ReadFile(target)
	if string(after) != string(before) {
		t.Fatalf("file mutated on failed replace")
	}
}

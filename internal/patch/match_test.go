package patch

import (
	"errors"
	"strings"
	"testing"
)

const sampleFile = "package demo\n\nfunc add(a, b int) int {\n\treturn a + b\n}\n\nfunc sub(a, b int) int {\n\treturn a - b\n}\n"

func TestReplaceExactSubstring(t *testing.T) {
	out, strategy, err := Replace(sampleFile, "return a + b", "return a + b + 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy != StrategyExact {
		t.Fatalf("expected exact strategy, got %s", strategy)
	}
	if !strings.Contains(out, "\treturn a + b + 1\n") {
		t.Fatalf("replacement missing: %q", out)
	}
	// Everything outside the replaced substring is untouched.
	want := strings.Replace(sampleFile, "return a + b", "return a + b + 1", 1)
	if out != want {
		t.Fatalf("other content changed:\n got %q\nwant %q", out, want)
	}
}

func TestReplaceExactFirstOccurrenceOnly(t *testing.T) {
	file := "x = 1\nx = 1\n"
	out, _, err := Replace(file, "x = 1", "x = 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "x = 2\nx = 1\n" {
		t.Fatalf("expected only first occurrence replaced, got %q", out)
	}
}

func TestReplaceIndentAwareReindents(t *testing.T) {
	file := "class A:\n    def run(self):\n        start()\n\n        finish()\n"
	old := "def run(self):\nstart()\nfinish()"
	new := "def run(self):\n    go()"

	out, strategy, err := Replace(file, old, new)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy != StrategyIndentAware {
		t.Fatalf("expected indent-aware strategy, got %s", strategy)
	}
	// Every inserted line carries the indentation of the first matched line.
	if !strings.Contains(out, "    def run(self):\n    go()\n") {
		t.Fatalf("reindentation wrong: %q", out)
	}
	if strings.Contains(out, "start()") || strings.Contains(out, "finish()") {
		t.Fatalf("matched span not fully replaced: %q", out)
	}
}

func TestReplaceIndentAwareSkipsBlankFileLines(t *testing.T) {
	file := "a()\n\n\nb()\nc()\n"
	out, strategy, err := Replace(file, "  a()\n  b()", "d()")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy != StrategyIndentAware {
		t.Fatalf("expected indent-aware strategy, got %s", strategy)
	}
	if out != "d()\nc()\n" {
		t.Fatalf("blank lines in span should be consumed: %q", out)
	}
}

func TestReplaceIndentAwareContentMismatchIsHardFailure(t *testing.T) {
	file := "one()\ntwo()\nthree()\n"
	_, strategy, err := Replace(file, "one()\nTWO()\nthree()", "x()")
	if err == nil {
		t.Fatalf("expected failure for true content mismatch")
	}
	if strategy != StrategyNone {
		t.Fatalf("expected no strategy, got %s", strategy)
	}
}

func TestReplaceSingleLineIgnoresAllWhitespace(t *testing.T) {
	// "return x+1" has no spaces and no indent; exact fails, the
	// single-line tier matches whitespace-insensitively and re-indents
	// with the four spaces captured from the file.
	file := "def f(x):\n    return x + 1\n"
	out, strategy, err := Replace(file, "return x+1", "return x + 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy != StrategySingleLine {
		t.Fatalf("expected single-line strategy, got %s", strategy)
	}
	if out != "def f(x):\n    return x + 2\n" {
		t.Fatalf("unexpected result: %q", out)
	}

	out, strategy, err = Replace(file, "return x + 1", "return x + 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy != StrategyExact {
		t.Fatalf("verbatim substring should hit the exact tier, got %s", strategy)
	}
	_ = out
}

func TestReplaceSingleLineReindents(t *testing.T) {
	file := "def f(x):\n    return compute(x)\n"
	out, strategy, err := Replace(file, "return compute(x)\n\n", "return cached(x)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Exact fails: the trailing blank lines are not present in the file.
	if strategy != StrategySingleLine {
		t.Fatalf("expected single-line strategy, got %s", strategy)
	}
	if out != "def f(x):\n    return cached(x)\n" {
		t.Fatalf("reindentation wrong: %q", out)
	}
}

func TestReplaceNoMatchLeavesTextUnchanged(t *testing.T) {
	out, strategy, err := Replace(sampleFile, "this text is nowhere", "anything")
	if err == nil {
		t.Fatalf("expected failure")
	}
	if strategy != StrategyNone {
		t.Fatalf("expected no strategy, got %s", strategy)
	}
	if out != sampleFile {
		t.Fatalf("file text must be unchanged on failure")
	}
	var noMatch *NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("expected NoMatchError, got %T", err)
	}
	if noMatch.FileText != sampleFile || noMatch.OldContent != "this text is nowhere" {
		t.Fatalf("diagnostics must carry the raw inputs")
	}
}

func TestReplaceSecondApplicationFails(t *testing.T) {
	out, _, err := Replace(sampleFile, "func sub(a, b int) int {\n\treturn a - b\n}", "func sub(a, b int) int {\n\treturn b - a\n}")
	if err != nil {
		t.Fatalf("first application failed: %v", err)
	}
	if _, _, err := Replace(out, "func sub(a, b int) int {\n\treturn a - b\n}", "func sub(a, b int) int {\n\treturn b - a\n}"); err == nil {
		t.Fatalf("second application must fail, not silently corrupt")
	}
}

func TestReplaceBlankOldContentRejected(t *testing.T) {
	_, _, err := Replace(sampleFile, "   \n\t\n", "anything")
	if !errors.Is(err, ErrEmptyOldContent) {
		t.Fatalf("expected ErrEmptyOldContent, got %v", err)
	}
}

func TestReplaceNormalizesCarriageReturns(t *testing.T) {
	file := "a\r\nb\r\nc\r\n"
	out, strategy, err := Replace(file, "b", "B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy != StrategyExact {
		t.Fatalf("expected exact strategy, got %s", strategy)
	}
	if out != "a\nB\nc\n" {
		t.Fatalf("expected normalized line endings, got %q", out)
	}
}

func TestUntrimmedSingleLineScenario(t *testing.T) {
	// File line "    return x + 1": stripped old content "return x + 1"
	// with no indentation must match and the replacement gets four spaces.
	file := "def f(x):\n    return x + 1\n"
	out, strategy, err := Replace(file, "\nreturn x + 1\n", "return x + 9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy != StrategySingleLine {
		t.Fatalf("expected single-line strategy, got %s", strategy)
	}
	if out != "def f(x):\n    return x + 9\n" {
		t.Fatalf("unexpected result: %q", out)
	}
}

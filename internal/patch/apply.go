package patch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"codagent/internal/parser"
)

// Status classifies the outcome of one applied operation.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailed
)

func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "failed"
}

// Outcome records what happened to one operation. It is produced once by
// Apply and never mutated afterwards.
type Outcome struct {
	Op       parser.FileOperation
	Status   Status
	Strategy Strategy
	Reason   string

	// Match diagnostics for failed replaces, for user-facing display.
	NoMatch *NoMatchError
}

// Report partitions a batch into successful and failed outcomes.
type Report struct {
	Successful []Outcome
	Failed     []Outcome
}

// Apply performs the confirmed operations in order. Every per-operation
// error is converted into a failed Outcome; one bad operation never aborts
// the batch and Apply itself never returns an error.
func Apply(ops []parser.FileOperation) Report {
	var report Report
	for _, op := range ops {
		outcome := applyOne(op)
		if outcome.Status == StatusSuccess {
			report.Successful = append(report.Successful, outcome)
		} else {
			report.Failed = append(report.Failed, outcome)
		}
	}
	return report
}

func applyOne(op parser.FileOperation) Outcome {
	switch op.Kind {
	case parser.OpCreate:
		return applyCreate(op)
	default:
		return applyReplace(op)
	}
}

func applyCreate(op parser.FileOperation) Outcome {
	if dir := filepath.Dir(op.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return failed(op, fmt.Sprintf("creating parent directories: %v", err))
		}
	}
	content := normalizeNewlines(op.Content)
	if err := os.WriteFile(op.Path, []byte(content), 0o644); err != nil {
		return failed(op, fmt.Sprintf("writing file: %v", err))
	}
	return Outcome{Op: op, Status: StatusSuccess}
}

func applyReplace(op parser.FileOperation) Outcome {
	data, err := os.ReadFile(op.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return failed(op, "file does not exist")
		}
		return failed(op, fmt.Sprintf("reading file: %v", err))
	}

	out, strategy, err := Replace(string(data), op.OldContent, op.NewContent)
	if err != nil {
		outcome := failed(op, err.Error())
		var noMatch *NoMatchError
		if errors.As(err, &noMatch) {
			outcome.NoMatch = noMatch
		}
		return outcome
	}

	if err := writeFilePreserveMode(op.Path, []byte(out)); err != nil {
		return failed(op, fmt.Sprintf("writing file: %v", err))
	}
	return Outcome{Op: op, Status: StatusSuccess, Strategy: strategy}
}

func failed(op parser.FileOperation, reason string) Outcome {
	return Outcome{Op: op, Status: StatusFailed, Reason: reason}
}

func writeFilePreserveMode(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if err := os.WriteFile(path, data, mode); err != nil {
		return err
	}
	return os.Chmod(path, mode)
}

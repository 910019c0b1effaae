package app

import (
	"bytes"
	"context"
	"io"
	"os/exec"
)

// Runner executes confirmed terminal commands through a login shell.
type Runner struct {
	Logger *Logger
	Dir    string
}

type CommandResult struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
}

func NewRunner(logger *Logger, dir string) *Runner {
	return &Runner{Logger: logger, Dir: dir}
}

// Capture runs the command, mirroring its output to out while keeping a copy
// for the conversation. A non-zero exit is a result, not an error; err is
// only set when the command could not be started.
func (r *Runner) Capture(ctx context.Context, command string, out io.Writer) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, "bash", "-lc", command)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	if out != nil {
		cmd.Stdout = io.MultiWriter(out, &stdout)
		cmd.Stderr = io.MultiWriter(out, &stderr)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	result := CommandResult{Command: command}
	err := cmd.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			err = nil
		} else {
			result.ExitCode = -1
		}
	}
	if r.Logger != nil {
		r.Logger.Info("command finished", map[string]any{
			"command": command,
			"exit":    result.ExitCode,
		})
	}
	return result, err
}

package app

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Logger writes one JSON object per line. Log output goes to a side channel
// (usually a file), never to the interactive terminal.
type Logger struct {
	out io.Writer
}

type LogEvent struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

func NewLogger(out io.Writer) *Logger {
	return &Logger{out: out}
}

// NewFileLogger appends to a log file under the user cache directory.
// Failing that it logs to stderr.
func NewFileLogger() *Logger {
	base, err := os.UserCacheDir()
	if err != nil {
		return NewLogger(os.Stderr)
	}
	dir := filepath.Join(base, "codagent")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NewLogger(os.Stderr)
	}
	file, err := os.OpenFile(filepath.Join(dir, "codagent.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return NewLogger(os.Stderr)
	}
	return NewLogger(file)
}

func (l *Logger) Info(message string, fields map[string]any) {
	l.write("info", message, fields)
}

func (l *Logger) Warn(message string, fields map[string]any) {
	l.write("warn", message, fields)
}

func (l *Logger) Error(message string, fields map[string]any) {
	l.write("error", message, fields)
}

func (l *Logger) write(level, message string, fields map[string]any) {
	evt := LogEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Message:   message,
		Fields:    fields,
	}
	payload, _ := json.Marshal(evt)
	payload = append(payload, '\n')
	_, _ = l.out.Write(payload)
}

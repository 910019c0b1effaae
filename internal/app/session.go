package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"

	"codagent/internal/parser"
	"codagent/internal/patch"
	"codagent/internal/ui"
)

const (
	// Continuation segments per turn before giving up on a missing [END].
	maxContinuations = 10
	// Replace-retry solicitations allowed over the whole session.
	maxRetryAttempts = 3
	// Command output included in the conversation is capped at this size.
	maxResultChars = 4000
)

// Session drives the conversation: it reads user input, streams model
// segments until a complete turn, then previews and applies the commands
// and file operations the turn requested.
type Session struct {
	ID     string
	Config Config
	Gen    Generator
	Runner *Runner
	Logger *Logger
	Theme  ui.Theme
	Files  *FileHistory
	Inputs *InputHistory
	Dir    string

	// ReadInput is swappable so tests can feed input without a terminal.
	ReadInput func(prompt string, history []string) (string, error)

	history       []Entry
	retryAttempts int

	in  *bufio.Reader
	out io.Writer
}

func NewSession(cfg Config, gen Generator, logger *Logger, dir string, in io.Reader, out io.Writer) *Session {
	theme := ui.DefaultTheme()
	s := &Session{
		ID:     uuid.NewString(),
		Config: cfg,
		Gen:    gen,
		Runner: NewRunner(logger, dir),
		Logger: logger,
		Theme:  theme,
		Files:  NewFileHistory(WorkspaceFiles(dir, cfg.ContextFiles)),
		Inputs: OpenInputHistory(dir),
		Dir:    dir,
		in:     bufio.NewReader(in),
		out:    out,
	}
	s.ReadInput = theme.ReadLine

	// A returning session reminds the model what was last asked here, so
	// follow-up requests like "now do the same for X" keep working.
	if lines := s.Inputs.Lines(); len(lines) > 0 {
		last := lines[len(lines)-1]
		s.history = append(s.history,
			Entry{Role: RoleUser, Content: "In the previous session I asked: " + last},
			Entry{Role: RoleAssistant, Content: "Understood. Ready to continue.\n[END]"},
		)
	}
	return s
}

// History returns the conversation so far. Exposed for tests.
func (s *Session) History() []Entry {
	return s.history
}

// Run is the interactive loop. It returns when the user exits or input is
// exhausted; a failed turn is reported and the loop continues.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, s.Theme.Title.Render("codagent")+" "+s.Theme.Muted.Render("type a request, @file to include a file, exit to quit"))
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := s.ReadInput("> ", s.Inputs.Lines())
		if errors.Is(err, ui.ErrInputAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		s.Inputs.Append(line)
		s.runTurnSafely(ctx, line)
	}
}

func (s *Session) runTurnSafely(ctx context.Context, input string) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("turn panicked", map[string]any{"session": s.ID, "panic": fmt.Sprint(r), "stack": string(debug.Stack())})
			s.history = append(s.history, Entry{Role: RoleSystem, Content: fmt.Sprintf("The previous turn was aborted by an internal error: %v", r)})
			fmt.Fprintln(s.out, s.Theme.Error.Render(fmt.Sprintf("internal error: %v", r)))
		}
	}()
	if err := s.RunTurn(ctx, input); err != nil {
		fmt.Fprintln(s.out, s.Theme.Error.Render(err.Error()))
	}
}

// RunTurn handles one user request end to end.
func (s *Session) RunTurn(ctx context.Context, input string) error {
	expanded := ExpandMentions(input, s.Dir, s.Config.ContextFiles)
	if ws := s.Files.Workspace(); len(ws) > 0 {
		expanded += "\n\nFiles available in the workspace:\n" + strings.Join(ws, "\n")
	}
	if summary := s.Files.Summary(); summary != "" {
		expanded += "\n\n" + summary
		touched := append(s.Files.Created(), s.Files.Modified()...)
		if fc := FileContext(s.Dir, touched); fc != "" {
			expanded += "\n\n" + fc
		}
	}
	s.history = append(s.history, Entry{Role: RoleUser, Content: expanded})

	full, err := s.generate(ctx)
	if err != nil {
		return err
	}
	s.postProcess(ctx, full)
	return nil
}

// generate streams segments until one ends with the turn marker, feeding the
// accumulated conversation back for each continuation. A stream error ends
// the turn; partial text stays in the history so the model sees what it
// already said.
func (s *Session) generate(ctx context.Context) (string, error) {
	var segments []string
	for i := 0; ; i++ {
		prompt := BuildPrompt(SystemPrompt, s.history, s.Config.HistoryLimit)
		printer := ui.NewStreamPrinter(s.out)
		text, err := s.Gen.Stream(ctx, prompt, printer.Write)
		printer.Flush()
		fmt.Fprintln(s.out)
		if err != nil {
			if text != "" {
				s.history = append(s.history, Entry{Role: RoleAssistant, Content: text})
			}
			s.history = append(s.history, Entry{Role: RoleSystem, Content: "The model stream was interrupted: " + err.Error()})
			s.Logger.Error("stream failed", map[string]any{"session": s.ID, "error": err.Error()})
			return "", err
		}
		s.history = append(s.history, Entry{Role: RoleAssistant, Content: text})

		body, ended := parser.StripEnd(text)
		segments = append(segments, body)
		if ended {
			break
		}
		if i+1 >= maxContinuations {
			s.Logger.Warn("turn never ended, giving up on continuation", map[string]any{"session": s.ID, "segments": len(segments)})
			break
		}
		s.history = append(s.history, Entry{Role: RoleUser, Content: "CONTINUE."})
	}
	// Segments are contiguous model output; a continuation boundary can
	// fall mid-line or even mid-marker, so no separator is inserted.
	return strings.Join(segments, ""), nil
}

// postProcess runs the turn's requested actions: commands first, then file
// operations, each behind its own confirmation.
func (s *Session) postProcess(ctx context.Context, full string) {
	s.runCommands(ctx, parser.Commands(full))

	ops, warnings := parser.Operations(full)
	for _, w := range warnings {
		fmt.Fprintln(s.out, s.Theme.Warn.Render("warning: "+w))
		s.Logger.Warn("malformed operation skipped", map[string]any{"session": s.ID, "detail": w})
	}
	if len(ops) == 0 {
		return
	}
	fmt.Fprintln(s.out, s.Theme.RenderOperations(ops))
	if !s.Theme.Confirm(s.in, s.out, "Apply these file changes?") {
		s.history = append(s.history, Entry{Role: RoleSystem, Content: "The user declined the file changes; none were applied."})
		return
	}
	s.applyOps(ctx, ops)
}

func (s *Session) runCommands(ctx context.Context, cmds []string) {
	if len(cmds) == 0 {
		return
	}
	fmt.Fprintln(s.out, s.Theme.RenderCommands(cmds))
	for _, cmd := range cmds {
		if !s.Theme.Confirm(s.in, s.out, fmt.Sprintf("Run %q?", cmd)) {
			s.history = append(s.history, Entry{Role: RoleSystem, Content: fmt.Sprintf("The user declined to run: %s", cmd)})
			continue
		}
		res, err := s.Runner.Capture(ctx, cmd, s.out)
		if err != nil {
			fmt.Fprintln(s.out, s.Theme.Error.Render(err.Error()))
			s.history = append(s.history, Entry{Role: RoleSystem, Content: fmt.Sprintf("Command could not be started: %s (%v)", cmd, err)})
			continue
		}
		s.history = append(s.history, Entry{Role: RoleSystem, Content: formatCommandResult(res)})
	}
}

// applyOps applies already-confirmed operations and solicits corrections
// for replaces whose old content was not found.
func (s *Session) applyOps(ctx context.Context, ops []parser.FileOperation) {
	report := patch.Apply(s.resolve(ops))
	fmt.Fprintln(s.out, s.Theme.RenderOutcomes(report))

	for _, o := range report.Successful {
		rel := s.relPath(o.Op.Path)
		if o.Op.Kind == parser.OpCreate {
			s.Files.RecordCreated(rel)
		} else {
			s.Files.RecordModified(rel)
		}
	}
	s.history = append(s.history, Entry{Role: RoleSystem, Content: formatReport(report, s.Dir)})

	failed := s.reverify(matchFailures(report))
	if len(failed) == 0 {
		return
	}
	for _, o := range failed {
		if o.NoMatch != nil {
			fmt.Fprintln(s.out, s.Theme.RenderMatchFailure(s.relPath(o.Op.Path), o.NoMatch))
		}
	}
	s.retryFailed(ctx, failed)
}

// reverify retries each failed replace once against current file content.
// A later operation in the same batch may have rewritten the file, making
// the old content match after all. Returns the failures that remain, with
// fresh match diagnostics.
func (s *Session) reverify(failed []patch.Outcome) []patch.Outcome {
	var still []patch.Outcome
	for _, o := range failed {
		second := patch.Apply([]parser.FileOperation{o.Op})
		if len(second.Successful) > 0 {
			rel := s.relPath(o.Op.Path)
			s.Files.RecordModified(rel)
			s.history = append(s.history, Entry{Role: RoleSystem, Content: fmt.Sprintf("The edit to %s applied after other changes landed.", rel)})
			continue
		}
		still = append(still, second.Failed[0])
	}
	return still
}

// retryFailed asks the model for corrected replace blocks. The corrected
// operations apply without another confirmation; the user already approved
// edits to these files this turn.
func (s *Session) retryFailed(ctx context.Context, failed []patch.Outcome) {
	if s.retryAttempts >= maxRetryAttempts {
		fmt.Fprintln(s.out, s.Theme.Warn.Render("giving up on the failed edits, retry limit reached"))
		s.history = append(s.history, Entry{Role: RoleSystem, Content: "The failed edits were abandoned after repeated attempts."})
		return
	}
	s.retryAttempts++
	s.Logger.Info("soliciting corrected edits", map[string]any{"session": s.ID, "attempt": s.retryAttempts, "failed": len(failed)})

	s.history = append(s.history, Entry{Role: RoleUser, Content: s.retryPrompt(failed)})
	full, err := s.generate(ctx)
	if err != nil {
		return
	}
	ops, warnings := parser.Operations(full)
	for _, w := range warnings {
		fmt.Fprintln(s.out, s.Theme.Warn.Render("warning: "+w))
	}
	if len(ops) == 0 {
		s.history = append(s.history, Entry{Role: RoleSystem, Content: "The correction reply contained no file operations."})
		return
	}
	fmt.Fprintln(s.out, s.Theme.RenderOperations(ops))
	s.applyOps(ctx, ops)
}

func (s *Session) retryPrompt(failed []patch.Outcome) string {
	var b strings.Builder
	b.WriteString("Some edits could not be applied because the old content was not found in the file.\n")
	b.WriteString("For each file below, send a corrected [REPLACE=...] block, copying the existing lines exactly as shown.\n")
	for _, o := range failed {
		rel := s.relPath(o.Op.Path)
		fmt.Fprintf(&b, "\nFile: %s\nYou asked to replace:\n%s\n", rel, o.Op.OldContent)
		if o.NoMatch != nil {
			fmt.Fprintf(&b, "Current content of %s:\n%s\n", rel, NumberLines(o.NoMatch.FileText))
		}
	}
	b.WriteString("\nFinish with [END].")
	return b.String()
}

// resolve rebases relative operation paths onto the session directory.
func (s *Session) resolve(ops []parser.FileOperation) []parser.FileOperation {
	out := make([]parser.FileOperation, len(ops))
	for i, op := range ops {
		if !filepath.IsAbs(op.Path) {
			op.Path = filepath.Join(s.Dir, op.Path)
		}
		out[i] = op
	}
	return out
}

func (s *Session) relPath(path string) string {
	rel, err := filepath.Rel(s.Dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// matchFailures picks the failed replaces worth re-soliciting: those where
// the file exists but the old content was not found.
func matchFailures(report patch.Report) []patch.Outcome {
	var out []patch.Outcome
	for _, o := range report.Failed {
		if o.Op.Kind == parser.OpReplace && o.NoMatch != nil {
			out = append(out, o)
		}
	}
	return out
}

func formatCommandResult(res CommandResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Command %q exited with code %d.", res.Command, res.ExitCode)
	if out := strings.TrimSpace(res.Stdout); out != "" {
		fmt.Fprintf(&b, "\nstdout:\n%s", truncateForPrompt(out))
	}
	if errOut := strings.TrimSpace(res.Stderr); errOut != "" {
		fmt.Fprintf(&b, "\nstderr:\n%s", truncateForPrompt(errOut))
	}
	return b.String()
}

func formatReport(report patch.Report, dir string) string {
	var b strings.Builder
	b.WriteString("File operation results:\n")
	for _, o := range report.Successful {
		if o.Op.Kind == parser.OpReplace {
			fmt.Fprintf(&b, "  ok: replace %s (matched %s)\n", displayPath(dir, o.Op.Path), o.Strategy)
		} else {
			fmt.Fprintf(&b, "  ok: create %s\n", displayPath(dir, o.Op.Path))
		}
	}
	for _, o := range report.Failed {
		fmt.Fprintf(&b, "  failed: %s %s: %s\n", o.Op.Kind, displayPath(dir, o.Op.Path), o.Reason)
	}
	return strings.TrimRight(b.String(), "\n")
}

func displayPath(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func truncateForPrompt(s string) string {
	if len(s) <= maxResultChars {
		return s
	}
	return s[:maxResultChars] + "\n... (output truncated)"
}

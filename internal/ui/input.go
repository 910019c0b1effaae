package ui

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrInputAborted is returned when the operator cancels the prompt.
var ErrInputAborted = errors.New("input aborted")

// ReadLine runs a one-shot prompt with history navigation (up/down) and
// @-mention path completion (tab). The surrounding session loop stays
// synchronous: this blocks until the operator submits or aborts.
func (t Theme) ReadLine(prompt string, history []string) (string, error) {
	ti := textinput.New()
	ti.Prompt = t.Accent.Render(prompt)
	ti.Placeholder = "type a request, @file to attach, 'exit' to quit"
	ti.Focus()
	ti.ShowSuggestions = true
	ti.SetSuggestions(history)

	m := inputModel{text: ti, history: history, histIdx: len(history)}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", err
	}
	result := final.(inputModel)
	if result.aborted {
		return "", ErrInputAborted
	}
	return result.text.Value(), nil
}

type inputModel struct {
	text    textinput.Model
	history []string
	histIdx int
	aborted bool
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyUp:
			if m.histIdx > 0 {
				m.histIdx--
				m.text.SetValue(m.history[m.histIdx])
				m.text.CursorEnd()
			}
			return m, nil
		case tea.KeyDown:
			if m.histIdx < len(m.history) {
				m.histIdx++
				if m.histIdx == len(m.history) {
					m.text.SetValue("")
				} else {
					m.text.SetValue(m.history[m.histIdx])
					m.text.CursorEnd()
				}
			}
			return m, nil
		case tea.KeyTab:
			m.text.SetValue(completeMention(m.text.Value()))
			m.text.CursorEnd()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.text, cmd = m.text.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	return m.text.View()
}

// completeMention extends a trailing @path token to the longest unambiguous
// filesystem match.
func completeMention(value string) string {
	at := strings.LastIndexByte(value, '@')
	if at < 0 || strings.ContainsAny(value[at+1:], " \t") {
		return value
	}
	prefix := value[at+1:]
	matches, err := filepath.Glob(prefix + "*")
	if err != nil || len(matches) == 0 {
		return value
	}
	completed := matches[0]
	for _, m := range matches[1:] {
		completed = commonPrefix(completed, m)
	}
	if completed == "" {
		return value
	}
	return value[:at+1] + completed
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// Package ui renders previews, diffs and streamed model output, and reads
// operator input. All styling goes through lipgloss so the rest of the
// program never touches escape codes.
package ui

import "github.com/charmbracelet/lipgloss"

const (
	colorFg      = "#d8dee9"
	colorMuted   = "#6b7089"
	colorAccent  = "#7aa2f7"
	colorAccent2 = "#bb9af7"
	colorSuccess = "#9ece6a"
	colorWarn    = "#e0af68"
	colorError   = "#f7768e"
)

type Theme struct {
	Text    lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Title   lipgloss.Style
	Success lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style

	Added   lipgloss.Style
	Removed lipgloss.Style
	Context lipgloss.Style

	Box lipgloss.Style
}

func DefaultTheme() Theme {
	return Theme{
		Text:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorFg)),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent)),
		Title:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent2)).Bold(true),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(colorSuccess)),
		Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorWarn)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorError)),

		Added:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorSuccess)),
		Removed: lipgloss.NewStyle().Foreground(lipgloss.Color(colorError)),
		Context: lipgloss.NewStyle().Foreground(lipgloss.Color(colorFg)),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorAccent)).
			Padding(0, 1),
	}
}

// Box renders content inside a rounded, titled border.
func (t Theme) RenderBox(title, content string) string {
	body := t.Title.Render(title) + "\n" + content
	return t.Box.Render(body)
}

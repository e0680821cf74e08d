package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorSecondary = lipgloss.Color("#10B981")
	colorAccent    = lipgloss.Color("#F59E0B")
	colorError     = lipgloss.Color("#EF4444")
	colorMuted     = lipgloss.Color("#6B7280")
	colorFg        = lipgloss.Color("#F9FAFB")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	// Incoming texts typed on the simulated phone
	IncomingStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	// Replies from the platform
	OutgoingStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			PaddingLeft(4)

	HandlerStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	SystemMessageStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Italic(true)

	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(colorError)

	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(colorFg).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	FocusedInputStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(colorPrimary).
				Padding(0, 1)
)

// RenderError renders an error line.
func RenderError(err string) string {
	return ErrorMessageStyle.Render("error: " + err)
}

// RenderHelp renders the key help line.
func RenderHelp(help string) string {
	return HelpStyle.Render(help)
}

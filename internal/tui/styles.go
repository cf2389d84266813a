package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	primaryColor = lipgloss.Color("#D97706") // amber
	mutedColor   = lipgloss.Color("#888888") // Gray
	textColor    = lipgloss.Color("#FFFFFF") // White
	hotColor     = lipgloss.Color("#A40000")
	okColor      = lipgloss.Color("#00AA00")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	barStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	meterStyle = lipgloss.NewStyle().
			Foreground(okColor)

	clipStyle = lipgloss.NewStyle().
			Foreground(hotColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1).
			Width(viewWidth)
)

package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#7C3AED")
	recordColor  = lipgloss.Color("#F38BA8")
	textColor    = lipgloss.Color("#CDD6F4")
	dimTextColor = lipgloss.Color("#6C7086")
	playingColor = lipgloss.Color("#A6E3A1")

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimTextColor).
			Padding(0, 2)

	activeButtonStyle = buttonStyle.
				Foreground(playingColor).
				BorderForeground(playingColor).
				Bold(true)

	recordingButtonStyle = buttonStyle.
				Foreground(recordColor).
				BorderForeground(recordColor).
				Bold(true)

	disabledButtonStyle = buttonStyle.
				Foreground(dimTextColor).
				Faint(true)

	clockStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(dimTextColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(recordColor)
)

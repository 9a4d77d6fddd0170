package tui

import "github.com/charmbracelet/lipgloss"

var (
	userBubbleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1A2E")).
			Background(lipgloss.Color("#A8C7FA")).
			Padding(0, 1).
			MarginLeft(4)

	errorBubbleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F28B82")).
				Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8C7FA"))
)

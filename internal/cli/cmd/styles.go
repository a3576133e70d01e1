package cmd

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Bold(true).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	okStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	bubbleStyle = lipgloss.NewStyle().
			Padding(0, 1)

	userStyle = bubbleStyle.
			Background(lipgloss.Color("25")).
			Foreground(lipgloss.Color("15"))

	assistantStyle = bubbleStyle.
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252"))

	systemStyle = bubbleStyle.
			Background(lipgloss.Color("28")).
			Foreground(lipgloss.Color("15"))

	errorStyle = bubbleStyle.
			Background(lipgloss.Color("124")).
			Foreground(lipgloss.Color("15"))

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	followUpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213")).
			Italic(true)

	composerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	composerDisabledStyle = composerStyle.
				BorderForeground(lipgloss.Color("240"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	uploadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

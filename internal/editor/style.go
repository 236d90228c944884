package editor

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#60A5FA")
	mutedColor   = lipgloss.Color("#6B7280")
	borderColor  = lipgloss.Color("#374151")
	selectColor  = lipgloss.Color("#1E3A8A")

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)

	editorStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(borderColor)

	selectedStyle = lipgloss.NewStyle().
			Background(selectColor).
			Bold(true)

	kindStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(9)
)

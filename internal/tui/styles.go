package tui

import "github.com/charmbracelet/lipgloss"

const sidebarWidth = 30

var (
	accent    = lipgloss.Color("#5FAFD7")
	dim       = lipgloss.Color("#6C6C6C")
	danger    = lipgloss.Color("#FF005F")
	userColor = lipgloss.Color("#D7AF5F")
	botColor  = lipgloss.Color("#AF87FF")

	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle     = lipgloss.NewStyle().Foreground(dim).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(danger).Bold(true)
	userStyle     = lipgloss.NewStyle().Foreground(userColor).Bold(true)
	botStyle      = lipgloss.NewStyle().Foreground(botColor).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	activeStyle   = lipgloss.NewStyle().Underline(true)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(dim)
	focusedPane   = paneStyle.BorderForeground(accent)
	loginBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(1, 2)
)

package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("63")
	muted  = lipgloss.Color("244")
	danger = lipgloss.Color("196")
	green  = lipgloss.Color("34")
	gold   = lipgloss.Color("220")

	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(accent).Padding(0, 1)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1)
	overlayStyle  = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(accent).Padding(0, 1)
	titleStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(muted)
	errorStyle    = lipgloss.NewStyle().Foreground(danger).Bold(true)
	priceStyle    = lipgloss.NewStyle().Foreground(green).Bold(true)
	badgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(danger).Padding(0, 1)
	starStyle     = lipgloss.NewStyle().Foreground(gold)
	cursorStyle   = lipgloss.NewStyle().Foreground(accent).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(accent)
	skeletonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

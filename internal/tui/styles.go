package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#D0D0D0"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))

	labelStyle        = textStyle.Bold(true)
	focusedLabelStyle = accentStyle.Bold(true)
	optionStyle       = mutedStyle
	cursorOptionStyle = accentStyle
	chosenOptionStyle = titleStyle

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	tileStyle = lipgloss.NewStyle().
			Width(16).
			Align(lipgloss.Center).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	tileCursorStyle   = tileStyle.BorderForeground(lipgloss.Color("#C89A3A"))
	tileSelectedStyle = tileStyle.BorderForeground(lipgloss.Color("#52C41A")).Bold(true)
	modalStyle        = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#C89A3A")).
				Padding(1, 2)
)

package ui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	subtleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boardNameStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
)

// Header formats text as a heading
func Header(text string) string {
	return headerStyle.Render(text)
}

// Success formats a success message
func Success(text string) string {
	return successStyle.Render(text)
}

// Warning formats a warning message
func Warning(text string) string {
	return warningStyle.Render(text)
}

// Error formats an error message
func Error(text string) string {
	return errorStyle.Render(text)
}

// Info formats an informational message
func Info(text string) string {
	return infoStyle.Render(text)
}

// Subtle formats text to be less prominent
func Subtle(text string) string {
	return subtleStyle.Render(text)
}

// BoardName formats a board name
func BoardName(text string) string {
	return boardNameStyle.Render(text)
}

package inbox

import "github.com/charmbracelet/lipgloss"

// Theme holds the lipgloss styles used by the inbox views.
type Theme struct {
	Title      lipgloss.Style
	Selected   lipgloss.Style
	Normal     lipgloss.Style
	Dim        lipgloss.Style
	Permission lipgloss.Style
	Command    lipgloss.Style
	Notice     lipgloss.Style
	Error      lipgloss.Style
	Help       lipgloss.Style
}

// DefaultTheme matches the palette of the status table.
var DefaultTheme = Theme{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#8E4EC6")).
		Padding(0, 1),
	Selected: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#5A3E8E")),
	Normal:     lipgloss.NewStyle(),
	Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Permission: lipgloss.NewStyle().Foreground(lipgloss.Color("#CD5C5C")),
	Command: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#CD5C5C")).
		Padding(0, 1),
	Notice: lipgloss.NewStyle().Foreground(lipgloss.Color("#2E8B57")),
	Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("#CD5C5C")),
	Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
}

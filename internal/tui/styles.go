package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/ssdp/internal/version"
)

// AppName is shown in the monitor header
const AppName = "SSDP MONITOR"

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 72  // Minimum supported terminal width
	MaxContentWidth  = 120 // Maximum content width before capping
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF0000") // Red
	TextColor      = lipgloss.Color("#FFFFFF") // White
	SubtleColor    = lipgloss.Color("#626262") // Gray
	BorderColor    = lipgloss.Color("#7D56F4") // Purple (same as primary)
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	StatusStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	CountStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)
)

// clampWidth keeps width within the supported range
func clampWidth(width int) int {
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// RenderApplicationContainer wraps content with a header and footer inside a
// rounded border
func RenderApplicationContainer(content, footerText string, terminalWidth int) string {
	width := clampWidth(terminalWidth)

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		TitleStyle.Render(AppName),
		"  ",
		SubtitleStyle.Render(AppVersion()),
	)

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(width-4).
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(width-4).
		Padding(0, 1)

	inner := lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(header),
		lipgloss.NewStyle().Width(width-4).Render(content),
		footerStyle.Render(footerText),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Render(inner)
}

package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared by the progress view and the summary table. Each bucket
// keeps the same color in both places.
var (
	ColorInk       = lipgloss.Color("#E5E9F0")
	ColorDim       = lipgloss.Color("#7A8291")
	ColorAccent    = lipgloss.Color("#88C0D0")
	ColorAccentAlt = lipgloss.Color("#81A1C1")
	ColorSuccess   = lipgloss.Color("#A3BE8C")
	ColorWarn      = lipgloss.Color("#EBCB8B")
	ColorError     = lipgloss.Color("#BF616A")
)

// OutcomeColor is the palette entry for a routing outcome.
func OutcomeColor(outcome string) lipgloss.Color {
	switch outcome {
	case "clean":
		return ColorSuccess
	case "code":
		return ColorAccent
	case "uncertain":
		return ColorWarn
	case "error":
		return ColorError
	default:
		return ColorInk
	}
}

package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Never use inline lipgloss.Color literals elsewhere.
var (
	// ColorCyan is used for identifiable nouns: package names, targets, paths.
	ColorCyan = lipgloss.Color("14")

	colorGreen = lipgloss.Color("82")

	// ColorYellow is used for the "unchanged" status when it needs attention.
	ColorYellow = lipgloss.Color("220")

	colorRed     = lipgloss.Color("196")
	colorBoldRed = lipgloss.Color("204")

	colorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns (package names, targets, paths).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleDim styles structural chrome (scope prefixes, separators).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// File status values reported per emitted manifest.
const (
	StatusWritten   = "written"
	StatusUnchanged = "unchanged"
	StatusSkipped   = "skipped"
	StatusValid     = "valid"
	statusFailed    = "failed"
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case StatusWritten, StatusValid:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case StatusSkipped:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusUnchanged:
		return lipgloss.NewStyle().Faint(true)
	case statusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(colorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minPathColumnWidth keeps status words aligned across lines.
const minPathColumnWidth = 48

// FormatFileLine renders "f:<path>  <status>" with a right-aligned,
// color-coded status.
func FormatFileLine(path, status string) string {
	padding := minPathColumnWidth - len(path)
	if padding < 2 {
		padding = 2
	}
	return StyleDim.Render("f:") + StyleNoun.Render(path) + strings.Repeat(" ", padding) + statusStyle(status).Render(status)
}

// FormatFailure renders an error line in the failed style.
func FormatFailure(msg string) string {
	return lipgloss.NewStyle().Foreground(colorRed).Render("✘") + " " + msg
}

// FormatCheckmark renders a green checkmark with a message.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(colorGreenCheck).Render("✔")
	return check + " " + msg
}

// vetLabelWidth aligns the detail column of vet checks.
const vetLabelWidth = 34

// FormatVetCheck renders "✔ label  detail" with the detail column aligned.
func FormatVetCheck(label, detail string) string {
	line := FormatCheckmark(label)
	if detail == "" {
		return line
	}
	padding := vetLabelWidth - len(label)
	if padding < 2 {
		padding = 2
	}
	return line + strings.Repeat(" ", padding) + StyleDim.Render(detail)
}

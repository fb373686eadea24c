package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sitemaster/dpr/internal/domain"
)

// Site palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusStyle returns the color used for a status everywhere it is shown.
func StatusStyle(s domain.Status) lipgloss.Style {
	switch s {
	case domain.StatusInProgress:
		return StyleBlue
	case domain.StatusCompleted:
		return StyleGreen
	case domain.StatusWorkStopped:
		return StyleRed
	case domain.StatusIdle:
		return StyleYellow
	default:
		return StyleDim
	}
}

// StatusPill renders the status chip, e.g. "● IN PROGRESS".
func StatusPill(s domain.Status) string {
	glyph := "●"
	switch s {
	case domain.StatusCompleted:
		glyph = "✔"
	case domain.StatusPending:
		glyph = "○"
	case domain.StatusWorkStopped:
		glyph = "■"
	}
	return StatusStyle(s).Render(glyph + " " + s.Label())
}

// Header renders an upper-case section header with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}

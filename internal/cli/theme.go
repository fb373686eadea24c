package cli

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sitemaster/dpr/internal/cli/formatter"
)

// dprHuhTheme matches huh prompts to the formatter palette.
func dprHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	accent := lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	fg := lipgloss.NewStyle().Foreground(formatter.ColorFg)
	dim := lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Focused.Title = accent.Bold(true)
	t.Focused.Description = dim
	t.Focused.SelectSelector = accent
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = fg
	t.Focused.TextInput.Cursor = accent
	t.Focused.TextInput.Prompt = accent
	t.Focused.TextInput.Text = fg
	t.Focused.TextInput.Placeholder = dim

	t.Blurred.Title = dim
	t.Blurred.SelectSelector = dim
	t.Blurred.SelectedOption = dim
	t.Blurred.UnselectedOption = dim
	t.Blurred.TextInput.Prompt = dim
	t.Blurred.TextInput.Text = dim

	return t
}

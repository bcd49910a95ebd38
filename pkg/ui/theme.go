// Package ui provides the terminal view layer for flattree: a virtualized
// tree list component over the core engine, rendering only the window of
// rows that fits the screen and animating rows in and out on
// expand/collapse.
package ui

import "github.com/charmbracelet/lipgloss"

// Theme bundles the adaptive colors and styles the tree list renders
// with. All styles are created through the Renderer so output degrades
// correctly on dumb terminals and in tests.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor // cursor, emphasis
	Secondary lipgloss.AdaptiveColor // expand/collapse indicators
	Muted     lipgloss.AdaptiveColor // tree guides, de-emphasized text
	Highlight lipgloss.AdaptiveColor // node keys

	Selected lipgloss.Style // applied to the cursor row
	Entering lipgloss.Style // applied to rows animating in
	Leaving  lipgloss.Style // applied to rows animating out
}

// DefaultTheme returns the standard adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	primary := lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#A78BFA"}
	muted := lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#4B5563"}
	return Theme{
		Renderer:  r,
		Primary:   primary,
		Secondary: lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"},
		Muted:     muted,
		Highlight: lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"},
		Selected: r.NewStyle().
			Bold(true).
			Foreground(primary).
			Reverse(true),
		Entering: r.NewStyle().Faint(true),
		Leaving:  r.NewStyle().Faint(true).Strikethrough(true),
	}
}

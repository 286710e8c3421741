package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	header    lipgloss.Style
	tab       lipgloss.Style
	tabActive lipgloss.Style
	body      lipgloss.Style
	result    lipgloss.Style
	thinking  lipgloss.Style
	status    lipgloss.Style
	errorLine lipgloss.Style
	footer    lipgloss.Style
}

func newStyles() styles {
	return styles{
		header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AD8CFF")).
			Bold(true).
			Padding(0, 1),

		tab: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#777777")).
			Padding(0, 1),

		tabActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00E6B8")).
			Bold(true).
			Underline(true).
			Padding(0, 1),

		body: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#AD8CFF")).
			Padding(0, 1),

		result: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("#555555")).
			Padding(0, 1),

		thinking: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00E6B8")).
			Padding(0, 1),

		status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3DDC97")).
			Padding(0, 1),

		errorLine: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5C5C")).
			Bold(true).
			Padding(0, 1),

		footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#777777")).
			Padding(0, 1),
	}
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const maxResultLines = 8

func (m *Model) View() string {
	parts := []string{m.viewHeader(), m.style.body.Render(m.viewport.View())}
	if r := m.viewResult(); r != "" {
		parts = append(parts, r)
	}
	parts = append(parts, m.viewFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) viewHeader() string {
	tabs := make([]string, 0, 3)
	for i, kind := range []string{"JSON", "Markdown", "Plain"} {
		label := fmt.Sprintf("%d %s", i+1, kind)
		if strings.EqualFold(string(m.editor.Active()), kind) {
			tabs = append(tabs, m.style.tabActive.Render(label))
		} else {
			tabs = append(tabs, m.style.tab.Render(label))
		}
	}
	title := m.style.header.Render("cue")
	return lipgloss.JoinHorizontal(lipgloss.Top, append([]string{title}, tabs...)...)
}

func (m *Model) viewResult() string {
	if m.busy {
		return m.style.thinking.Render(fmt.Sprintf("%s testing with %s", m.spinner.View(), m.SelectedModel()))
	}
	if m.result == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(m.result, "\n"), "\n")
	if len(lines) > maxResultLines {
		lines = append(lines[:maxResultLines], "…")
	}
	return m.style.result.Render(strings.Join(lines, "\n"))
}

func (m *Model) resultHeight() int {
	if r := m.viewResult(); r != "" {
		return lipgloss.Height(r)
	}
	return 0
}

func (m *Model) viewFooter() string {
	var line string
	switch {
	case m.err != nil:
		line = m.style.errorLine.Render("Error: " + m.err.Error())
	case m.status != "":
		line = m.style.status.Render(m.status)
	}

	model := m.SelectedModel()
	if model == "" {
		model = "none"
	}
	help := m.style.footer.Render(fmt.Sprintf("model: %s | tab: view  c: copy  t: test  m: model  r: refresh  q: quit", model))
	if line == "" {
		return help
	}
	return lipgloss.JoinVertical(lipgloss.Left, line, help)
}

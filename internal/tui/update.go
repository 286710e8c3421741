package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kayz/cue/internal/ai"
	"github.com/kayz/cue/internal/promptbuild"
)

type testResultMsg struct {
	reply string
	err   error
}

type modelsMsg struct {
	models []ai.Model
	err    error
}

var errNoModel = errors.New("no model selected; press r to load models")

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		headerHeight := lipgloss.Height(m.viewHeader())
		footerHeight := lipgloss.Height(m.viewFooter())
		bodyVPadding := m.style.body.GetVerticalFrameSize()
		bodyHPadding := m.style.body.GetHorizontalFrameSize()
		m.viewport.Width = m.width - bodyHPadding
		m.viewport.Height = max(m.height-headerHeight-footerHeight-bodyVPadding-m.resultHeight(), 3)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "tab", "right":
			m.switchView(1)
			return m, nil

		case "shift+tab", "left":
			m.switchView(-1)
			return m, nil

		case "1", "2", "3":
			m.editor.SetActive(promptbuild.ViewKinds[msg.String()[0]-'1'])
			m.refreshContent()
			return m, nil

		case "c":
			m.err = nil
			if err := m.copy(m.editor.ActiveText()); err != nil {
				m.err = err
			} else {
				m.status = fmt.Sprintf("Copied %s view to clipboard", m.editor.Active())
			}
			return m, nil

		case "m":
			if len(m.models) > 0 {
				m.modelIdx = (m.modelIdx + 1) % len(m.models)
				m.status = "Model: " + m.SelectedModel()
			}
			return m, nil

		case "r":
			m.status = "Refreshing models..."
			return m, m.fetchModelsCmd()

		case "t":
			if m.busy {
				m.status = "A test is already running"
				return m, nil
			}
			model := m.SelectedModel()
			if model == "" {
				m.err = errNoModel
				return m, nil
			}
			m.busy = true
			m.err = nil
			m.status = ""
			return m, tea.Batch(m.spinner.Tick, m.testCmd(model))
		}

	case testResultMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			m.result = m.harness.LastResult()
			return m, nil
		}
		m.result = msg.reply
		m.status = "Test completed"
		return m, nil

	case modelsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		current := m.SelectedModel()
		m.models = msg.models
		m.modelIdx = 0
		for i, mod := range m.models {
			if mod.ID == current {
				m.modelIdx = i
			}
		}
		m.status = fmt.Sprintf("Loaded %d models", len(m.models))
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) switchView(step int) {
	kinds := promptbuild.ViewKinds
	idx := 0
	for i, k := range kinds {
		if k == m.editor.Active() {
			idx = i
		}
	}
	idx = (idx + step + len(kinds)) % len(kinds)
	m.editor.SetActive(kinds[idx])
	m.refreshContent()
}

func (m *Model) testCmd(model string) tea.Cmd {
	snap := m.editor.Snapshot()
	req := ai.TestRequest{
		Model:  model,
		Prompt: snap.Views.Get(snap.Active),
		View:   string(snap.Active),
		Digest: ai.Digest(snap.Views.JSON),
	}
	return func() tea.Msg {
		reply, err := m.harness.TestPrompt(m.ctx, req)
		return testResultMsg{reply: reply, err: err}
	}
}

func (m *Model) fetchModelsCmd() tea.Cmd {
	return func() tea.Msg {
		models, err := m.harness.FetchModels(m.ctx)
		return modelsMsg{models: models, err: err}
	}
}

// Package tui is the terminal front end: the three rendered views of the
// current draft in tabs, plus copy and model testing from the keyboard.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kayz/cue/internal/ai"
	"github.com/kayz/cue/internal/promptbuild"
	"github.com/kayz/cue/internal/share"
)

// Model is the bubbletea model. Build it with New.
type Model struct {
	ctx     context.Context
	editor  *promptbuild.Editor
	harness *ai.Harness
	copy    func(string) error

	viewport viewport.Model
	spinner  spinner.Model
	style    styles

	width, height int

	models   []ai.Model
	modelIdx int
	busy     bool
	result   string
	status   string
	err      error
}

// Option configures a Model.
type Option func(*Model)

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) { m.copy = fn }
}

// WithModel preselects a model by id when it is in the harness list.
func WithModel(id string) Option {
	return func(m *Model) {
		for i, mod := range m.models {
			if mod.ID == id {
				m.modelIdx = i
				return
			}
		}
	}
}

func New(ctx context.Context, editor *promptbuild.Editor, harness *ai.Harness, opts ...Option) *Model {
	st := newStyles()

	vp := viewport.New(0, 0)

	s := spinner.New()
	s.Spinner = spinner.Line
	s.Style = st.thinking

	m := &Model{
		ctx:      ctx,
		editor:   editor,
		harness:  harness,
		copy:     share.Clipboard,
		viewport: vp,
		spinner:  s,
		style:    st,
		models:   harness.Models(),
		result:   harness.LastResult(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.refreshContent()
	return m
}

// Run starts a full-screen program and blocks until it exits.
func Run(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx)).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	if len(m.models) == 0 && m.harness.HasCredential(m.ctx) {
		return m.fetchModelsCmd()
	}
	return nil
}

// SelectedModel returns the id of the model a test would use, or "".
func (m *Model) SelectedModel() string {
	if len(m.models) == 0 {
		return ""
	}
	return m.models[m.modelIdx%len(m.models)].ID
}

func (m *Model) refreshContent() {
	m.viewport.SetContent(m.editor.ActiveText())
	m.viewport.GotoTop()
}

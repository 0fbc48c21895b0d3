package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/modload/loader"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	moduleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	stateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	session  *session
	opts     options
	input    textinput.Model
	entries  []*entry
	log      []string
	selected int
	state    modelState
}

// entry is one loaded handle and the outcome of its last require.
type entry struct {
	err    error
	handle *loader.Handle
	result string
}

type modelState int

const (
	stateList modelState = iota
	stateLoad
)

const maxLog = 8

type sessionMsg struct {
	err     error
	session *session
}

type loadedMsg struct {
	err    error
	handle *loader.Handle
}

type requiredMsg struct {
	err    error
	entry  *entry
	result string
}

type globalMsg struct {
	err    error
	module string
	result string
}

func newInteractiveModel(o options) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "lib/util"
	ti.Prompt = "module: "
	ti.Width = 40

	return &interactiveModel{opts: o, input: ti, state: stateList}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.openSession
}

func (m *interactiveModel) openSession() tea.Msg {
	s, err := newSession(context.Background(), m.opts)
	return sessionMsg{session: s, err: err}
}

func (m *interactiveModel) load(module string) tea.Cmd {
	return func() tea.Msg {
		h, err := m.session.registry.Load(context.Background(), module, m.session.opts)
		return loadedMsg{handle: h, err: err}
	}
}

func (m *interactiveModel) require(e *entry) tea.Cmd {
	return func() tea.Msg {
		v, err := m.session.require(context.Background(), e.handle, m.opts.timeout)
		return requiredMsg{entry: e, result: formatValue(v), err: err}
	}
}

func (m *interactiveModel) requireGlobal(module string) tea.Cmd {
	return func() tea.Msg {
		v, err := m.session.registry.RequireGlobal(context.Background(), module)
		return globalMsg{module: module, result: formatValue(v), err: err}
	}
}

func (m *interactiveModel) logf(format string, args ...any) {
	m.log = append(m.log, fmt.Sprintf(format, args...))
	if len(m.log) > maxLog {
		m.log = m.log[len(m.log)-maxLog:]
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateLoad {
			return m.updateInput(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			if m.session != nil {
				m.session.close(context.Background())
			}
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(m.entries)-1 {
				m.selected++
			}

		case "l":
			if m.session != nil {
				m.state = stateLoad
				m.input.SetValue(m.opts.module)
				m.input.Focus()
				return m, textinput.Blink
			}

		case "enter":
			if e := m.current(); e != nil {
				return m, m.require(e)
			}

		case "g":
			if e := m.current(); e != nil {
				return m, m.requireGlobal(e.handle.Module())
			}

		case "r":
			if e := m.current(); e != nil {
				if err := m.session.registry.Release(e.handle); err != nil {
					m.logf("release %s: %v", e.handle, err)
				} else {
					m.logf("released %s", e.handle)
				}
				m.entries = append(m.entries[:m.selected], m.entries[m.selected+1:]...)
				if m.selected >= len(m.entries) && m.selected > 0 {
					m.selected--
				}
			}
		}

	case sessionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.session = msg.session
		if m.opts.module != "" {
			return m, m.load(m.opts.module)
		}

	case loadedMsg:
		if msg.err != nil {
			m.logf("load: %v", msg.err)
			return m, nil
		}
		m.entries = append(m.entries, &entry{handle: msg.handle})
		m.selected = len(m.entries) - 1
		m.logf("loaded %s", msg.handle)

	case requiredMsg:
		msg.entry.result = msg.result
		msg.entry.err = msg.err

	case globalMsg:
		if msg.err != nil {
			m.logf("global %s: %v", msg.module, msg.err)
		} else {
			m.logf("global %s = %s", msg.module, msg.result)
		}
	}

	return m, nil
}

func (m *interactiveModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateList
		m.input.Blur()
		return m, nil
	case "enter":
		module := strings.TrimSpace(m.input.Value())
		m.state = stateList
		m.input.Blur()
		if module == "" {
			return m, nil
		}
		return m, m.load(module)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) current() *entry {
	if m.session == nil || m.selected < 0 || m.selected >= len(m.entries) {
		return nil
	}
	return m.entries[m.selected]
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.session == nil {
		return "Starting..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Module Loader"))
	b.WriteString(" ")
	b.WriteString(m.opts.root)
	b.WriteString(fmt.Sprintf("  live: %d  global: %d\n\n", m.session.registry.Live(), m.session.registry.Globals()))

	if len(m.entries) == 0 {
		b.WriteString("No handles loaded.\n")
	}
	for i, e := range m.entries {
		line := m.formatEntry(e)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.state == stateLoad {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter load • esc back"))
		return b.String()
	}

	if len(m.log) > 0 {
		b.WriteString("\n")
		for _, line := range m.log {
			b.WriteString(helpStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • l load • enter require • g require global • r release • q quit"))
	return b.String()
}

func (m *interactiveModel) formatEntry(e *entry) string {
	line := moduleStyle.Render(e.handle.String()) + " " + stateStyle.Render(e.handle.State().String())
	switch {
	case e.err != nil:
		line += " " + errorStyle.Render(e.err.Error())
	case e.result != "":
		line += " " + resultStyle.Render(e.result)
	}
	return line
}

func runInteractive(o options) error {
	p := tea.NewProgram(newInteractiveModel(o), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

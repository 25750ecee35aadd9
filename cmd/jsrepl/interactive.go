package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/jsbind/binding"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// entry is one evaluated line of the session transcript.
type entry struct {
	input  string
	output string
	threw  bool
}

type replModel struct {
	cfg     *Config
	input   textinput.Model
	log     []entry
	inputs  []string // submitted lines, for history browsing
	histIdx int      // index into inputs while browsing, len(inputs) = live line
	pending string   // live line stashed while browsing history
}

func newReplModel(cfg *Config) *replModel {
	ti := textinput.New()
	ti.Prompt = cfg.REPL.Prompt
	ti.Focus()
	return &replModel{cfg: cfg, input: ti}
}

func (m *replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			return m, tea.Quit

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.eval(line)
			m.input.SetValue("")
			m.histIdx = len(m.inputs)
			return m, nil

		case "up":
			if m.histIdx > 0 {
				if m.histIdx == len(m.inputs) {
					m.pending = m.input.Value()
				}
				m.histIdx--
				m.input.SetValue(m.inputs[m.histIdx])
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.histIdx < len(m.inputs) {
				m.histIdx++
				if m.histIdx == len(m.inputs) {
					m.input.SetValue(m.pending)
				} else {
					m.input.SetValue(m.inputs[m.histIdx])
				}
				m.input.CursorEnd()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// eval runs one line against the initialized binding layer. The engine is
// single-threaded, so evaluation happens inline rather than in a command.
func (m *replModel) eval(line string) {
	r := binding.Eval(line, m.cfg.REPL.Strict)
	defer r.Free()

	e := entry{input: line}
	if r.IsException() {
		e.threw = true
		e.output = "Uncaught " + r.Value().GetString()
	} else if !r.Value().IsUndefined() {
		e.output = r.Value().GetString()
	}

	m.log = append(m.log, e)
	if limit := m.cfg.REPL.History; limit > 0 && len(m.log) > limit {
		m.log = m.log[len(m.log)-limit:]
	}
	m.inputs = append(m.inputs, line)
}

func (m *replModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("jsrepl"))
	b.WriteString("\n\n")

	for _, e := range m.log {
		b.WriteString(inputStyle.Render(m.cfg.REPL.Prompt + e.input))
		b.WriteString("\n")
		if e.output != "" {
			if e.threw {
				b.WriteString(errorStyle.Render(e.output))
			} else {
				b.WriteString(resultStyle.Render(e.output))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ history • enter eval • ctrl+c quit"))
	b.WriteString("\n")

	return b.String()
}

func runInteractive(cfg *Config) error {
	p := tea.NewProgram(newReplModel(cfg))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("repl: %w", err)
	}
	return nil
}

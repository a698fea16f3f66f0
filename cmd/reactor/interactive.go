package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/B3Pay/ic-reactor-go/fields"
)

type interactiveModel struct {
	err      error
	app      *app
	render   renderer
	args     string
	result   string
	errs     []string
	methods  []*fields.Method
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type modelState int

const (
	stateSelectMethod modelState = iota
	stateInputArgs
	stateShowResult
)

type callResultMsg struct {
	err    error
	args   string
	result string
	errs   []string
}

func newInteractiveModel(a *app) *interactiveModel {
	methods := append([]*fields.Method{}, a.service.Methods...)
	sort.SliceStable(methods, func(i, j int) bool { return methods[i].Name < methods[j].Name })
	return &interactiveModel{
		app:     a,
		render:  newRenderer(true),
		methods: methods,
		state:   stateSelectMethod,
	}
}

func runInteractive(a *app) error {
	if len(a.service.Methods) == 0 {
		return fmt.Errorf("%s declares no methods", a.source)
	}
	_, err := tea.NewProgram(newInteractiveModel(a), tea.WithAltScreen()).Run()
	return err
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectMethod && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectMethod && m.selected < len(m.methods)-1 {
				m.selected++
			}

		case "g":
			if m.state == stateSelectMethod {
				return m, m.generateCall
			}

		case "enter":
			switch m.state {
			case stateSelectMethod:
				if err := m.prepareInputs(); err != nil {
					m.err = err
					m.state = stateShowResult
					return m, nil
				}
				if len(m.inputs) == 0 {
					return m, m.call
				}
				m.state = stateInputArgs
				return m, nil

			case stateInputArgs:
				return m, m.call

			case stateShowResult:
				m.reset()
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectMethod
				m.inputs = nil
			case stateShowResult:
				m.reset()
			}
		}

	case callResultMsg:
		m.args = msg.args
		m.result = msg.result
		m.errs = msg.errs
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) reset() {
	m.state = stateSelectMethod
	m.inputs = nil
	m.args = ""
	m.result = ""
	m.errs = nil
	m.err = nil
}

// prepareInputs opens one JSON input per argument, prefilled with the
// default form value.
func (m *interactiveModel) prepareInputs() error {
	method := m.methods[m.selected]
	m.inputs = make([]textinput.Model, len(method.Fields))
	for i, f := range method.Fields {
		initial, err := json.Marshal(f.DefaultValue)
		if err != nil {
			return err
		}
		ti := textinput.New()
		ti.Placeholder = f.Type.Name()
		ti.Prompt = f.Label + ": "
		ti.Width = 60
		ti.SetValue(string(initial))
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
	return nil
}

func (m *interactiveModel) call() tea.Msg {
	method := m.methods[m.selected]
	args := make([]any, len(m.inputs))
	for i, input := range m.inputs {
		v, err := parseValue(input.Value())
		if err != nil {
			return callResultMsg{err: fmt.Errorf("%s: %w", method.Fields[i].Label, err)}
		}
		args[i] = v
	}

	wire, err := method.Encode(args)
	if err != nil {
		return callResultMsg{errs: fields.Messages(err)}
	}
	return m.mock(method, wire)
}

func (m *interactiveModel) generateCall() tea.Msg {
	method := m.methods[m.selected]
	wire, err := m.app.gen.GenerateArgs(method.Func)
	if err != nil {
		return callResultMsg{err: err}
	}
	return m.mock(method, wire)
}

// mock pairs the encoded arguments with generated results, as a replica
// would answer them.
func (m *interactiveModel) mock(method *fields.Method, wire []any) tea.Msg {
	args := argText(method.Func.Args, wire)
	values, err := m.app.gen.GenerateResults(method.Func)
	if err != nil {
		return callResultMsg{args: args, err: err}
	}
	nodes, err := m.app.formatter.FormatMethod(method.Func, values)
	if err != nil {
		return callResultMsg{args: args, err: err}
	}
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(m.render.nodeTree(n))
	}
	return callResultMsg{args: args, result: b.String()}
}

func parseValue(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	args, err := parseArgs("[" + raw + "]")
	if err != nil {
		return nil, err
	}
	return args[0], nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(m.render.title("Candid Reactor"))
	b.WriteString(" ")
	b.WriteString(m.app.source)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectMethod:
		b.WriteString("Select a method:\n\n")
		for i, method := range m.methods {
			if i == m.selected {
				b.WriteString(m.render.selected("> " + method.Name))
				b.WriteString(" " + m.render.method(method))
			} else {
				b.WriteString("  " + m.render.method(method))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.render.help("↑/↓ select • enter fill arguments • g random call • q quit"))

	case stateInputArgs:
		method := m.methods[m.selected]
		b.WriteString(m.render.method(method))
		b.WriteString("\n\n")
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.render.help("tab next argument • enter encode • esc back"))

	case stateShowResult:
		method := m.methods[m.selected]
		b.WriteString(m.render.method(method))
		b.WriteString("\n\n")
		if m.args != "" {
			b.WriteString(m.render.help("args: "))
			b.WriteString(m.args)
			b.WriteString("\n\n")
		}
		for _, e := range m.errs {
			b.WriteString(m.render.error(e))
			b.WriteString("\n")
		}
		if m.err != nil {
			b.WriteString(m.render.error(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		}
		b.WriteString(m.result)
		b.WriteString("\n")
		b.WriteString(m.render.help("enter continue • q quit"))
	}

	return b.String()
}

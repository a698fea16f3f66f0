package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/B3Pay/ic-reactor-go/fields"
	"github.com/B3Pay/ic-reactor-go/result"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
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

	queryTag  = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Render("query")
	updateTag = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C")).Render("update")
)

// renderer prints fields, methods and result trees, with colors only when
// writing to a terminal.
type renderer struct {
	styled bool
}

func newRenderer(styled bool) renderer {
	return renderer{styled: styled}
}

func (r renderer) style(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}

func (r renderer) title(text string) string    { return r.style(titleStyle, text) }
func (r renderer) help(text string) string     { return r.style(helpStyle, text) }
func (r renderer) error(text string) string    { return r.style(errorStyle, text) }
func (r renderer) result(text string) string   { return r.style(resultStyle, text) }
func (r renderer) selected(text string) string { return r.style(selectedStyle, text) }

func (r renderer) method(m *fields.Method) string {
	tag := string(m.FunctionType)
	if r.styled {
		tag = updateTag
		if m.FunctionType == fields.Query {
			tag = queryTag
		}
	}
	params := make([]string, len(m.Func.Args))
	for i, t := range m.Func.Args {
		params[i] = r.style(typeStyle, t.Name())
	}
	results := make([]string, len(m.Func.Results))
	for i, t := range m.Func.Results {
		results[i] = r.style(typeStyle, t.Name())
	}
	return fmt.Sprintf("%s (%s) -> (%s) [%s]",
		r.style(funcStyle, m.Name), strings.Join(params, ", "), strings.Join(results, ", "), tag)
}

// fieldTree prints a field and its children, one per line, indented by
// depth.
func (r renderer) fieldTree(f *fields.Field) string {
	var b strings.Builder
	r.writeField(&b, f, 0)
	return b.String()
}

func (r renderer) writeField(b *strings.Builder, f *fields.Field, depth int) {
	indent := strings.Repeat("  ", depth)
	line := fmt.Sprintf("%s%s %s", indent, f.Label, r.style(typeStyle, f.CandidType))
	if f.Name != "" {
		line += " " + r.help(f.Name)
	}
	switch {
	case f.IsMarker():
		line += " " + r.help("↻ "+f.TypeName)
	case f.Number != nil && f.Number.Max != "":
		line += " " + r.help(fmt.Sprintf("[%s, %s]", f.Number.Min, f.Number.Max))
	case f.Kind == fields.KindVariant:
		line += " " + r.help(strings.Join(f.Options, " | "))
	}
	b.WriteString(line)
	b.WriteByte('\n')

	for _, c := range f.Fields {
		r.writeField(b, c, depth+1)
	}
	if f.Item != nil {
		r.writeField(b, f.Item, depth+1)
	}
	if f.Inner != nil {
		r.writeField(b, f.Inner, depth+1)
	}
}

// nodeTree prints a formatted result tree.
func (r renderer) nodeTree(n *result.Node) string {
	var b strings.Builder
	n.Walk(func(n *result.Node, depth int) {
		indent := strings.Repeat("  ", depth)
		label := n.Label
		if label == "" {
			label = string(n.Kind)
		}
		b.WriteString(indent + label + ": ")
		switch {
		case n.Kind == result.KindVariant, n.Kind == result.KindRecursive:
			b.WriteString(r.result(fmt.Sprint(n.Value)))
		case len(n.Values) == 0:
			b.WriteString(r.result(leafText(n.Value)))
		}
		if n.Format != "" && n.Format != "normal" && n.Format != "plain" {
			b.WriteString(" " + r.help("("+n.Format+")"))
		}
		b.WriteString(" " + r.style(typeStyle, string(n.Kind)))
		b.WriteByte('\n')
	})
	return b.String()
}

func leafText(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprint(v)
}

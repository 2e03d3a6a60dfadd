package tui

import (
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jm/colorscheme/internal/preference"
)

type theme struct {
	title   lipgloss.Style
	cursor  lipgloss.Style
	item    lipgloss.Style
	current lipgloss.Style
	help    lipgloss.Style
}

var darkTheme = theme{
	title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("cyan")),
	cursor:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
	item:    lipgloss.NewStyle(),
	current: lipgloss.NewStyle().Faint(true),
	help:    lipgloss.NewStyle().Faint(true),
}

var lightTheme = theme{
	title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("blue")),
	cursor:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("130")),
	item:    lipgloss.NewStyle(),
	current: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	help:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
}

var choices = []preference.Value{preference.NoPreference, preference.Light, preference.Dark}

type Model struct {
	current  preference.Value
	known    bool
	cursor   int
	chosen   bool
	quitting bool
	theme    theme
}

// New builds a chooser with the cursor on current. known is false when the
// active preference could not be read.
func New(current preference.Value, known bool) Model {
	th := darkTheme
	if known && current == preference.Light {
		th = lightTheme
	}
	m := Model{current: current, known: known, theme: th}
	for i, c := range choices {
		if c == current {
			m.cursor = i
		}
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(choices)-1 {
			m.cursor++
		}
	case "d":
		return m.pick(preference.Dark)
	case "l":
		return m.pick(preference.Light)
	case "n":
		return m.pick(preference.NoPreference)
	case "enter", " ":
		m.chosen = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) pick(v preference.Value) (tea.Model, tea.Cmd) {
	for i, c := range choices {
		if c == v {
			m.cursor = i
		}
	}
	m.chosen = true
	return m, tea.Quit
}

// Selection reports the chosen value; ok is false if the user backed out.
func (m Model) Selection() (preference.Value, bool) {
	if !m.chosen {
		return preference.NoPreference, false
	}
	return choices[m.cursor], true
}

func (m Model) View() string {
	if m.chosen || m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.title.Render("Color scheme"))
	b.WriteString("\n\n")

	for i, c := range choices {
		line := "  " + m.theme.item.Render(c.String())
		if i == m.cursor {
			line = m.theme.cursor.Render("> " + c.String())
		}
		if m.known && c == m.current {
			line += " " + m.theme.current.Render("(current)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.help.Render("j/k: move │ enter: apply │ d/l/n: pick │ q: cancel"))
	b.WriteString("\n")
	return b.String()
}

// Choose runs the chooser drawing on out. ok is false when the user
// cancelled.
func Choose(current preference.Value, known bool, in io.Reader, out io.Writer) (preference.Value, bool, error) {
	p := tea.NewProgram(
		New(current, known),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return preference.NoPreference, false, err
	}
	v, ok := final.(Model).Selection()
	return v, ok, nil
}

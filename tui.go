package main

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/Zachkp/termfolio/internal/content"
	"github.com/Zachkp/termfolio/internal/matrix"
	"github.com/Zachkp/termfolio/internal/terminal"
)

const rainInterval = 50 * time.Millisecond

type rainTickMsg time.Time

// rainCellWidth is the widest glyph; every rain column takes that many cells.
var rainCellWidth = func() int {
	w := 1
	for _, r := range matrix.Glyphs {
		w = max(w, runewidth.RuneWidth(r))
	}
	return w
}()

// padRain widens narrow glyphs and blanks so every column lines up.
func padRain(line string) string {
	var b strings.Builder
	for _, r := range line {
		b.WriteRune(r)
		if pad := rainCellWidth - runewidth.RuneWidth(r); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
	}
	return b.String()
}

func rainTick() tea.Cmd {
	return tea.Tick(rainInterval, func(t time.Time) tea.Msg {
		return rainTickMsg(t)
	})
}

// tuiModel is the full-screen host: the current section and scrollback in a
// viewport, a prompt below, and matrix rain above when enabled.
type tuiModel struct {
	sess    *terminal.Session
	routes  *terminal.RouteTable
	content *content.Store
	render  markdownRenderer

	input    textinput.Model
	viewport viewport.Model
	rain     *matrix.Rain
	section  string
	shown    string // reveal state the section was rendered with

	width  int
	height int
	ready  bool
}

func newTUIModel(store *content.Store, interp *terminal.Interpreter, routes *terminal.RouteTable, opts ...terminal.SessionOption) tuiModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "type help"
	ti.CharLimit = 256
	ti.Focus()

	m := tuiModel{
		sess:     terminal.NewSession(interp, opts...),
		routes:   routes,
		content:  store,
		render:   newMarkdownRenderer(min(terminalWidth(), 100)),
		input:    ti,
		viewport: viewport.New(80, 20),
		rain:     matrix.New(80, 0, nil),
	}
	m.section = m.renderSection()
	m.refresh()
	return m
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, rainTick())
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case rainTickMsg:
		if m.sess.MatrixEnabled() {
			m.rain.Step()
		}
		return m, rainTick()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.sess.Close()
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyUp:
			if line, ok := m.sess.Previous(); ok {
				m.input.SetValue(line)
				m.input.CursorEnd()
			}
			return m, nil
		case tea.KeyDown:
			line, _ := m.sess.Next()
			m.input.SetValue(line)
			m.input.CursorEnd()
			return m, nil
		case tea.KeyTab:
			if c, ok := m.sess.Complete(m.input.Value()); ok {
				m.input.SetValue(c)
				m.input.CursorEnd()
			}
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m tuiModel) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	switch line {
	case "exit", "quit", "logout":
		m.sess.Close()
		return m, tea.Quit
	}

	res, dispatched := m.sess.Submit(line)
	if !dispatched {
		return m, nil
	}

	cmd := terminal.Parse(line)
	encrypted := showsEncrypted(m.routes, m.sess.Path())
	switch {
	case res.ClearScreen:
		m.section = ""
	case cmd.Verb == terminal.VerbCD && res.Success:
		m.section = m.renderSection()
	case cmd.Verb == terminal.VerbMatrix:
		m.layout()
	case res.SideEffect != "" && encrypted:
		m.section = m.renderSection()
	case encrypted && m.section != "" && revealState(m.content.Portfolio(), m.sess) != m.shown:
		m.section = m.renderSection()
	}
	m.refresh()
	return m, nil
}

func (m *tuiModel) renderSection() string {
	p := m.content.Portfolio()
	out, err := renderSection(m.routes, p, m.sess, m.render)
	if err != nil {
		return errorStyle.Render(err.Error()) + "\n"
	}
	m.shown = revealState(p, m.sess)
	return out
}

// layout sizes the rain, viewport and prompt to the window.
func (m *tuiModel) layout() {
	if !m.ready {
		return
	}
	rainHeight := 0
	if m.sess.MatrixEnabled() {
		rainHeight = m.height / 3
	}
	m.rain.Resize(m.width/rainCellWidth, rainHeight)

	vpHeight := m.height - rainHeight - 2
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = vpHeight
	m.input.Width = m.width - runewidth.StringWidth(promptFor(m.sess.Path())) - 1
	m.refresh()
}

func (m *tuiModel) refresh() {
	var b strings.Builder
	b.WriteString(m.section)
	for _, e := range m.sess.Entries() {
		b.WriteString(formatEntry(e))
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m tuiModel) View() string {
	var b strings.Builder
	if m.sess.MatrixEnabled() {
		for _, line := range m.rain.Render() {
			b.WriteString(rainStyle.Render(padRain(line)))
			b.WriteString("\n")
		}
	}
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", max(m.width, 1))))
	b.WriteString("\n")
	b.WriteString(promptStyle.Render(promptFor(m.sess.Path())))
	b.WriteString(m.input.View())
	return b.String()
}

// runTUI is the program behind `termfolio tui`.
func runTUI(m tuiModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Zachkp/termfolio/internal/content"
	"github.com/Zachkp/termfolio/internal/terminal"
)

// Styles shared by the shell and tui hosts
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	rainStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))
)

// terminalWidth reports the width of stdout, or 80 when it is not a terminal.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func promptFor(path string) string {
	return "visitor@portfolio:" + path + "$ "
}

// formatEntry renders one scrollback record as terminal lines.
func formatEntry(e terminal.HistoryEntry) string {
	var b strings.Builder
	if e.Command != "" {
		b.WriteString(dimStyle.Render("$ "))
		b.WriteString(commandStyle.Render(e.Command))
		b.WriteString("\n")
	}
	if e.Result.Output != "" {
		style := outputStyle
		if !e.Result.Success {
			style = errorStyle
		}
		b.WriteString(style.Render(e.Result.Output))
		b.WriteString("\n")
	}
	return b.String()
}

// showsEncrypted reports whether the section at path lists maskable items.
func showsEncrypted(routes *terminal.RouteTable, path string) bool {
	for _, key := range []string{terminal.SectionProjects, terminal.SectionTestimonials} {
		if sec, ok := routes.ByKey(key); ok && sec.Path == path {
			return true
		}
	}
	return false
}

// revealState lists the encrypted items the session can currently read, so a
// host can notice when a reveal timer has masked one again.
func revealState(p *content.Portfolio, sess *terminal.Session) string {
	var open []string
	for _, pr := range p.Projects {
		if pr.Encrypted && sess.Revealed(pr.ID) {
			open = append(open, pr.ID)
		}
	}
	for _, t := range p.Testimonials {
		if t.Encrypted && sess.Revealed(t.ID) {
			open = append(open, t.ID)
		}
	}
	return strings.Join(open, ",")
}

// markdownRenderer turns section markdown into terminal output.
type markdownRenderer func(md string) (string, error)

func newMarkdownRenderer(width int) markdownRenderer {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return plainMarkdown
	}
	return r.Render
}

func plainMarkdown(md string) (string, error) { return md, nil }

// renderSection renders the section at the session's current path.
func renderSection(routes *terminal.RouteTable, p *content.Portfolio, sess *terminal.Session, render markdownRenderer) (string, error) {
	sec, ok := routes.Lookup(sess.Path())
	if !ok {
		return "", content.ErrUnknownSection
	}
	md, err := p.Markdown(sec.Key, sess.Revealed)
	if err != nil {
		return "", err
	}
	return render(md)
}

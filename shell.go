package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"github.com/peterh/liner"

	"github.com/Zachkp/termfolio/internal/content"
	"github.com/Zachkp/termfolio/internal/terminal"
)

// shellHost drives one session from a line-oriented terminal.
type shellHost struct {
	sess    *terminal.Session
	routes  *terminal.RouteTable
	content *content.Store
	out     io.Writer
	render  markdownRenderer

	// reveal state of the last printed section
	shown string
}

// handle runs one line and writes its output. It reports false when the
// user asked to leave.
func (h *shellHost) handle(line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return true
	case "exit", "quit", "logout":
		fmt.Fprintln(h.out, dimStyle.Render("Connection closed."))
		return false
	}

	res, dispatched := h.sess.Submit(line)
	if !dispatched {
		return true
	}
	if res.ClearScreen {
		termenv.NewOutput(h.out).ClearScreen()
		return true
	}

	fmt.Fprint(h.out, formatEntry(terminal.HistoryEntry{Result: res}))

	encrypted := showsEncrypted(h.routes, h.sess.Path())
	switch cmd := terminal.Parse(line); {
	case cmd.Verb == terminal.VerbCD && res.Success:
		h.printSection()
	case cmd.Verb == terminal.VerbMatrix && h.sess.MatrixEnabled():
		fmt.Fprintln(h.out, dimStyle.Render("(the rain only falls in `termfolio tui`)"))
	case res.SideEffect != "" && encrypted:
		h.printSection()
	case encrypted && revealState(h.content.Portfolio(), h.sess) != h.shown:
		// an item was masked again since the section was printed
		h.printSection()
	}
	return true
}

func (h *shellHost) printSection() {
	p := h.content.Portfolio()
	out, err := renderSection(h.routes, p, h.sess, h.render)
	if err != nil {
		fmt.Fprintln(h.out, errorStyle.Render(err.Error()))
		return
	}
	h.shown = revealState(p, h.sess)
	fmt.Fprint(h.out, out)
}

func (h *shellHost) complete(line string) []string {
	if c, ok := h.sess.Complete(line); ok {
		return []string{c}
	}
	return nil
}

// runShell is the interactive loop behind `termfolio shell`.
func runShell(h *shellHost) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(h.complete)

	for _, e := range h.sess.Entries() {
		fmt.Fprint(h.out, formatEntry(e))
	}

	for {
		input, err := line.Prompt(promptFor(h.sess.Path()))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(h.out)
				return nil
			}
			return err
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if !h.handle(input) {
			return nil
		}
	}
}

func newShellHost(store *content.Store, interp *terminal.Interpreter, routes *terminal.RouteTable, opts ...terminal.SessionOption) *shellHost {
	return &shellHost{
		sess:    terminal.NewSession(interp, opts...),
		routes:  routes,
		content: store,
		out:     os.Stdout,
		render:  newMarkdownRenderer(min(terminalWidth(), 100)),
	}
}

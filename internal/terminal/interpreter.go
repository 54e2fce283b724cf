package terminal

import (
	"fmt"
	"strings"
	"time"
)

// Env is what a host lends the interpreter for one call.
type Env interface {
	Navigate(s Section)
	CurrentPath() string
	Now() time.Time
}

// historyEnv is implemented by hosts that can list past commands.
type historyEnv interface {
	Commands() []string
}

// Interpreter executes command lines. It keeps no state between calls, so one
// value can serve every session.
type Interpreter struct {
	dispatcher *Dispatcher
	identity   string
}

// NewInterpreter creates an interpreter dispatching cd over routes.
func NewInterpreter(routes *RouteTable) *Interpreter {
	return &Interpreter{
		dispatcher: NewDispatcher(routes),
		identity:   Identity,
	}
}

// WithIdentity returns a copy answering whoami with identity.
func (in *Interpreter) WithIdentity(identity string) *Interpreter {
	cp := *in
	if identity != "" {
		cp.identity = identity
	}
	return &cp
}

// Execute runs one line against env. Hosts drop blank input before calling;
// a blank line here yields an unknown-command failure.
func (in *Interpreter) Execute(env Env, input string) Result {
	return in.Run(env, Parse(strings.TrimSpace(input)))
}

// Run executes an already parsed command.
func (in *Interpreter) Run(env Env, cmd Command) Result {
	switch cmd.Verb {
	case VerbCD:
		return in.dispatcher.Dispatch(env, cmd.Arg(0))
	case VerbLS:
		return ok(ListingText)
	case VerbPWD:
		path := env.CurrentPath()
		if path == "" {
			path = "/"
		}
		return ok(path)
	case VerbClear:
		return Result{Success: true, Output: "", ClearScreen: true}
	case VerbWhoami:
		return ok(in.identity)
	case VerbHelp:
		return ok(HelpText)
	case VerbDate:
		return ok("Current timestamp: " + env.Now().Format(DateLayout))
	case VerbMatrix:
		return ok(MatrixText)
	case VerbDecrypt:
		target := cmd.Arg(0)
		if target == "" {
			return fail(DecryptUsage)
		}
		return Result{
			Success:    true,
			Output:     fmt.Sprintf("Decrypting %s... [ACCESS GRANTED]", target),
			SideEffect: target,
		}
	case VerbHistory:
		listing := formatHistory(env)
		if listing == "" {
			listing = "No commands in history."
		}
		return ok(listing)
	case VerbUnknown:
		return fail(fmt.Sprintf("bash: %s: command not found", cmd.Name))
	}
	return fail(fmt.Sprintf("bash: %s: command not found", cmd.Name))
}

func formatHistory(env Env) string {
	h, isHistory := env.(historyEnv)
	if !isHistory {
		return ""
	}
	var b strings.Builder
	for i, c := range h.Commands() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%5d  %s", i+1, c)
	}
	return b.String()
}

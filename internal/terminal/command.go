// Package terminal holds the command core behind the portfolio's fake shell:
// parsing, the verb interpreter, the section route table and the per-visitor session.
package terminal

import "strings"

// Verb identifies which action a command line asks for.
type Verb int

const (
	VerbUnknown Verb = iota
	VerbCD
	VerbLS
	VerbPWD
	VerbClear
	VerbWhoami
	VerbHelp
	VerbDate
	VerbMatrix
	VerbDecrypt
	VerbHistory
)

var verbNames = map[string]Verb{
	"cd":      VerbCD,
	"ls":      VerbLS,
	"pwd":     VerbPWD,
	"clear":   VerbClear,
	"whoami":  VerbWhoami,
	"help":    VerbHelp,
	"date":    VerbDate,
	"matrix":  VerbMatrix,
	"decrypt": VerbDecrypt,
	"history": VerbHistory,
}

// ParseVerb maps a verb name to its Verb. Matching ignores case.
func ParseVerb(name string) Verb {
	if v, ok := verbNames[strings.ToLower(name)]; ok {
		return v
	}
	return VerbUnknown
}

func (v Verb) String() string {
	for name, verb := range verbNames {
		if verb == v {
			return name
		}
	}
	return "unknown"
}

// Command is one parsed input line.
type Command struct {
	Verb Verb
	Name string // lower-cased first token
	Args []string
	Raw  string
}

// Parse splits a line on whitespace. The first token, lower-cased, names the
// verb; argument case is preserved.
func Parse(line string) Command {
	fields := strings.Fields(line)
	cmd := Command{Raw: line}
	if len(fields) == 0 {
		return cmd
	}

	cmd.Name = strings.ToLower(fields[0])
	cmd.Verb = ParseVerb(cmd.Name)
	cmd.Args = fields[1:]
	return cmd
}

// Arg returns the i-th argument or "" when absent.
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

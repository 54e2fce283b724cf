package terminal

// Result is the outcome of executing one command.
type Result struct {
	Success     bool   `json:"success"`
	Output      string `json:"output"`
	ClearScreen bool   `json:"clear,omitempty"`
	// SideEffect names a cosmetic decrypt target, empty otherwise.
	SideEffect string `json:"decrypt,omitempty"`
}

func ok(output string) Result {
	return Result{Success: true, Output: output}
}

func fail(output string) Result {
	return Result{Success: false, Output: output}
}

package parg

// Outcome is the successful result of a parse.
type Outcome struct {
	Program     string // program label of the command that finished the parse
	Interrupted string // name of the interrupt that stopped the parse, if any
	ExitCode    int    // set by subcommand handlers
}

// WasInterrupted reports whether an interrupt definition cut the parse short.
// The bound variables have then not all been assigned.
func (o Outcome) WasInterrupted() bool {
	return o.Interrupted != ""
}

// Handler runs a subcommand. It receives the extended program label (for
// example "git remote") and every token after the subcommand name. Its
// result becomes the result of the parent parse without modification. A
// returned io.EOF is wrapped, since it would otherwise read as the end of
// the parent's input.
type Handler interface {
	Handle(program string, args []string) (Outcome, error)
}

// HandlerFunc adapts an ordinary function to Handler.
type HandlerFunc func(program string, args []string) (Outcome, error)

// Handle calls f(program, args).
func (f HandlerFunc) Handle(program string, args []string) (Outcome, error) {
	return f(program, args)
}

// InterruptFunc is run by the Binder when its interrupt is matched.
type InterruptFunc func(h *Help)

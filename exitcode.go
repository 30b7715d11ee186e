package parg

import "errors"

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	// ExitUsage reports invalid command-line input.
	ExitUsage = 2
)

// ExitCode maps the error of Run or Execute to a process exit code. Parse
// errors, reported or not, are usage errors; anything else, including a
// definition error, is a plain failure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return ExitUsage
	}
	return ExitFailure
}

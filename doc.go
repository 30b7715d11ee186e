// Package parg (Parse ARGuments) recognizes structured command-line input.
//
// Given the tokens of a command line and a list of argument definitions,
// the parser engine produces an ordered stream of recognized arguments, or
// the first structural error. Definitions come in six kinds:
//   - Positional: a required value identified by its slot, like "SOURCE".
//   - Trail: the values remaining after all positionals, like "FILES...".
//   - Switch: a flag without a parameter, like "--verbose" or "-v".
//   - Option: a flag consuming the next token, like "--output out.txt".
//   - Subcommand: a named token handing every later token to a Handler.
//   - Interrupt: a switch stopping the parse, like "--help".
//
// Short aliases can be grouped ("-abc" is "-a -b -c"); only the last
// character of a group may be an option. A bare "--" matches the switch
// with the empty name, see Passthrough.
//
// There are three layers, each usable on its own:
//
// Compile validates a definition list once. The resulting DefinitionSet is
// read-only and may be shared.
//
// NewParse starts a pull-driven parse over a DefinitionSet. Each call to
// Step yields one Event, an error, or io.EOF:
//
//	p := parg.NewParse(set, os.Args[1:], parg.ParseOpts{Program: "cp"})
//	for ev, err := range p.All() {
//		...
//	}
//
// Run and Execute bind the events into Go variables given to
// Definition.Bind, converting strings to the target type. Execute also
// reports parse errors with a usage line, the way a main function wants:
//
//	var (
//		verbose int
//		output  string
//		files   []string
//	)
//	defs := []parg.Definition{
//		parg.Switch("verbose").Short('v').Bind(&verbose),
//		parg.Option("output").Short('o').Bind(&output),
//		parg.Trail("files", parg.OneOrMore).Bind(&files),
//		parg.HelpInterrupt("Concatenates files."),
//	}
//	outcome, err := parg.Execute("cat", os.Args[1:], defs, parg.RunOpts{})
//	if err != nil {
//		os.Exit(parg.ExitCode(err))
//	}
//	if outcome.WasInterrupted() {
//		return
//	}
//
// Definitions can also be derived from struct tags (FromStruct) or loaded
// from TOML, YAML and JSON manifests (LoadManifest).
package parg

package parg

import (
	"fmt"
	"runtime/debug"
)

// Kind tags what an argument definition expects on the command line.
type Kind int

const (
	KindPositional Kind = iota
	KindTrail
	KindSwitch
	KindOption
	KindSubcommand
	KindInterrupt
)

func (k Kind) String() string {
	switch k {
	case KindPositional:
		return "positional"
	case KindTrail:
		return "trail"
	case KindSwitch:
		return "switch"
	case KindOption:
		return "option"
	case KindSubcommand:
		return "subcommand"
	case KindInterrupt:
		return "interrupt"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// isNamedFlag reports whether definitions of this kind are addressed by
// "--name" and may carry a short alias.
func (k Kind) isNamedFlag() bool {
	return k == KindSwitch || k == KindOption || k == KindInterrupt
}

// Arity of a trail.
type Arity int

const (
	OneOrMore Arity = iota
	ZeroOrMore
)

// Definition describes one expected argument.
//
// Definitions are plain values: the setters return a modified copy, so a
// definition can be built in a single expression and stored in a slice
//
//	defs := []parg.Definition{
//		parg.Positional("input").Bind(&input),
//		parg.Switch("verbose").Short('v').Bind(&verbose),
//		parg.Option("exclude").Short('x').Param("PATTERN").Bind(&excludes),
//	}
//
// The target given to Bind is only used by the Binder (Run, Execute). The
// parser engine ignores it.
type Definition struct {
	name     string
	kind     Kind
	short    rune
	arity    Arity
	handler  Handler
	callback InterruptFunc
	help     string
	param    string
	target   any
}

// Positional describes a required value identified by its position.
func Positional(name string) Definition {
	return Definition{name: name, kind: KindPositional}
}

// Trail describes the values remaining after all positional slots are
// filled. A OneOrMore trail requires at least one value.
func Trail(name string, arity Arity) Definition {
	return Definition{name: name, kind: KindTrail, arity: arity}
}

// Switch describes a flag taking no parameter.
//
// Bound to a *bool it is set to true, bound to a pointer to an integer it
// counts its occurrences.
func Switch(name string) Definition {
	return Definition{name: name, kind: KindSwitch}
}

// Option describes a flag consuming the following token as its parameter.
//
// Bound to a pointer to a slice, or to a Collector, every occurrence is
// collected. Bound to anything else it may be given once.
func Option(name string) Definition {
	return Definition{name: name, kind: KindOption}
}

// Subcommand describes a named token that hands every remaining token to h.
func Subcommand(name string, h Handler) Definition {
	return Definition{name: name, kind: KindSubcommand, handler: h}
}

// Interrupt describes a switch that stops the parse when seen, such as
// --help or --version. The callback is run by the Binder.
func Interrupt(name string, cb InterruptFunc) Definition {
	return Definition{name: name, kind: KindInterrupt, callback: cb}
}

// Passthrough binds the tokens following a bare "--" to target.
func Passthrough(target *[]string) Definition {
	return Switch(TerminatorName).Bind(target).Help("Pass the remaining arguments through unparsed.")
}

// HelpInterrupt is an interrupt named "help" printing the help message
// with the given program description.
func HelpInterrupt(description string) Definition {
	return Interrupt(HelpName, func(h *Help) {
		h.Print(description)
	}).Help("Print this help message.")
}

// VersionInterrupt is an interrupt named "version" printing version. An
// empty version falls back to the main module version from the build info.
func VersionInterrupt(version string) Definition {
	if version == "" {
		version = buildVersion()
	}
	return Interrupt(VersionName, func(h *Help) {
		fmt.Fprintln(h.Output, version)
	}).Help("Print version information.")
}

func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "(devel)"
	}
	return info.Main.Version
}

// Short sets the single character alias, like 'v' for "-v".
func (d Definition) Short(alias rune) Definition {
	d.short = alias
	return d
}

// Help sets the description shown in help messages.
func (d Definition) Help(text string) Definition {
	d.help = text
	return d
}

// Param sets the parameter name shown in help messages for options.
func (d Definition) Param(name string) Definition {
	d.param = name
	return d
}

// Bind sets the variable the Binder writes this argument into.
func (d Definition) Bind(target any) Definition {
	d.target = target
	return d
}

// Name returns the long name, or the slot name of a positional or trail.
func (d Definition) Name() string { return d.name }

// Kind returns what the definition expects on the command line.
func (d Definition) Kind() Kind { return d.kind }

// Arity returns the arity of a trail. It is OneOrMore for other kinds.
func (d Definition) Arity() Arity { return d.arity }

// Alias returns the short alias, if any.
func (d Definition) Alias() (rune, bool) {
	return d.short, d.short != 0
}

// HelpText returns the description set with Help.
func (d Definition) HelpText() string { return d.help }

// ParamName returns the parameter name set with Param, if any.
func (d Definition) ParamName() string { return d.param }

// Target returns the variable set with Bind, or nil.
func (d Definition) Target() any { return d.target }

package parg

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
)

// RepeatPolicy decides what happens when an option bound to a single value
// is given more than once.
type RepeatPolicy int

const (
	// RepeatReject fails the parse with OptionGivenTwice.
	RepeatReject RepeatPolicy = iota
	// RepeatOverwrite keeps the last value.
	RepeatOverwrite
)

// RunOpts configures Run and Execute. The zero value is ready to use.
type RunOpts struct {
	Logger *slog.Logger

	// Output receives interrupt output such as help and version text.
	// Defaults to os.Stdout.
	Output io.Writer
	// ErrOutput receives the error report of Execute. Defaults to os.Stderr.
	ErrOutput io.Writer

	Repeat RepeatPolicy

	// Defaults is an optional JSON document holding fallback values for
	// switches and options that were not given, keyed by long name.
	Defaults []byte
	// DefaultsPrefix is a gjson path selecting the object inside Defaults.
	DefaultsPrefix string

	// HelpWidth is the wrap width of help messages, DefaultHelpWidth if 0.
	HelpWidth int
}

func (o RunOpts) withDefaults() RunOpts {
	if o.Output == nil {
		o.Output = os.Stdout
	}
	if o.ErrOutput == nil {
		o.ErrOutput = os.Stderr
	}
	o.Logger = loggerOrDiscard(o.Logger)
	return o
}

// Run parses args against defs and writes every recognized argument into
// the target bound to its definition.
//
// An interrupt runs its callback and returns immediately with
// Outcome.Interrupted set; the remaining arguments are not checked. A
// subcommand's outcome is returned as is. Otherwise, once all arguments are
// bound, options and switches that were not given are filled from
// RunOpts.Defaults.
//
// Errors are a *DefinitionError for an invalid definition list, a
// *ParseError for invalid input, or whatever a subcommand handler returned.
func Run(program string, args []string, defs []Definition, opts RunOpts) (Outcome, error) {
	set, err := Compile(defs)
	if err != nil {
		return Outcome{}, err
	}
	return run(program, args, set, opts.withDefaults())
}

// Execute is Run for main functions and subcommand handlers. An invalid
// definition list panics. A parse error is printed with a usage line to
// RunOpts.ErrOutput and returned as a *ReportedError, which callers further
// up pass along without printing it again.
func Execute(program string, args []string, defs []Definition, opts RunOpts) (Outcome, error) {
	set, err := Compile(defs)
	if err != nil {
		panic(err)
	}
	opts = opts.withDefaults()

	outcome, err := run(program, args, set, opts)
	if err == nil {
		return outcome, nil
	}

	var reported *ReportedError
	if errors.As(err, &reported) {
		return outcome, err
	}

	var pe *ParseError
	if !errors.As(err, &pe) {
		return outcome, err
	}

	fmt.Fprintf(opts.ErrOutput, "error: %v\n", pe)
	NewHelp(program, set, HelpOpts{Output: opts.ErrOutput, Width: opts.HelpWidth}).PrintUsage()
	return Outcome{Program: program}, &ReportedError{Err: err}
}

///////////////////////////////////////////////////////////////////////////////
// Binding
///////////////////////////////////////////////////////////////////////////////

type binder struct {
	set     *DefinitionSet
	program string
	opts    RunOpts
	given   map[string]int // occurrences per flag name
	filled  int            // positional slots bound
	trailN  int
}

func run(program string, args []string, set *DefinitionSet, opts RunOpts) (Outcome, error) {
	b := &binder{
		set:     set,
		program: program,
		opts:    opts,
		given:   make(map[string]int),
	}

	p := NewParse(set, args, ParseOpts{Program: program, Logger: opts.Logger})
	for ev, err := range p.All() {
		if err != nil {
			return Outcome{}, err
		}

		switch ev.Kind {
		case EventInterrupt:
			b.interrupt(ev.Name)
			return Outcome{Program: program, Interrupted: ev.Name}, nil
		case EventSubcommand:
			return ev.Outcome, nil
		}

		if ev.Kind == EventSwitch && ev.Name == TerminatorName {
			if err := b.passthrough(p); err != nil {
				return Outcome{}, err
			}
			continue
		}

		if err := b.bind(ev); err != nil {
			return Outcome{}, err
		}
	}

	if err := b.complete(); err != nil {
		return Outcome{}, err
	}
	if err := b.applyDefaults(); err != nil {
		return Outcome{}, err
	}
	return Outcome{Program: program}, nil
}

func (b *binder) interrupt(name string) {
	def, _ := b.set.flag(name)
	b.opts.Logger.Debug("Running interrupt.", "program", b.program, "name", name)
	if def.callback != nil {
		def.callback(NewHelp(b.program, b.set, HelpOpts{Output: b.opts.Output, Width: b.opts.HelpWidth}))
	}
}

// passthrough takes the remainder after a terminator switch. A *[]string
// target receives it whole. Otherwise every token is bound literally to
// the next free positional slot, then to the trail.
func (b *binder) passthrough(p *Parse) error {
	def, _ := b.set.flag(TerminatorName)
	rest := p.TakeRemainder()

	if dst, ok := def.target.(*[]string); ok {
		if *dst == nil {
			*dst = rest
		} else {
			*dst = append(*dst, rest...)
		}
		b.given[TerminatorName]++
		return nil
	}

	if err := b.bind(Event{Kind: EventSwitch, Name: TerminatorName}); err != nil {
		return err
	}
	for _, token := range rest {
		if err := b.literal(token); err != nil {
			return err
		}
	}
	return nil
}

func (b *binder) literal(token string) error {
	if positionals := b.set.Positionals(); b.filled < len(positionals) {
		return b.bind(Event{Kind: EventPositional, Name: positionals[b.filled], Value: token})
	}
	if trail, ok := b.set.Trail(); ok {
		return b.bind(Event{Kind: EventTrail, Name: trail.name, Value: token})
	}
	return &ParseError{Code: UnexpectedPositional, Token: token}
}

func (b *binder) bind(ev Event) error {
	switch ev.Kind {
	case EventPositional:
		b.filled++
		def, _ := b.set.positionalByName(ev.Name)
		return b.assign(def, ev.Value)

	case EventTrail:
		b.trailN++
		def, _ := b.set.Trail()
		return b.collect(def, ev.Value)

	case EventSwitch:
		def, _ := b.set.flag(ev.Name)
		b.given[ev.Name]++
		return b.toggle(def)

	case EventOption:
		def, _ := b.set.flag(ev.Name)
		b.given[ev.Name]++
		if _, ok := collectorFor(def.target); ok {
			return b.collect(def, ev.Value)
		}
		if b.given[ev.Name] > 1 && b.opts.Repeat == RepeatReject {
			return &ParseError{Code: OptionGivenTwice, Name: ev.Name}
		}
		return b.assign(def, ev.Value)
	}
	return nil
}

func (b *binder) assign(def Definition, value string) error {
	if def.target == nil {
		return nil
	}
	if err := setValue(def.target, value); err != nil {
		return invalidValue(def.name, value, err)
	}
	return nil
}

func (b *binder) collect(def Definition, value string) error {
	c, ok := collectorFor(def.target)
	if !ok {
		return nil
	}
	if err := c.Add(value); err != nil {
		return invalidValue(def.name, value, err)
	}
	return nil
}

func (b *binder) toggle(def Definition) error {
	switch t := def.target.(type) {
	case nil:
		return nil
	case *bool:
		*t = true
		return nil
	case Value:
		if err := t.Set("true"); err != nil {
			return invalidValue(def.name, "true", err)
		}
		return nil
	}
	if counter, ok := counterFor(def.target); ok {
		if err := increment(counter); err != nil {
			return invalidValue(def.name, "", err)
		}
	}
	return nil
}

// complete repeats the end-of-input checks of the engine. They are needed
// after a passthrough, which stops the engine before it reaches them.
func (b *binder) complete() error {
	if positionals := b.set.Positionals(); b.filled < len(positionals) {
		return &ParseError{Code: MissingPositional, Name: positionals[b.filled]}
	}
	if trail, ok := b.set.Trail(); ok && trail.arity == OneOrMore && b.trailN == 0 {
		return &ParseError{Code: MissingTrail, Name: trail.name}
	}
	if b.set.HasSubcommands() {
		return &ParseError{Code: MissingSubcommand}
	}
	return nil
}

func invalidValue(name, value string, err error) error {
	return &ParseError{Code: InvalidValue, Name: name, Token: value, Err: err}
}

///////////////////////////////////////////////////////////////////////////////
// Target checks
///////////////////////////////////////////////////////////////////////////////

// checkTarget rejects targets the Binder cannot write for the kind of def.
// A nil target is always accepted.
func checkTarget(def Definition) error {
	if def.target == nil {
		return nil
	}
	if rv := reflect.ValueOf(def.target); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return invalidTarget(def, "nil pointer")
	}

	switch def.kind {
	case KindPositional:
		if !scalarTarget(def.target) {
			return invalidTarget(def, fmt.Sprintf("cannot convert arguments to %T", def.target))
		}

	case KindTrail:
		if _, ok := collectorFor(def.target); !ok {
			return invalidTarget(def, fmt.Sprintf("trails need a slice pointer or Collector, got %T", def.target))
		}

	case KindSwitch:
		if def.name == TerminatorName {
			if _, ok := def.target.(*[]string); ok {
				return nil
			}
		}
		if !switchTarget(def.target) {
			return invalidTarget(def, fmt.Sprintf("switches need *bool, an integer pointer or Value, got %T", def.target))
		}

	case KindOption:
		if _, ok := collectorFor(def.target); ok {
			return nil
		}
		if !scalarTarget(def.target) {
			return invalidTarget(def, fmt.Sprintf("cannot convert arguments to %T", def.target))
		}

	case KindInterrupt, KindSubcommand:
		return invalidTarget(def, def.kind.String()+" arguments cannot be bound")
	}
	return nil
}

func switchTarget(target any) bool {
	switch target.(type) {
	case *bool, Value:
		return true
	}
	_, ok := counterFor(target)
	return ok
}

func invalidTarget(def Definition, reason string) error {
	return &DefinitionError{Code: InvalidTarget, Name: def.name, Reason: reason}
}

// repeatable reports whether def may usefully be given more than once.
func repeatable(def Definition) bool {
	switch def.kind {
	case KindSwitch:
		_, ok := counterFor(def.target)
		return ok
	case KindOption:
		_, ok := collectorFor(def.target)
		return ok
	}
	return false
}

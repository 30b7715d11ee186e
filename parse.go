package parg

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"slices"
	"strings"
)

// errEndOfInput is returned by step once the input is exhausted. Step
// reports it as io.EOF.
var errEndOfInput = errors.New("end of input")

type parseState int

const (
	stateScanning parseState = iota
	stateGroupedShortPending
	stateFinished
)

func (s parseState) String() string {
	switch s {
	case stateScanning:
		return "scanning"
	case stateGroupedShortPending:
		return "grouped-short-pending"
	}
	return "finished"
}

// ParseOpts configures NewParse. The zero value is ready to use.
type ParseOpts struct {
	// Program is the label handed to subcommands, extended by their name.
	Program string
	// RejectRepeatedOptions makes the engine itself fail with
	// OptionGivenTwice when an option is given more than once. The Binder
	// polices repetition per target instead and leaves this off.
	RejectRepeatedOptions bool
	Logger                *slog.Logger
}

// Parse is the cursor of one parse over a compiled DefinitionSet and a
// token slice. The set and the tokens are borrowed; the cursor only keeps
// indices into them.
//
// A Parse is not safe for concurrent use. Independent parses share nothing
// and may run in parallel.
type Parse struct {
	set    *DefinitionSet
	tokens []string
	opts   ParseOpts
	logger *slog.Logger

	state   parseState
	next    int    // index of the next unread token
	slot    int    // next unfilled positional slot
	trailN  int    // trail values emitted so far
	pending []rune // unresolved characters of a grouped short token
	group   string // the grouped short token, for errors
	given   map[string]struct{}
}

// NewParse starts a parse of tokens against set.
func NewParse(set *DefinitionSet, tokens []string, opts ParseOpts) *Parse {
	p := &Parse{
		set:    set,
		tokens: tokens,
		opts:   opts,
		logger: loggerOrDiscard(opts.Logger),
	}
	if opts.RejectRepeatedOptions {
		p.given = make(map[string]struct{})
	}
	return p
}

// Step advances the parse and returns exactly one of: a recognized event,
// an error, or io.EOF once the input is exhausted with every required slot
// filled.
//
// After an error, io.EOF, an interrupt event or a subcommand event the
// parse is finished: every later call returns io.EOF and changes nothing.
func (p *Parse) Step() (Event, error) {
	if p.state == stateFinished {
		return Event{}, io.EOF
	}

	ev, err := p.step()
	switch {
	case err == errEndOfInput:
		p.finish()
		p.logger.Debug("End of arguments.", "program", p.opts.Program)
		return Event{}, io.EOF
	case err != nil:
		p.finish()
		p.logger.Debug("Parse failed.", "program", p.opts.Program, "error", err)
		return Event{}, err
	}

	p.logger.Debug("Argument recognized.", "kind", ev.Kind, "name", ev.Name, "value", ev.Value)
	if ev.Kind == EventInterrupt || ev.Kind == EventSubcommand {
		p.finish()
	}
	return ev, nil
}

// All iterates over the remaining steps. Iteration stops after the first
// error, which is yielded with a zero Event, or at the end of the input.
func (p *Parse) All() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			ev, err := p.Step()
			if err == io.EOF {
				return
			}
			if !yield(ev, err) || err != nil {
				return
			}
		}
	}
}

// Remainder returns a view of the tokens not consumed yet. The view is
// clipped, so appending to it never writes into the caller's slice.
func (p *Parse) Remainder() []string {
	return slices.Clip(p.tokens[p.next:])
}

// TakeRemainder returns a copy of the unconsumed tokens and finishes the
// parse. It is meant for terminator switches ("--") after which every
// token is literal; no completeness check is made.
func (p *Parse) TakeRemainder() []string {
	rest := slices.Clone(p.tokens[p.next:])
	if rest == nil {
		rest = []string{}
	}
	p.next = len(p.tokens)
	p.finish()
	return rest
}

// Finished reports whether the parse has terminated.
func (p *Parse) Finished() bool {
	return p.state == stateFinished
}

func (p *Parse) finish() {
	p.state = stateFinished
	p.pending = nil
	p.group = ""
}

// step applies the resolution order: pending group characters first, then
// the next token by shape, then the end-of-input checks.
func (p *Parse) step() (Event, error) {
	if p.state == stateGroupedShortPending {
		return p.resumeGroup()
	}

	if p.next >= len(p.tokens) {
		return p.endOfInput()
	}

	token := p.tokens[p.next]
	p.next++

	switch {
	case strings.HasPrefix(token, LongPrefix):
		return p.longOption(token)
	case len(token) > 1 && strings.HasPrefix(token, ShortPrefix):
		return p.shortOption(token)
	default:
		return p.positional(token)
	}
}

func (p *Parse) resumeGroup() (Event, error) {
	char := p.pending[0]
	p.pending = p.pending[1:]
	last := len(p.pending) == 0
	if last {
		p.state = stateScanning
	}
	return p.shortFlag(char, p.group, last)
}

func (p *Parse) longOption(token string) (Event, error) {
	name := token[len(LongPrefix):]
	kind, ok := p.set.LookupLong(name)
	if !ok {
		return Event{}, &ParseError{Code: UnknownLongArgument, Token: token}
	}
	return p.flag(name, kind, token)
}

func (p *Parse) shortOption(token string) (Event, error) {
	chars := []rune(token[len(ShortPrefix):])
	if len(chars) == 1 {
		return p.shortFlag(chars[0], token, true)
	}

	p.pending = chars[1:]
	p.group = token
	p.state = stateGroupedShortPending
	return p.shortFlag(chars[0], token, false)
}

// shortFlag resolves one alias. Only the last character of a group may be
// an option, since only it can claim the following token.
func (p *Parse) shortFlag(char rune, token string, last bool) (Event, error) {
	name, ok := p.set.LookupShort(char)
	if !ok {
		return Event{}, &ParseError{Code: UnknownShortArgument, Char: char, Token: token}
	}
	kind, _ := p.set.LookupLong(name)
	if kind == KindOption && !last {
		return Event{}, &ParseError{Code: GroupedNonSwitch, Name: name, Char: char, Token: token}
	}
	return p.flag(name, kind, token)
}

func (p *Parse) flag(name string, kind Kind, token string) (Event, error) {
	switch kind {
	case KindInterrupt:
		return Event{Kind: EventInterrupt, Name: name}, nil
	case KindOption:
		return p.parameter(name, token)
	}
	return Event{Kind: EventSwitch, Name: name}, nil
}

// parameter consumes the token after an option. A token starting with a
// dash is never taken as a parameter.
func (p *Parse) parameter(name, token string) (Event, error) {
	if p.given != nil {
		if _, dup := p.given[name]; dup {
			return Event{}, &ParseError{Code: OptionGivenTwice, Name: name, Token: token}
		}
		p.given[name] = struct{}{}
	}

	if p.next >= len(p.tokens) || strings.HasPrefix(p.tokens[p.next], ShortPrefix) {
		return Event{}, &ParseError{Code: MissingParameter, Name: name, Token: token}
	}

	value := p.tokens[p.next]
	p.next++
	return Event{Kind: EventOption, Name: name, Value: value}, nil
}

func (p *Parse) positional(token string) (Event, error) {
	if p.slot < len(p.set.positional) {
		def := p.set.positionalAt(p.slot)
		p.slot++
		return Event{Kind: EventPositional, Name: def.name, Value: token}, nil
	}

	if p.set.HasSubcommands() {
		handler, ok := p.set.handler(token)
		if !ok {
			return Event{}, &ParseError{Code: UnknownSubcommand, Token: token}
		}
		return p.delegate(token, handler)
	}

	if trail, ok := p.set.Trail(); ok {
		p.trailN++
		return Event{Kind: EventTrail, Name: trail.name, Value: token}, nil
	}

	return Event{}, &ParseError{Code: UnexpectedPositional, Token: token}
}

// delegate hands every remaining token to a subcommand. The handler's
// error is returned as is, except io.EOF, which is wrapped so it cannot be
// mistaken for the end of this parse.
func (p *Parse) delegate(name string, h Handler) (Event, error) {
	program := extendProgram(p.opts.Program, name)
	rest := slices.Clip(p.tokens[p.next:])
	p.next = len(p.tokens)

	p.logger.Debug("Delegating to subcommand.", "program", program, "args", len(rest))
	outcome, err := h.Handle(program, rest)
	if err == io.EOF {
		return Event{}, fmt.Errorf("subcommand %s: %w", program, err)
	}
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: EventSubcommand, Name: name, Outcome: outcome}, nil
}

func (p *Parse) endOfInput() (Event, error) {
	if p.slot < len(p.set.positional) {
		return Event{}, &ParseError{Code: MissingPositional, Name: p.set.positionalAt(p.slot).name}
	}
	if trail, ok := p.set.Trail(); ok && trail.arity == OneOrMore && p.trailN == 0 {
		return Event{}, &ParseError{Code: MissingTrail, Name: trail.name}
	}
	return Event{}, errEndOfInput
}

package parg

import "fmt"

// EventKind tags what an Event recognized.
type EventKind int

const (
	EventPositional EventKind = iota
	EventTrail
	EventSwitch
	EventOption
	EventInterrupt
	EventSubcommand
)

func (k EventKind) String() string {
	switch k {
	case EventPositional:
		return "positional"
	case EventTrail:
		return "trail"
	case EventSwitch:
		return "switch"
	case EventOption:
		return "option"
	case EventInterrupt:
		return "interrupt"
	case EventSubcommand:
		return "subcommand"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one recognized argument occurrence.
//
//	EventPositional  Name = slot name, Value = token
//	EventTrail       Name = trail name, Value = token
//	EventSwitch      Name = long name
//	EventOption      Name = long name, Value = parameter
//	EventInterrupt   Name = long name
//	EventSubcommand  Name = subcommand, Outcome = handler result
type Event struct {
	Kind    EventKind
	Name    string
	Value   string
	Outcome Outcome
}

// String renders the event on one line, as printed by cmd/parg.
func (e Event) String() string {
	switch e.Kind {
	case EventPositional, EventOption:
		return fmt.Sprintf("%s %s=%s", e.Kind, e.Name, e.Value)
	case EventTrail:
		return fmt.Sprintf("%s %s", e.Kind, e.Value)
	case EventSubcommand:
		return fmt.Sprintf("%s %s exit=%d", e.Kind, e.Name, e.Outcome.ExitCode)
	}
	return fmt.Sprintf("%s %s", e.Kind, e.Name)
}

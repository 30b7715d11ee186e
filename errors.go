package parg

import (
	"errors"
	"fmt"
)

///////////////////////////////////////////////////////////////////////////////
// Sentinels
///////////////////////////////////////////////////////////////////////////////

// Definition errors. These describe a programming mistake in the definition
// list and are never meant to be shown to end users.
var (
	ErrOptionDefinedTwice           = errors.New("option defined twice")
	ErrPositionalDefinedTwice       = errors.New("positional argument defined twice")
	ErrSameShortName                = errors.New("short name defined twice")
	ErrTwoTrailsDefined             = errors.New("two trails defined")
	ErrSubcommandDefinedTwice       = errors.New("subcommand defined twice")
	ErrPositionalAndSubcommandMixed = errors.New("positional (+trail) and subcommand definitions cannot be used together")
	ErrInvalidShortName             = errors.New("invalid short name")
	ErrInvalidTarget                = errors.New("invalid target")
	ErrNilHandler                   = errors.New("subcommand has no handler")
)

// Parse errors. These are caused by user input.
var (
	ErrMissingPositional    = errors.New("missing positional argument")
	ErrMissingTrail         = errors.New("missing trailing argument")
	ErrUnexpectedPositional = errors.New("unexpected argument")
	ErrUnknownShortArgument = errors.New("unknown short option")
	ErrUnknownLongArgument  = errors.New("unknown option")
	ErrUnknownSubcommand    = errors.New("unknown subcommand")
	ErrMissingParameter     = errors.New("missing parameter")
	ErrGroupedNonSwitch     = errors.New("option taking a parameter inside a group")
	ErrOptionGivenTwice     = errors.New("option given twice")
	ErrInvalidValue         = errors.New("invalid value")
	ErrMissingSubcommand    = errors.New("no subcommand specified")
)

var (
	ErrInvalidDefaults = errors.New("defaults document is not valid JSON")
	ErrInvalidManifest = errors.New("invalid manifest")
	ErrNotStructPtr    = errors.New("destination must be a non-nil pointer to a struct")
)

///////////////////////////////////////////////////////////////////////////////
// DefinitionError
///////////////////////////////////////////////////////////////////////////////

// DefinitionErrorCode identifies the rule a definition list broke.
type DefinitionErrorCode int

const (
	OptionDefinedTwice DefinitionErrorCode = iota
	PositionalDefinedTwice
	SameShortName
	TwoTrailsDefined
	SubcommandDefinedTwice
	PositionalAndSubcommandMixed
	InvalidShortName
	InvalidTarget
	NilHandler
)

var definitionSentinels = map[DefinitionErrorCode]error{
	OptionDefinedTwice:           ErrOptionDefinedTwice,
	PositionalDefinedTwice:       ErrPositionalDefinedTwice,
	SameShortName:                ErrSameShortName,
	TwoTrailsDefined:             ErrTwoTrailsDefined,
	SubcommandDefinedTwice:       ErrSubcommandDefinedTwice,
	PositionalAndSubcommandMixed: ErrPositionalAndSubcommandMixed,
	InvalidShortName:             ErrInvalidShortName,
	InvalidTarget:                ErrInvalidTarget,
	NilHandler:                   ErrNilHandler,
}

// DefinitionError is returned by Compile when the definition list is
// structurally invalid.
type DefinitionError struct {
	Code     DefinitionErrorCode
	Name     string // offending definition
	Existing string // SameShortName: the definition that already owns the alias
	Reason   string // InvalidTarget / InvalidShortName detail
}

// Error implements the error interface
func (de *DefinitionError) Error() string {
	sentinel := de.Unwrap()
	switch de.Code {
	case TwoTrailsDefined, PositionalAndSubcommandMixed:
		return sentinel.Error()
	case SameShortName:
		return fmt.Sprintf("%s: '%s' and '%s'", sentinel, de.Name, de.Existing)
	case InvalidTarget, InvalidShortName:
		if de.Reason != "" {
			return fmt.Sprintf("%s for '%s': %s", sentinel, de.Name, de.Reason)
		}
	}
	return fmt.Sprintf("%s: '%s'", sentinel, de.Name)
}

// Unwrap returns the sentinel matching Code.
func (de *DefinitionError) Unwrap() error {
	return definitionSentinels[de.Code]
}

///////////////////////////////////////////////////////////////////////////////
// ParseError
///////////////////////////////////////////////////////////////////////////////

// ParseErrorCode identifies what was wrong with the input.
type ParseErrorCode int

const (
	MissingPositional ParseErrorCode = iota
	MissingTrail
	UnexpectedPositional
	UnknownShortArgument
	UnknownLongArgument
	UnknownSubcommand
	MissingParameter
	GroupedNonSwitch
	OptionGivenTwice
	InvalidValue
	MissingSubcommand
)

var parseSentinels = map[ParseErrorCode]error{
	MissingPositional:    ErrMissingPositional,
	MissingTrail:         ErrMissingTrail,
	UnexpectedPositional: ErrUnexpectedPositional,
	UnknownShortArgument: ErrUnknownShortArgument,
	UnknownLongArgument:  ErrUnknownLongArgument,
	UnknownSubcommand:    ErrUnknownSubcommand,
	MissingParameter:     ErrMissingParameter,
	GroupedNonSwitch:     ErrGroupedNonSwitch,
	OptionGivenTwice:     ErrOptionGivenTwice,
	InvalidValue:         ErrInvalidValue,
	MissingSubcommand:    ErrMissingSubcommand,
}

// ParseError is a user-input error found while scanning or binding tokens.
type ParseError struct {
	Code  ParseErrorCode
	Name  string // definition name, when one is known
	Token string // offending token
	Char  rune   // offending short alias
	Err   error  // underlying cause (InvalidValue)
}

// Error implements the error interface
func (pe *ParseError) Error() string {
	switch pe.Code {
	case MissingPositional:
		return fmt.Sprintf("missing positional argument '%s'", pe.Name)
	case MissingTrail:
		return fmt.Sprintf("expected at least one trailing argument for '%s'", pe.Name)
	case UnexpectedPositional:
		return fmt.Sprintf("unexpected argument '%s'", pe.Token)
	case UnknownShortArgument:
		if pe.Token == ShortPrefix+string(pe.Char) {
			return fmt.Sprintf("unknown option '%s'", pe.Token)
		}
		return fmt.Sprintf("unknown option '-%c' in '%s'", pe.Char, pe.Token)
	case UnknownLongArgument:
		return fmt.Sprintf("unknown option '%s'", pe.Token)
	case UnknownSubcommand:
		return fmt.Sprintf("unknown subcommand '%s'", pe.Token)
	case MissingParameter:
		return fmt.Sprintf("missing parameter for option '%s'", pe.Token)
	case GroupedNonSwitch:
		return fmt.Sprintf("option '-%c' in '%s' takes a parameter and must be last in the group", pe.Char, pe.Token)
	case OptionGivenTwice:
		return fmt.Sprintf("option '%s' given twice", pe.Name)
	case InvalidValue:
		return fmt.Sprintf("invalid value '%s' for '%s': %v", pe.Token, pe.Name, pe.Err)
	case MissingSubcommand:
		return ErrMissingSubcommand.Error()
	}
	return fmt.Sprintf("parse error %d", pe.Code)
}

// Unwrap exposes both the sentinel for Code and the underlying cause.
func (pe *ParseError) Unwrap() []error {
	errs := []error{parseSentinels[pe.Code]}
	if pe.Err != nil {
		errs = append(errs, pe.Err)
	}
	return errs
}

///////////////////////////////////////////////////////////////////////////////
// ReportedError
///////////////////////////////////////////////////////////////////////////////

// ReportedError wraps a ParseError that has already been printed together
// with a usage message. Drivers further up a subcommand chain pass it along
// without printing it again.
type ReportedError struct {
	Err error
}

// Error implements the error interface
func (re *ReportedError) Error() string {
	return fmt.Sprintf("parse failed (reported): %v", re.Err)
}

// Unwrap returns the reported error.
func (re *ReportedError) Unwrap() error {
	return re.Err
}

package parg

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopHandler() Handler {
	return HandlerFunc(func(program string, args []string) (Outcome, error) {
		return Outcome{Program: program}, nil
	})
}

func TestCompile(t *testing.T) {
	defs := []Definition{
		Positional("src"),
		Positional("dst"),
		Trail("rest", ZeroOrMore),
		Switch("verbose").Short('v'),
		Option("exclude").Short('x'),
		Interrupt("help", nil).Short('h'),
	}

	set, err := Compile(defs)
	require.NoError(t, err)

	assert.Equal(t, []string{"src", "dst"}, set.Positionals())

	trail, ok := set.Trail()
	require.True(t, ok)
	assert.Equal(t, "rest", trail.Name())
	assert.Equal(t, ZeroOrMore, trail.Arity())

	kind, ok := set.LookupLong("exclude")
	require.True(t, ok)
	assert.Equal(t, KindOption, kind)

	_, ok = set.LookupLong("src")
	assert.False(t, ok, "positionals are not addressable by name")

	name, ok := set.LookupShort('v')
	require.True(t, ok)
	assert.Equal(t, "verbose", name)

	assert.True(t, set.HelpDefined())
	assert.False(t, set.HasSubcommands())
	assert.Len(t, set.Definitions(), len(defs))
}

func TestCompileSubcommands(t *testing.T) {
	set, err := Compile([]Definition{
		Switch("verbose"),
		Subcommand("build", nopHandler()),
		Subcommand("test", nopHandler()),
	})
	require.NoError(t, err)
	assert.True(t, set.HasSubcommands())
	assert.Equal(t, []string{"build", "test"}, set.Subcommands())
	assert.False(t, set.HelpDefined())
}

func TestCompileEmpty(t *testing.T) {
	set, err := Compile(nil)
	require.NoError(t, err)
	assert.Empty(t, set.Positionals())
	_, ok := set.Trail()
	assert.False(t, ok)
}

func TestCompileErrors(t *testing.T) {
	var flag bool
	var names []string

	tests := []struct {
		name     string
		defs     []Definition
		code     DefinitionErrorCode
		sentinel error
		message  string
	}{
		{
			name:     "positional_twice",
			defs:     []Definition{Positional("a"), Positional("a")},
			code:     PositionalDefinedTwice,
			sentinel: ErrPositionalDefinedTwice,
			message:  "positional argument defined twice: 'a'",
		},
		{
			name:     "two_trails",
			defs:     []Definition{Trail("a", OneOrMore), Trail("b", ZeroOrMore)},
			code:     TwoTrailsDefined,
			sentinel: ErrTwoTrailsDefined,
			message:  "two trails defined",
		},
		{
			name:     "option_twice",
			defs:     []Definition{Switch("v"), Option("v")},
			code:     OptionDefinedTwice,
			sentinel: ErrOptionDefinedTwice,
			message:  "option defined twice: 'v'",
		},
		{
			name:     "interrupt_shares_switch_name",
			defs:     []Definition{Switch("help"), Interrupt("help", nil)},
			code:     OptionDefinedTwice,
			sentinel: ErrOptionDefinedTwice,
		},
		{
			name:     "same_short_name",
			defs:     []Definition{Switch("verbose").Short('v'), Option("version").Short('v')},
			code:     SameShortName,
			sentinel: ErrSameShortName,
			message:  "short name defined twice: 'version' and 'verbose'",
		},
		{
			name:     "subcommand_twice",
			defs:     []Definition{Subcommand("a", nopHandler()), Subcommand("a", nopHandler())},
			code:     SubcommandDefinedTwice,
			sentinel: ErrSubcommandDefinedTwice,
		},
		{
			name:     "positional_and_subcommand",
			defs:     []Definition{Subcommand("a", nopHandler()), Positional("p")},
			code:     PositionalAndSubcommandMixed,
			sentinel: ErrPositionalAndSubcommandMixed,
			message:  "positional (+trail) and subcommand definitions cannot be used together",
		},
		{
			name:     "trail_and_subcommand",
			defs:     []Definition{Trail("t", ZeroOrMore), Subcommand("a", nopHandler())},
			code:     PositionalAndSubcommandMixed,
			sentinel: ErrPositionalAndSubcommandMixed,
		},
		{
			name:     "short_on_positional",
			defs:     []Definition{Positional("p").Short('p')},
			code:     InvalidShortName,
			sentinel: ErrInvalidShortName,
		},
		{
			name:     "dash_short",
			defs:     []Definition{Switch("dash").Short('-')},
			code:     InvalidShortName,
			sentinel: ErrInvalidShortName,
		},
		{
			name:     "replacement_char_short",
			defs:     []Definition{Switch("bad").Short(utf8.RuneError)},
			code:     InvalidShortName,
			sentinel: ErrInvalidShortName,
		},
		{
			name:     "nil_handler",
			defs:     []Definition{Subcommand("a", nil)},
			code:     NilHandler,
			sentinel: ErrNilHandler,
		},
		{
			name:     "switch_bound_to_string",
			defs:     []Definition{Switch("s").Bind(new(string))},
			code:     InvalidTarget,
			sentinel: ErrInvalidTarget,
		},
		{
			name:     "trail_bound_to_scalar",
			defs:     []Definition{Trail("t", OneOrMore).Bind(&flag)},
			code:     InvalidTarget,
			sentinel: ErrInvalidTarget,
		},
		{
			name:     "passthrough_name_required",
			defs:     []Definition{Switch("rest").Bind(&names)},
			code:     InvalidTarget,
			sentinel: ErrInvalidTarget,
		},
		{
			name:     "interrupt_bound",
			defs:     []Definition{Interrupt("help", nil).Bind(&flag)},
			code:     InvalidTarget,
			sentinel: ErrInvalidTarget,
		},
		{
			name:     "nil_pointer_target",
			defs:     []Definition{Option("o").Bind((*int)(nil))},
			code:     InvalidTarget,
			sentinel: ErrInvalidTarget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Compile(tt.defs)
			require.Error(t, err)
			assert.Nil(t, set, "no partial result")

			var de *DefinitionError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.code, de.Code)
			assert.ErrorIs(t, err, tt.sentinel)
			if tt.message != "" {
				assert.EqualError(t, err, tt.message)
			}
		})
	}
}

// The first violation in input order wins.
func TestCompileReportsFirstError(t *testing.T) {
	_, err := Compile([]Definition{
		Switch("v"),
		Positional("p"),
		Positional("p"),
		Switch("v"),
	})
	assert.ErrorIs(t, err, ErrPositionalDefinedTwice)
}

func TestCompileOptionalAliases(t *testing.T) {
	_, err := Compile([]Definition{
		Switch("a").Short('a'),
		Switch("b"),
		Option("c").Short('c'),
	})
	assert.NoError(t, err)
}

package parg

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commonOpts struct {
	Verbose int `parg:"switch short:v help:'More output.'"`
}

type copyOpts struct {
	commonOpts
	Source    string   `parg:"positional help:'File to copy.'"`
	OutputDir string   `parg:"option short:o param:DIR"`
	Exclude   []string `parg:"option short:x name:skip"`
	DryRun    bool     `parg:"switch"`
	Files     []string `parg:"trail optional"`
	Ignored   string   `parg:"-"`
	Untagged  int
}

func TestFromStruct(t *testing.T) {
	var opts copyOpts
	defs, err := FromStruct(&opts)
	require.NoError(t, err)

	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name()
	}
	assert.Equal(t, []string{"verbose", "source", "output-dir", "skip", "dry-run", "files"}, names)

	assert.Equal(t, KindSwitch, defs[0].Kind())
	assert.Equal(t, "More output.", defs[0].HelpText())
	alias, ok := defs[0].Alias()
	assert.True(t, ok)
	assert.Equal(t, 'v', alias)

	assert.Equal(t, "DIR", defs[2].ParamName())
	assert.Equal(t, KindTrail, defs[5].Kind())
	assert.Equal(t, ZeroOrMore, defs[5].Arity())

	assert.Same(t, &opts.Verbose, defs[0].Target())
	assert.Same(t, &opts.OutputDir, defs[2].Target())
}

func TestFromStructRun(t *testing.T) {
	var opts copyOpts
	defs, err := FromStruct(&opts)
	require.NoError(t, err)

	_, err = Run("cp", []string{"-vv", "src.txt", "-o", "out", "--skip", "a", "--dry-run", "x", "y"}, defs, RunOpts{})
	require.NoError(t, err)

	assert.Equal(t, copyOpts{
		commonOpts: commonOpts{Verbose: 2},
		Source:     "src.txt",
		OutputDir:  "out",
		Exclude:    []string{"a"},
		DryRun:     true,
		Files:      []string{"x", "y"},
	}, opts)
}

func TestFromStructSharesLayout(t *testing.T) {
	var a, b copyOpts
	_, err := FromStruct(&a)
	require.NoError(t, err)
	defs, err := FromStruct(&b)
	require.NoError(t, err)

	assert.Same(t, &b.Source, defs[1].Target(), "each call binds its own struct")
}

func TestFromStructErrors(t *testing.T) {
	type unexported struct {
		name string `parg:"positional"`
	}
	type optionalOption struct {
		Out string `parg:"option optional"`
	}
	type longShort struct {
		Out string `parg:"option short:out"`
	}

	tests := []struct {
		name string
		dst  any
		err  error
	}{
		{"nil", nil, ErrNotStructPtr},
		{"not_pointer", copyOpts{}, ErrNotStructPtr},
		{"pointer_to_int", new(int), ErrNotStructPtr},
		{"nil_struct_pointer", (*copyOpts)(nil), ErrNotStructPtr},
		{"unexported_field", &unexported{}, ErrInvalidStructTag},
		{"optional_option", &optionalOption{}, ErrInvalidStructTag},
		{"long_short", &longShort{}, ErrInvalidStructTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromStruct(tt.dst)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestFieldDefinitionShort(t *testing.T) {
	sf := reflect.StructField{Name: "Output"}

	def, err := fieldDefinition(sf, "option short:o")
	require.NoError(t, err)
	alias, ok := def.Alias()
	assert.True(t, ok)
	assert.Equal(t, 'o', alias)

	def, err = fieldDefinition(sf, "option short:é")
	require.NoError(t, err)
	alias, _ = def.Alias()
	assert.Equal(t, 'é', alias)

	for _, short := range []string{"\xff", "''", "ab"} {
		_, err := fieldDefinition(sf, "option short:"+short)
		assert.ErrorIs(t, err, ErrInvalidStructTag, short)
	}
}

func TestDecodeFieldTag(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		kind     Kind
		optional bool
		subs     map[string]string
	}{
		{"kind_only", "switch", KindSwitch, false, map[string]string{}},
		{"optional_trail", "trail optional", KindTrail, true, map[string]string{}},
		{"modifier_first", "optional trail", KindTrail, true, map[string]string{}},
		{"bare_values", "option short:o param:DIR", KindOption, false, map[string]string{"short": "o", "param": "DIR"}},
		{"quoted_value", "positional help:'Input file, or stdin.'", KindPositional, false, map[string]string{"help": "Input file, or stdin."}},
		{"escaped_quote", `option help:'It\'s here.'`, KindOption, false, map[string]string{"help": "It's here."}},
		{"kept_backslash", `option help:'a\nb'`, KindOption, false, map[string]string{"help": `a\nb`}},
		{"empty_quoted", "option help:''", KindOption, false, map[string]string{"help": ""}},
		{"extra_spaces", "  switch \t name:dry  ", KindSwitch, false, map[string]string{"name": "dry"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft, err := decodeFieldTag(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, ft.kind)
			assert.Equal(t, tt.optional, ft.optional)
			assert.Equal(t, tt.subs, ft.subs)
		})
	}
}

func TestDecodeFieldTagErrors(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		msg  string
	}{
		{"empty", "", `missing kind in ""`},
		{"no_kind", "short:v", `missing kind in "short:v"`},
		{"two_kinds", "switch option", "more than one kind"},
		{"unknown_word", "switch loud", `unknown word "loud"`},
		{"unknown_key", "switch color:red", `unknown key "color"`},
		{"duplicate_key", "switch name:a name:b", `key "name" given twice`},
		{"unterminated", "option help:'oops", "unterminated quoted value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeFieldTag(tt.tag)
			assert.ErrorIs(t, err, ErrInvalidStructTag)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestSubTag(t *testing.T) {
	v, err := SubTag("option short:x help:'Skip files.'", HelpSubTag)
	require.NoError(t, err)
	assert.Equal(t, "Skip files.", v)

	_, err = SubTag("option short:x", ParamSubTag)
	assert.ErrorIs(t, err, ErrSubTagNotFound)

	_, err = SubTag("bogus", ParamSubTag)
	assert.ErrorIs(t, err, ErrInvalidStructTag)
}

func TestKebabCase(t *testing.T) {
	tests := map[string]string{
		"Verbose":   "verbose",
		"OutputDir": "output-dir",
		"HTTPPort":  "http-port",
		"ID":        "id",
		"Log_Level": "log-level",
		"V2Name":    "v2-name",
		"dryRun":    "dry-run",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, kebabCase(in))
		})
	}
}

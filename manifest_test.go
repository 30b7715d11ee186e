package parg

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tarTOML = `
program = "tar"
description = "Stores and extracts files from an archive."
version = "1.0.0"

[[args]]
name = "verbose"
kind = "switch"
short = "v"

[[args]]
name = "file"
kind = "option"
short = "f"
param = "ARCHIVE"
help = "Use ARCHIVE."

[[args]]
name = "help"
kind = "interrupt"
short = "h"

[[args]]
name = "create"
kind = "subcommand"
description = "Create an archive."

  [[args.args]]
  name = "paths"
  kind = "trail"
`

const tarYAML = `
program: tar
description: Stores and extracts files from an archive.
version: 1.0.0
args:
  - name: verbose
    kind: switch
    short: v
  - name: file
    kind: option
    short: f
    param: ARCHIVE
    help: Use ARCHIVE.
  - name: help
    kind: interrupt
    short: h
  - name: create
    kind: subcommand
    description: Create an archive.
    args:
      - name: paths
        kind: trail
`

const tarJSON = `{
  "program": "tar",
  "description": "Stores and extracts files from an archive.",
  "version": "1.0.0",
  "args": [
    {"name": "verbose", "kind": "switch", "short": "v"},
    {"name": "file", "kind": "option", "short": "f", "param": "ARCHIVE", "help": "Use ARCHIVE."},
    {"name": "help", "kind": "interrupt", "short": "h"},
    {
      "name": "create",
      "kind": "subcommand",
      "description": "Create an archive.",
      "args": [{"name": "paths", "kind": "trail"}]
    }
  ]
}`

var tarManifest = &Manifest{
	Program:     "tar",
	Description: "Stores and extracts files from an archive.",
	Version:     "1.0.0",
	Args: []ManifestArg{
		{Name: "verbose", Kind: "switch", Short: "v"},
		{Name: "file", Kind: "option", Short: "f", Param: "ARCHIVE", Help: "Use ARCHIVE."},
		{Name: "help", Kind: "interrupt", Short: "h"},
		{
			Name:        "create",
			Kind:        "subcommand",
			Description: "Create an archive.",
			Args:        []ManifestArg{{Name: "paths", Kind: "trail"}},
		},
	},
}

func TestDecodeManifest(t *testing.T) {
	tests := []struct {
		format ManifestFormat
		data   string
	}{
		{FormatTOML, tarTOML},
		{FormatYAML, tarYAML},
		{FormatJSON, tarJSON},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			m, err := DecodeManifest([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Equal(t, tarManifest, m)
		})
	}
}

func TestDecodeManifestErrors(t *testing.T) {
	tests := []struct {
		name   string
		format ManifestFormat
		data   string
	}{
		{"toml_unknown_key", FormatTOML, "program = \"x\"\ncolour = \"red\"\n"},
		{"toml_nested_unknown_key", FormatTOML, "[[args]]\nname = \"a\"\nkind = \"switch\"\nalias = \"b\"\n"},
		{"toml_syntax", FormatTOML, "program = \n"},
		{"yaml_unknown_key", FormatYAML, "program: x\ncolour: red\n"},
		{"yaml_wrong_type", FormatYAML, "args: 3\n"},
		{"json_unknown_key", FormatJSON, `{"program": "x", "colour": "red"}`},
		{"json_syntax", FormatJSON, `{"program": `},
		{"unknown_format", ManifestFormat("ini"), "program=x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeManifest([]byte(tt.data), tt.format)
			assert.ErrorIs(t, err, ErrInvalidManifest)
		})
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()

	write := func(name, data string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
		return path
	}

	t.Run("by_extension", func(t *testing.T) {
		for name, data := range map[string]string{"a.toml": tarTOML, "b.yml": tarYAML, "c.YAML": tarYAML, "d.json": tarJSON} {
			m, err := LoadManifest(write(name, data))
			require.NoError(t, err, name)
			assert.Equal(t, tarManifest, m, name)
		}
	})

	t.Run("program_from_file_name", func(t *testing.T) {
		m, err := LoadManifest(write("mytool.toml", "[[args]]\nname = \"x\"\nkind = \"positional\"\n"))
		require.NoError(t, err)
		assert.Equal(t, "mytool", m.Program)
	})

	t.Run("unsupported_extension", func(t *testing.T) {
		_, err := LoadManifest(write("tool.ini", "program=x"))
		assert.ErrorIs(t, err, ErrInvalidManifest)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := LoadManifest(filepath.Join(dir, "nope.toml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("error_names_path", func(t *testing.T) {
		path := write("bad.json", "{")
		_, err := LoadManifest(path)
		assert.ErrorIs(t, err, ErrInvalidManifest)
		assert.ErrorContains(t, err, path)
	})
}

func TestManifestDefinitions(t *testing.T) {
	var gotName string
	var gotChild *Manifest
	factory := func(name string, child *Manifest) Handler {
		gotName, gotChild = name, child
		return nopHandler()
	}

	defs, err := tarManifest.Definitions(ManifestOpts{Subcommand: factory})
	require.NoError(t, err)
	require.Len(t, defs, 4)

	assert.Equal(t, KindSwitch, defs[0].Kind())
	assert.Equal(t, KindOption, defs[1].Kind())
	assert.Equal(t, "ARCHIVE", defs[1].ParamName())
	assert.Equal(t, "Use ARCHIVE.", defs[1].HelpText())
	assert.Equal(t, KindInterrupt, defs[2].Kind())
	assert.Equal(t, "Print this help message.", defs[2].HelpText())
	assert.Equal(t, KindSubcommand, defs[3].Kind())

	assert.Equal(t, "create", gotName)
	assert.Equal(t, &Manifest{
		Program:     "tar create",
		Description: "Create an archive.",
		Version:     "1.0.0",
		Args:        []ManifestArg{{Name: "paths", Kind: "trail"}},
	}, gotChild)

	_, err = Compile(defs)
	assert.NoError(t, err)
}

func TestManifestInterrupts(t *testing.T) {
	m := &Manifest{
		Program:     "tool",
		Description: "Does things.",
		Version:     "2.0.0",
		Args: []ManifestArg{
			{Name: "help", Kind: "interrupt"},
			{Name: "version", Kind: "interrupt"},
			{Name: "stop", Kind: "interrupt"},
		},
	}
	defs, err := m.Definitions(ManifestOpts{})
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = Run("tool", []string{"--version"}, defs, RunOpts{Output: &out})
	require.NoError(t, err)
	assert.Equal(t, "2.0.0\n", out.String())

	out.Reset()
	_, err = Run("tool", []string{"--help"}, defs, RunOpts{Output: &out})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Description:\n  Does things.\n")

	outcome, err := Run("tool", []string{"--stop"}, defs, RunOpts{Output: &out})
	require.NoError(t, err)
	assert.Equal(t, "stop", outcome.Interrupted)
}

func TestManifestPassthrough(t *testing.T) {
	m := &Manifest{Args: []ManifestArg{{Kind: "passthrough"}, {Name: "x", Kind: "switch"}}}
	defs, err := m.Definitions(ManifestOpts{})
	require.NoError(t, err)

	set := mustCompile(t, defs...)
	_, ok := set.flag(TerminatorName)
	assert.True(t, ok)
}

func TestManifestDefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		arg  ManifestArg
		msg  string
	}{
		{"unknown_kind", ManifestArg{Name: "a", Kind: "flag"}, `unknown kind "flag"`},
		{"optional_switch", ManifestArg{Name: "a", Kind: "switch", Optional: true}, "optional only applies to trails"},
		{"args_on_option", ManifestArg{Name: "a", Kind: "option", Args: []ManifestArg{{Name: "b", Kind: "switch"}}}, "only apply to subcommands"},
		{"long_short", ManifestArg{Name: "a", Kind: "switch", Short: "ab"}, `short name "ab" must be a single character`},
		{"invalid_utf8_short", ManifestArg{Name: "a", Kind: "switch", Short: "\xff"}, `short name "\xff" must be a single character`},
		{"no_factory", ManifestArg{Name: "a", Kind: "subcommand"}, `no subcommand factory for "a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Manifest{Program: "tool", Args: []ManifestArg{tt.arg}}
			_, err := m.Definitions(ManifestOpts{})
			assert.ErrorIs(t, err, ErrInvalidManifest)
			assert.ErrorContains(t, err, tt.msg)
			assert.ErrorContains(t, err, `args[0] ("a")`)
		})
	}
}

func TestExtendProgram(t *testing.T) {
	assert.Equal(t, "git", extendProgram("", "git"))
	assert.Equal(t, "git remote", extendProgram("git", "remote"))
}

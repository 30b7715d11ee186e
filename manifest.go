package parg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ManifestFormat names the encoding of a manifest file.
type ManifestFormat string

const (
	FormatTOML ManifestFormat = "toml"
	FormatYAML ManifestFormat = "yaml"
	FormatJSON ManifestFormat = "json"
)

// Manifest is a declarative definition list read from a file.
//
//	program = "tar"
//	description = "Stores and extracts files from an archive."
//	version = "1.0.0"
//
//	[[args]]
//	name = "verbose"
//	kind = "switch"
//	short = "v"
//
//	[[args]]
//	name = "help"
//	kind = "interrupt"
//	short = "h"
type Manifest struct {
	Program     string        `toml:"program" yaml:"program" json:"program"`
	Description string        `toml:"description" yaml:"description" json:"description"`
	Version     string        `toml:"version" yaml:"version" json:"version"`
	Args        []ManifestArg `toml:"args" yaml:"args" json:"args"`
}

// ManifestArg describes one argument. Kind is one of positional, trail,
// switch, option, interrupt, subcommand or passthrough. Interrupts named
// "help" and "version" print the help message and the manifest version.
type ManifestArg struct {
	Name  string `toml:"name" yaml:"name" json:"name"`
	Kind  string `toml:"kind" yaml:"kind" json:"kind"`
	Short string `toml:"short" yaml:"short" json:"short"`
	Param string `toml:"param" yaml:"param" json:"param"`
	Help  string `toml:"help" yaml:"help" json:"help"`
	// Optional makes a trail accept zero values.
	Optional bool `toml:"optional" yaml:"optional" json:"optional"`

	// Subcommands only.
	Description string        `toml:"description" yaml:"description" json:"description"`
	Args        []ManifestArg `toml:"args" yaml:"args" json:"args"`
}

// ManifestOpts configures Manifest.Definitions.
type ManifestOpts struct {
	// Subcommand builds the handler of a subcommand. child describes the
	// subcommand's own arguments; its Program is the extended label.
	// Required when the manifest defines subcommands.
	Subcommand func(name string, child *Manifest) Handler
}

// LoadManifest reads the manifest at path. The format follows the file
// extension: .toml, .yaml or .yml, .json.
func LoadManifest(path string) (*Manifest, error) {
	format, err := manifestFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	m, err := DecodeManifest(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Program == "" {
		m.Program = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

func manifestFormat(path string) (ManifestFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unsupported file extension %q", ErrInvalidManifest, filepath.Ext(path))
}

// DecodeManifest decodes data in the given format. Unknown keys are
// rejected in every format.
func DecodeManifest(data []byte, format ManifestFormat) (*Manifest, error) {
	var m Manifest

	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &m)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %q", ErrInvalidManifest, undecoded[0].String())
		}

	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
		}

	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
		}

	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidManifest, format)
	}
	return &m, nil
}

// Definitions converts the manifest into unbound definitions. Structural
// rules are left to Compile; only malformed entries are reported here.
func (m *Manifest) Definitions(opts ManifestOpts) ([]Definition, error) {
	defs := make([]Definition, 0, len(m.Args))
	for i, arg := range m.Args {
		def, err := m.definition(arg, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: args[%d] (%q): %v", ErrInvalidManifest, i, arg.Name, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (m *Manifest) definition(arg ManifestArg, opts ManifestOpts) (Definition, error) {
	var def Definition
	switch strings.ToLower(arg.Kind) {
	case "positional":
		def = Positional(arg.Name)
	case "trail":
		arity := OneOrMore
		if arg.Optional {
			arity = ZeroOrMore
		}
		def = Trail(arg.Name, arity)
	case "switch":
		def = Switch(arg.Name)
	case "option":
		def = Option(arg.Name)
	case "passthrough":
		def = Switch(TerminatorName)
	case "interrupt":
		def = m.interrupt(arg.Name)
	case "subcommand":
		if opts.Subcommand == nil {
			return Definition{}, fmt.Errorf("no subcommand factory for %q", arg.Name)
		}
		child := &Manifest{
			Program:     extendProgram(m.Program, arg.Name),
			Description: arg.Description,
			Version:     m.Version,
			Args:        arg.Args,
		}
		def = Subcommand(arg.Name, opts.Subcommand(arg.Name, child))
	default:
		return Definition{}, fmt.Errorf("unknown kind %q", arg.Kind)
	}

	if def.kind != KindTrail && arg.Optional {
		return Definition{}, fmt.Errorf("optional only applies to trails")
	}
	if def.kind != KindSubcommand && (arg.Description != "" || len(arg.Args) > 0) {
		return Definition{}, fmt.Errorf("description and args only apply to subcommands")
	}

	if arg.Short != "" {
		r, size := utf8.DecodeRuneInString(arg.Short)
		if r == utf8.RuneError || size != len(arg.Short) {
			return Definition{}, fmt.Errorf("short name %q must be a single character", arg.Short)
		}
		def = def.Short(r)
	}
	if arg.Param != "" {
		def = def.Param(arg.Param)
	}
	if arg.Help != "" {
		def = def.Help(arg.Help)
	}
	return def, nil
}

func (m *Manifest) interrupt(name string) Definition {
	switch name {
	case HelpName:
		return HelpInterrupt(m.Description)
	case VersionName:
		return VersionInterrupt(m.Version)
	}
	return Interrupt(name, nil)
}

func extendProgram(program, name string) string {
	if program == "" {
		return name
	}
	return program + " " + name
}

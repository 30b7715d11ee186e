// Command parg loads an argument manifest and prints the events the parser
// engine recognizes in a command line, one per line.
//
//	parg tar.toml -- -xvf archive.tar
//	parg --format json tar.yaml -- extract --verbose
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	parg "github.com/SimonDaKappa/go-parg"
)

const description = `
	Loads an argument manifest (TOML, YAML or JSON) and prints every
	argument recognized in the tokens following "--".

	Defaults for these options can be given as a JSON object in the
	PARG_DEFAULTS environment variable.
`

func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:], []byte(os.Getenv("PARG_DEFAULTS"))); err != nil {
		var reported *parg.ReportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "parg: %v\n", err)
		}
		os.Exit(parg.ExitCode(err))
	}
}

type options struct {
	Manifest  string `parg:"positional help:'Manifest file (.toml, .yaml, .yml or .json).'"`
	Format    string `parg:"option short:f param:FORMAT help:'Event output format, text or json.'"`
	LogLevel  string `parg:"option param:LEVEL help:'Log level: debug, info, warn or error.'"`
	LogFormat string `parg:"option param:FORMAT help:'Log format, text or json.'"`
}

// run parses the arguments of parg itself, then dumps the manifest parse.
func run(outW, errW io.Writer, args []string, defaults []byte) error {
	opts := options{Format: "text", LogLevel: "warn", LogFormat: "text"}
	defs, err := parg.FromStruct(&opts)
	if err != nil {
		return err
	}

	var tokens []string
	defs = append(defs,
		parg.Passthrough(&tokens),
		parg.HelpInterrupt(description).Short('h'),
		parg.VersionInterrupt(""),
	)

	outcome, err := parg.Execute("parg", args, defs, parg.RunOpts{
		Output:    outW,
		ErrOutput: errW,
		Defaults:  defaults,
	})
	if err != nil || outcome.WasInterrupted() {
		return err
	}

	if opts.Format != "text" && opts.Format != "json" {
		return &parg.ParseError{
			Code:  parg.InvalidValue,
			Name:  "format",
			Token: opts.Format,
			Err:   errors.New("expected text or json"),
		}
	}

	logger := newLogger(opts.LogLevel, opts.LogFormat, errW)
	m, err := parg.LoadManifest(opts.Manifest)
	if err != nil {
		return err
	}
	logger.Info("Loaded manifest.", "path", opts.Manifest, "program", m.Program, "args", len(m.Args))

	d := &dumper{out: outW, errOut: errW, json: opts.Format == "json", logger: logger}
	_, err = d.dump(m, tokens)
	return err
}

// record is one printed event.
type record struct {
	Program  string   `json:"program"`
	Kind     string   `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Value    string   `json:"value,omitempty"`
	Args     []string `json:"args,omitempty"`
	ExitCode int      `json:"exit_code,omitempty"`
}

type dumper struct {
	out    io.Writer
	errOut io.Writer
	json   bool
	logger *slog.Logger
}

// dump parses args against m and prints the events. Subcommands described
// in m are dumped recursively by their handler.
func (d *dumper) dump(m *parg.Manifest, args []string) (parg.Outcome, error) {
	defs, err := m.Definitions(parg.ManifestOpts{Subcommand: d.subcommand})
	if err != nil {
		return parg.Outcome{}, err
	}
	set, err := parg.Compile(defs)
	if err != nil {
		return parg.Outcome{}, fmt.Errorf("%s: %w", m.Program, err)
	}

	p := parg.NewParse(set, args, parg.ParseOpts{Program: m.Program, Logger: d.logger})
	for ev, err := range p.All() {
		if err != nil {
			return parg.Outcome{}, d.report(m.Program, set, err)
		}

		rec := record{Program: m.Program, Kind: ev.Kind.String(), Name: ev.Name, Value: ev.Value}
		switch {
		case ev.Kind == parg.EventSubcommand:
			rec.ExitCode = ev.Outcome.ExitCode
		case ev.Kind == parg.EventSwitch && ev.Name == parg.TerminatorName:
			rec.Kind = "passthrough"
			rec.Args = p.TakeRemainder()
		}
		if err := d.print(rec, ev); err != nil {
			return parg.Outcome{}, err
		}
	}
	return parg.Outcome{Program: m.Program}, nil
}

func (d *dumper) subcommand(name string, child *parg.Manifest) parg.Handler {
	return parg.HandlerFunc(func(program string, args []string) (parg.Outcome, error) {
		child.Program = program
		return d.dump(child, args)
	})
}

func (d *dumper) print(rec record, ev parg.Event) error {
	if d.json {
		return json.NewEncoder(d.out).Encode(rec)
	}
	line := ev.String()
	if rec.Args != nil {
		line = fmt.Sprintf("passthrough %q", rec.Args)
	}
	_, err := fmt.Fprintf(d.out, "%s: %s\n", rec.Program, line)
	return err
}

// report prints a parse error once, with the usage line of the command
// it belongs to.
func (d *dumper) report(program string, set *parg.DefinitionSet, err error) error {
	var reported *parg.ReportedError
	var pe *parg.ParseError
	if errors.As(err, &reported) || !errors.As(err, &pe) {
		return err
	}
	fmt.Fprintf(d.errOut, "error: %v\n", err)
	parg.NewHelp(program, set, parg.HelpOpts{Output: d.errOut}).PrintUsage()
	return &parg.ReportedError{Err: err}
}

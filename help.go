package parg

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
)

// HelpOpts configures NewHelp.
type HelpOpts struct {
	// Output defaults to os.Stdout.
	Output io.Writer
	// Width is the display width help text is wrapped to. Defaults to
	// DefaultHelpWidth; a negative width disables wrapping.
	Width int
}

// Help renders usage lines and help messages for a compiled definition set.
// Interrupt callbacks receive one.
type Help struct {
	// Program is the command path, like "git" or "git remote".
	Program string
	Output  io.Writer
	Width   int

	set *DefinitionSet
}

// NewHelp returns a renderer for set, labelled with program.
func NewHelp(program string, set *DefinitionSet, opts HelpOpts) *Help {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Width == 0 {
		opts.Width = DefaultHelpWidth
	}
	return &Help{Program: program, Output: opts.Output, Width: opts.Width, set: set}
}

// Usage returns the one-line synopsis, e.g.
//
//	cp [-h, OPTS...] source dest [dest...]
func (h *Help) Usage() string {
	var sb strings.Builder
	sb.WriteString(h.Program)

	if options := h.options(); len(options) > 0 {
		sb.WriteString(h.optionsSynopsis(options))
	}

	for _, name := range h.set.Positionals() {
		sb.WriteByte(' ')
		sb.WriteString(name)
	}

	if trail, ok := h.set.Trail(); ok {
		sb.WriteByte(' ')
		sb.WriteString(trailSynopsis(trail))
	}

	if subcommands := h.set.Subcommands(); len(subcommands) > 0 {
		sb.WriteString(" { ")
		sb.WriteString(strings.Join(subcommands, " | "))
		sb.WriteString(" } ...")
	}
	return sb.String()
}

func (h *Help) optionsSynopsis(options []Definition) string {
	if !h.set.HelpDefined() {
		return " [opts...]"
	}

	first := LongPrefix + HelpName
	if def, _ := h.set.flag(HelpName); def.short != 0 {
		first = ShortPrefix + string(def.short)
	}
	if len(options) > 1 {
		return " [" + first + ", OPTS...]"
	}
	return " [" + first + "]"
}

func trailSynopsis(trail Definition) string {
	if trail.arity == ZeroOrMore {
		return fmt.Sprintf("[%s...]", trail.name)
	}
	return fmt.Sprintf("%s [%s...]", trail.name, trail.name)
}

// PrintUsage writes "Usage: " and the synopsis to Output.
func (h *Help) PrintUsage() {
	fmt.Fprintf(h.Output, "%s%s\n", UsagePrefix, h.Usage())
}

// Print writes the help message to Output.
func (h *Help) Print(description string) {
	io.WriteString(h.Output, h.Message(description))
}

// Message builds the full help message. The description may be empty.
// Sections are separated by a blank line.
func (h *Help) Message(description string) string {
	var sb strings.Builder
	sb.WriteString("Usage:\n  ")
	sb.WriteString(h.Usage())
	sb.WriteByte('\n')

	if strings.TrimSpace(description) != "" {
		sb.WriteString("\nDescription:\n")
		h.writeText(&sb, "  ", description)
	}

	trail, hasTrail := h.set.Trail()
	if positionals := h.set.Positionals(); len(positionals) > 0 || hasTrail {
		sb.WriteString("\nPositional arguments:\n")
		for _, name := range positionals {
			def, _ := h.set.positionalByName(name)
			h.writeEntry(&sb, name, def.help)
		}
		if hasTrail {
			h.writeEntry(&sb, trailSynopsis(trail), trail.help)
		}
	}

	if h.set.HasSubcommands() {
		sb.WriteString("\nSubcommands:\n")
		for _, def := range h.set.defs {
			if def.kind == KindSubcommand {
				h.writeEntry(&sb, def.name, def.help)
			}
		}
	}

	if options := h.options(); len(options) > 0 {
		sb.WriteByte('\n')
		h.writeOptions(&sb, options)
	}
	return sb.String()
}

func (h *Help) writeEntry(sb *strings.Builder, title, help string) {
	sb.WriteString("  ")
	sb.WriteString(title)
	sb.WriteByte('\n')
	h.writeText(sb, "    ", help)
}

func (h *Help) writeOptions(sb *strings.Builder, options []Definition) {
	var multi, interrupts bool
	for _, def := range options {
		multi = multi || repeatable(def)
		interrupts = interrupts || def.kind == KindInterrupt
	}

	sb.WriteString("Optional arguments:\n")
	if multi {
		sb.WriteString("  ( * ) This option can be given multiple times.\n")
	}
	if interrupts {
		sb.WriteString("  ( X ) This option interrupts normal parsing.\n")
	}
	if multi || interrupts {
		sb.WriteByte('\n')
	}

	for _, def := range options {
		sb.WriteString("  ")
		sb.WriteString(LongPrefix + def.name)
		if def.short != 0 {
			sb.WriteString(", " + ShortPrefix + string(def.short))
		}
		if def.kind == KindOption {
			sb.WriteByte(' ')
			sb.WriteString(paramName(def))
		}
		switch {
		case repeatable(def):
			sb.WriteString(" ( * )")
		case def.kind == KindInterrupt:
			sb.WriteString(" ( X )")
		}
		sb.WriteByte('\n')
		h.writeText(sb, "      ", def.help)
	}
}

func paramName(def Definition) string {
	if def.param != "" {
		return def.param
	}
	return strings.ToUpper(def.name)
}

// options returns the switches, options and interrupts in definition order.
func (h *Help) options() []Definition {
	var options []Definition
	for _, def := range h.set.defs {
		if def.kind.isNamedFlag() {
			options = append(options, def)
		}
	}
	return options
}

// writeText writes text trimmed and wrapped, every line prefixed.
func (h *Help) writeText(sb *strings.Builder, prefix, text string) {
	width := h.Width - runewidth.StringWidth(prefix)
	for _, line := range trimLines(text) {
		for _, wrapped := range wrapLine(line, width) {
			if wrapped != "" {
				sb.WriteString(prefix)
			}
			sb.WriteString(wrapped)
			sb.WriteByte('\n')
		}
	}
}

// trimLines drops blank lines at both ends of text and trims every line.
func trimLines(text string) []string {
	lines := strings.Split(text, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}

// wrapLine breaks line at spaces so no piece exceeds width display
// columns. Words wider than width are split.
func wrapLine(line string, width int) []string {
	if width <= 0 || runewidth.StringWidth(line) <= width {
		return []string{line}
	}

	var (
		out     []string
		current strings.Builder
		used    int
	)
	flush := func() {
		out = append(out, current.String())
		current.Reset()
		used = 0
	}

	for _, word := range strings.Fields(line) {
		w := runewidth.StringWidth(word)
		if w > width {
			if used > 0 {
				flush()
			}
			pieces := strings.Split(runewidth.Wrap(word, width), "\n")
			out = append(out, pieces[:len(pieces)-1]...)
			word = pieces[len(pieces)-1]
			w = runewidth.StringWidth(word)
		}
		if used > 0 && used+1+w > width {
			flush()
		}
		if used > 0 {
			current.WriteByte(' ')
			used++
		}
		current.WriteString(word)
		used += w
	}
	if used > 0 {
		flush()
	}
	return out
}

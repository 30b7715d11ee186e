package parg

import (
	"slices"
	"unicode"
	"unicode/utf8"
)

// DefinitionSet is the compiled, validated form of a definition list. It is
// read-only after Compile and may be shared by any number of parses.
type DefinitionSet struct {
	defs        []Definition
	positional  []int          // slot order, indices into defs
	trail       int            // index into defs, -1 without a trail
	flags       map[string]int // long name -> index (switch, option, interrupt)
	shorts      map[rune]string
	subcommands map[string]int
	helpDefined bool
}

// Compile checks defs and builds the lookup tables used by the parser
// engine. It either returns a fully valid set or a *DefinitionError.
func Compile(defs []Definition) (*DefinitionSet, error) {
	set := &DefinitionSet{
		defs:        slices.Clone(defs),
		trail:       -1,
		flags:       make(map[string]int),
		shorts:      make(map[rune]string),
		subcommands: make(map[string]int),
	}

	positionalNames := make(map[string]struct{})

	for i, def := range set.defs {
		if err := checkShort(def); err != nil {
			return nil, err
		}

		switch def.kind {
		case KindPositional:
			if _, dup := positionalNames[def.name]; dup {
				return nil, &DefinitionError{Code: PositionalDefinedTwice, Name: def.name}
			}
			positionalNames[def.name] = struct{}{}
			set.positional = append(set.positional, i)

		case KindTrail:
			if set.trail >= 0 {
				return nil, &DefinitionError{Code: TwoTrailsDefined, Name: def.name}
			}
			set.trail = i

		case KindSwitch, KindOption, KindInterrupt:
			if _, dup := set.flags[def.name]; dup {
				return nil, &DefinitionError{Code: OptionDefinedTwice, Name: def.name}
			}
			if alias, ok := def.Alias(); ok {
				if existing, taken := set.shorts[alias]; taken && existing != def.name {
					return nil, &DefinitionError{Code: SameShortName, Name: def.name, Existing: existing}
				}
				set.shorts[alias] = def.name
			}
			set.flags[def.name] = i
			if def.kind == KindInterrupt && def.name == HelpName {
				set.helpDefined = true
			}

		case KindSubcommand:
			if _, dup := set.subcommands[def.name]; dup {
				return nil, &DefinitionError{Code: SubcommandDefinedTwice, Name: def.name}
			}
			if def.handler == nil {
				return nil, &DefinitionError{Code: NilHandler, Name: def.name}
			}
			set.subcommands[def.name] = i
		}

		if err := checkTarget(def); err != nil {
			return nil, err
		}
	}

	if (len(set.positional) > 0 || set.trail >= 0) && len(set.subcommands) > 0 {
		return nil, &DefinitionError{Code: PositionalAndSubcommandMixed}
	}

	return set, nil
}

func checkShort(def Definition) error {
	alias, ok := def.Alias()
	if !ok {
		return nil
	}
	if !def.kind.isNamedFlag() {
		return &DefinitionError{
			Code:   InvalidShortName,
			Name:   def.name,
			Reason: def.kind.String() + " arguments cannot have a short name",
		}
	}
	if alias == '-' || alias == utf8.RuneError || unicode.IsSpace(alias) || !unicode.IsPrint(alias) {
		return &DefinitionError{
			Code:   InvalidShortName,
			Name:   def.name,
			Reason: "short names must be a printable character other than '-'",
		}
	}
	return nil
}

// Positionals returns the positional slot names in order.
func (s *DefinitionSet) Positionals() []string {
	names := make([]string, len(s.positional))
	for i, idx := range s.positional {
		names[i] = s.defs[idx].name
	}
	return names
}

// Trail returns the trail definition, if one is defined.
func (s *DefinitionSet) Trail() (Definition, bool) {
	if s.trail < 0 {
		return Definition{}, false
	}
	return s.defs[s.trail], true
}

// LookupLong returns the kind of the switch, option or interrupt with the
// given long name.
func (s *DefinitionSet) LookupLong(name string) (Kind, bool) {
	idx, ok := s.flags[name]
	if !ok {
		return 0, false
	}
	return s.defs[idx].kind, true
}

// LookupShort resolves a short alias to its long name.
func (s *DefinitionSet) LookupShort(alias rune) (string, bool) {
	name, ok := s.shorts[alias]
	return name, ok
}

// Subcommands returns the subcommand names in definition order.
func (s *DefinitionSet) Subcommands() []string {
	var names []string
	for _, def := range s.defs {
		if def.kind == KindSubcommand {
			names = append(names, def.name)
		}
	}
	return names
}

// HasSubcommands reports whether any subcommand is defined.
func (s *DefinitionSet) HasSubcommands() bool {
	return len(s.subcommands) > 0
}

// HelpDefined reports whether an interrupt named "help" is defined.
func (s *DefinitionSet) HelpDefined() bool {
	return s.helpDefined
}

// Definitions returns a copy of the definitions in input order.
func (s *DefinitionSet) Definitions() []Definition {
	return slices.Clone(s.defs)
}

func (s *DefinitionSet) flag(name string) (Definition, bool) {
	idx, ok := s.flags[name]
	if !ok {
		return Definition{}, false
	}
	return s.defs[idx], true
}

func (s *DefinitionSet) positionalAt(slot int) Definition {
	return s.defs[s.positional[slot]]
}

func (s *DefinitionSet) positionalByName(name string) (Definition, bool) {
	for _, idx := range s.positional {
		if s.defs[idx].name == name {
			return s.defs[idx], true
		}
	}
	return Definition{}, false
}

func (s *DefinitionSet) handler(name string) (Handler, bool) {
	idx, ok := s.subcommands[name]
	if !ok {
		return nil, false
	}
	return s.defs[idx].handler, true
}

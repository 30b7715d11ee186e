package parg

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// applyDefaults fills switches and options that were not given on the
// command line from RunOpts.Defaults. Values given on the command line
// always win.
//
//	{"verbose": true, "level": 2, "exclude": ["*.tmp", "*.bak"], "output": "out.txt"}
func (b *binder) applyDefaults() error {
	if len(b.opts.Defaults) == 0 {
		return nil
	}
	if !gjson.ValidBytes(b.opts.Defaults) {
		return ErrInvalidDefaults
	}

	root := gjson.ParseBytes(b.opts.Defaults)
	if b.opts.DefaultsPrefix != "" {
		root = root.Get(b.opts.DefaultsPrefix)
		if !root.Exists() {
			return nil
		}
	}

	for _, def := range b.set.defs {
		if def.target == nil || def.name == TerminatorName || b.given[def.name] > 0 {
			continue
		}
		if def.kind != KindSwitch && def.kind != KindOption {
			continue
		}

		value := root.Get(gjson.Escape(def.name))
		if !value.Exists() || value.Type == gjson.Null {
			continue
		}

		b.opts.Logger.Debug("Applying default.", "program", b.program, "name", def.name, "value", value.Raw)
		if err := b.applyDefault(def, value); err != nil {
			return err
		}
	}
	return nil
}

func (b *binder) applyDefault(def Definition, value gjson.Result) error {
	if def.kind == KindSwitch {
		return defaultSwitch(def, value)
	}

	if _, ok := collectorFor(def.target); ok && value.IsArray() {
		for _, elem := range value.Array() {
			if err := b.collect(def, elem.String()); err != nil {
				return err
			}
		}
		return nil
	}
	if _, ok := collectorFor(def.target); ok {
		return b.collect(def, value.String())
	}
	return b.assign(def, value.String())
}

func defaultSwitch(def Definition, value gjson.Result) error {
	switch t := def.target.(type) {
	case *bool:
		if value.Type != gjson.True && value.Type != gjson.False {
			return invalidValue(def.name, value.Raw, fmt.Errorf("expected a boolean"))
		}
		*t = value.Bool()
		return nil
	case Value:
		if err := t.Set(value.String()); err != nil {
			return invalidValue(def.name, value.Raw, err)
		}
		return nil
	}

	counter, ok := counterFor(def.target)
	if !ok {
		return nil
	}
	if value.Type != gjson.Number {
		return invalidValue(def.name, value.Raw, fmt.Errorf("expected a number"))
	}
	if err := setFieldValue(counter, value.Raw); err != nil {
		return invalidValue(def.name, value.Raw, err)
	}
	return nil
}

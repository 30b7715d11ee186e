package parg

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrInvalidStructTag = errors.New("invalid parg struct tag")
	ErrSubTagNotFound   = errors.New("subtag not found")
)

// This file derives definitions from struct field tags. A field takes part
// when it carries a `parg` tag following this grammar:
//
//	tag:
//	    parg:"<kind> [<modifier>]* [<subtag>]*"
//	kind:
//	    positional | trail | switch | option
//	modifier:
//	    optional                       // trails only: zero or more values
//	subtag:
//	    <key>:'<value>' | <key>:<word>  // keys: name, short, param, help
//
// Inside a quoted value a backslash escapes the quote. Untagged fields are
// ignored, and untagged embedded structs are searched for tagged fields.
//
//	type Options struct {
//		Input   string   `parg:"positional help:'File to read.'"`
//		Verbose int      `parg:"switch short:v help:'More output, repeatable.'"`
//		Exclude []string `parg:"option short:x param:PATTERN"`
//		Rest    []string `parg:"trail optional name:files"`
//	}

// fieldTag is the decoded form of one `parg` tag.
type fieldTag struct {
	kind     Kind
	optional bool
	subs     map[string]string
}

// FromStruct returns one definition per tagged field of the struct dst
// points to, each bound to its field. Definition names default to the
// kebab-cased field name ("OutputDir" becomes "output-dir").
func FromStruct(dst any) ([]Definition, error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w, got %T", ErrNotStructPtr, dst)
	}

	fields, err := layouts.getOrCreate(rv.Elem().Type(), structLayout)
	if err != nil {
		return nil, err
	}

	defs := make([]Definition, len(fields))
	for i, f := range fields {
		defs[i] = f.def.Bind(rv.Elem().FieldByIndex(f.index).Addr().Interface())
	}
	return defs, nil
}

// structLayout walks the fields of t in declaration order.
func structLayout(t reflect.Type) ([]fieldLayout, error) {
	var fields []fieldLayout
	for i := range t.NumField() {
		sf := t.Field(i)
		tag, tagged := sf.Tag.Lookup(StructTagKey)

		if !tagged {
			if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
				nested, err := structLayout(sf.Type)
				if err != nil {
					return nil, err
				}
				for _, f := range nested {
					f.index = append([]int{i}, f.index...)
					fields = append(fields, f)
				}
			}
			continue
		}
		if tag == "-" {
			continue
		}
		if !sf.IsExported() {
			return nil, fmt.Errorf("%w: field %s is not exported", ErrInvalidStructTag, sf.Name)
		}

		def, err := fieldDefinition(sf, tag)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
		fields = append(fields, fieldLayout{index: []int{i}, def: def})
	}
	return fields, nil
}

func fieldDefinition(sf reflect.StructField, tag string) (Definition, error) {
	ft, err := decodeFieldTag(tag)
	if err != nil {
		return Definition{}, err
	}

	name := kebabCase(sf.Name)
	if v, ok := ft.subs[NameSubTag]; ok {
		name = v
	}

	var def Definition
	switch ft.kind {
	case KindPositional:
		def = Positional(name)
	case KindTrail:
		arity := OneOrMore
		if ft.optional {
			arity = ZeroOrMore
		}
		def = Trail(name, arity)
	case KindSwitch:
		def = Switch(name)
	case KindOption:
		def = Option(name)
	}
	if ft.optional && ft.kind != KindTrail {
		return Definition{}, fmt.Errorf("%w: modifier %q only applies to trails", ErrInvalidStructTag, OptionalTrailTagModifier)
	}

	if v, ok := ft.subs[ShortSubTag]; ok {
		r, size := utf8.DecodeRuneInString(v)
		if r == utf8.RuneError || size != len(v) {
			return Definition{}, fmt.Errorf("%w: short name %q must be a single character", ErrInvalidStructTag, v)
		}
		def = def.Short(r)
	}
	if v, ok := ft.subs[ParamSubTag]; ok {
		def = def.Param(v)
	}
	if v, ok := ft.subs[HelpSubTag]; ok {
		def = def.Help(v)
	}
	return def, nil
}

var tagKinds = map[string]Kind{
	"positional": KindPositional,
	"trail":      KindTrail,
	"switch":     KindSwitch,
	"option":     KindOption,
}

var tagSubKeys = []string{NameSubTag, ShortSubTag, ParamSubTag, HelpSubTag}

func decodeFieldTag(tag string) (fieldTag, error) {
	ft := fieldTag{kind: -1, subs: make(map[string]string)}

	for i := 0; i < len(tag); {
		if tag[i] == ' ' || tag[i] == '\t' {
			i++
			continue
		}

		start := i
		for i < len(tag) && tag[i] != ' ' && tag[i] != '\t' && tag[i] != SubTagKeyValueDelimiter[0] {
			i++
		}
		word := tag[start:i]

		if i < len(tag) && tag[i] == SubTagKeyValueDelimiter[0] {
			if !isSubKey(word) {
				return ft, fmt.Errorf("%w: unknown key %q", ErrInvalidStructTag, word)
			}
			if _, dup := ft.subs[word]; dup {
				return ft, fmt.Errorf("%w: key %q given twice", ErrInvalidStructTag, word)
			}
			value, next, err := subTagValue(tag, i+1)
			if err != nil {
				return ft, fmt.Errorf("%w: key %q: %v", ErrInvalidStructTag, word, err)
			}
			ft.subs[word] = value
			i = next
			continue
		}

		switch kind, isKind := tagKinds[word]; {
		case isKind && ft.kind < 0:
			ft.kind = kind
		case isKind:
			return ft, fmt.Errorf("%w: more than one kind in %q", ErrInvalidStructTag, tag)
		case word == OptionalTrailTagModifier:
			ft.optional = true
		default:
			return ft, fmt.Errorf("%w: unknown word %q", ErrInvalidStructTag, word)
		}
	}

	if ft.kind < 0 {
		return ft, fmt.Errorf("%w: missing kind in %q", ErrInvalidStructTag, tag)
	}
	return ft, nil
}

func isSubKey(word string) bool {
	for _, key := range tagSubKeys {
		if word == key {
			return true
		}
	}
	return false
}

// subTagValue reads the value starting at tag[start], either a quoted
// value or a bare word, and returns it with the index following it.
func subTagValue(tag string, start int) (string, int, error) {
	if start >= len(tag) || tag[start] != SubTagScopeDelimiter {
		end := start
		for end < len(tag) && tag[end] != ' ' && tag[end] != '\t' {
			end++
		}
		return tag[start:end], end, nil
	}

	var sb strings.Builder
	escaped := false
	for i := start + 1; i < len(tag); i++ {
		c := tag[i]
		switch {
		case escaped:
			if c != SubTagScopeDelimiter && c != '\\' {
				sb.WriteByte('\\')
			}
			sb.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == SubTagScopeDelimiter:
			return sb.String(), i + 1, nil
		default:
			sb.WriteByte(c)
		}
	}
	return "", len(tag), errors.New("unterminated quoted value")
}

// SubTag returns the value of key in a `parg` tag.
func SubTag(tag, key string) (string, error) {
	ft, err := decodeFieldTag(tag)
	if err != nil {
		return "", err
	}
	v, ok := ft.subs[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrSubTagNotFound, key)
	}
	return v, nil
}

// kebabCase turns a Go identifier into a flag name: "OutputDir" becomes
// "output-dir" and "HTTPPort" becomes "http-port".
func kebabCase(name string) string {
	runes := []rune(name)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				sb.WriteByte('-')
			}
		}
		if r == '_' {
			sb.WriteByte('-')
			continue
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

package parg

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Value is implemented by targets that convert command-line strings
// themselves.
type Value interface {
	Set(string) error
}

// Collector receives every value of a repeatable argument.
type Collector interface {
	Add(string) error
}

type sliceCollector[T any] struct {
	dst *[]T
}

// SliceOf collects converted values into *dst in order.
func SliceOf[T any](dst *[]T) Collector {
	return sliceCollector[T]{dst: dst}
}

func (c sliceCollector[T]) Add(value string) error {
	var v T
	if err := setValue(&v, value); err != nil {
		return err
	}
	*c.dst = append(*c.dst, v)
	return nil
}

type setCollector[T comparable] map[T]struct{}

// SetOf collects converted values into set, dropping duplicates.
func SetOf[T comparable](set map[T]struct{}) Collector {
	return setCollector[T](set)
}

func (c setCollector[T]) Add(value string) error {
	var v T
	if err := setValue(&v, value); err != nil {
		return err
	}
	c[v] = struct{}{}
	return nil
}

var (
	valueType           = reflect.TypeFor[Value]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

///////////////////////////////////////////////////////////////////////////////
// Conversion
///////////////////////////////////////////////////////////////////////////////

// setValue converts value and stores it through target, which must be a
// non-nil pointer or implement Value.
func setValue(target any, value string) error {
	if v, ok := target.(Value); ok {
		return v.Set(value)
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("cannot assign to %T", target)
	}
	return setFieldValue(rv.Elem(), value)
}

// setFieldValue sets field from its command-line representation.
//
// Supported:
//   - strings, []byte and any (stored as string)
//   - signed and unsigned integers (with overflow checking)
//   - floats and complex numbers
//   - bools, including yes/no and on/off
//   - uuid.UUID, time.Time (several layouts) and time.Duration
//   - encoding.TextUnmarshaler and Value
//   - pointers to any of the above, allocated on demand
func setFieldValue(field reflect.Value, value string) error {
	switch field.Type() {
	case DurationType:
		return setDurationValue(field, value)
	case TimeType:
		return setTimeValue(field, value)
	}

	if field.Kind() == reflect.Pointer {
		elem := reflect.New(field.Type().Elem())
		if err := setFieldValue(elem.Elem(), value); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	if field.CanAddr() {
		switch u := field.Addr().Interface().(type) {
		case Value:
			return u.Set(value)
		case encoding.TextUnmarshaler:
			return u.UnmarshalText([]byte(value))
		}
	}

	if value == "" {
		return setEmptyValue(field)
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setIntValue(field, value)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return setUintValue(field, value)
	case reflect.Float32, reflect.Float64:
		return setFloatValue(field, value)
	case reflect.Complex64, reflect.Complex128:
		return setComplexValue(field, value)
	case reflect.Bool:
		return setBoolValue(field, value)
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.Uint8 {
			field.SetBytes([]byte(value))
			return nil
		}
	case reflect.Array:
		if field.Type() == UUIDType {
			return setUUIDValue(field, value)
		}
	case reflect.Interface:
		if field.NumMethod() == 0 {
			field.Set(reflect.ValueOf(value))
			return nil
		}
	}
	return fmt.Errorf("unsupported type: %s", field.Type())
}

func setEmptyValue(field reflect.Value) error {
	switch field.Kind() {
	case reflect.String, reflect.Slice:
		field.SetZero()
		return nil
	case reflect.Interface:
		if field.NumMethod() == 0 {
			field.Set(reflect.ValueOf(""))
			return nil
		}
	}
	return fmt.Errorf("empty value for %s", field.Type())
}

func setIntValue(field reflect.Value, value string) error {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %w", err)
	}
	if field.OverflowInt(n) {
		return fmt.Errorf("%d overflows %s", n, field.Type())
	}
	field.SetInt(n)
	return nil
}

func setUintValue(field reflect.Value, value string) error {
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fmt.Errorf("not an unsigned integer: %w", err)
	}
	if field.OverflowUint(n) {
		return fmt.Errorf("%d overflows %s", n, field.Type())
	}
	field.SetUint(n)
	return nil
}

func setFloatValue(field reflect.Value, value string) error {
	f, err := strconv.ParseFloat(value, field.Type().Bits())
	if err != nil {
		return fmt.Errorf("not a number: %w", err)
	}
	field.SetFloat(f)
	return nil
}

func setComplexValue(field reflect.Value, value string) error {
	c, err := strconv.ParseComplex(value, field.Type().Bits())
	if err != nil {
		return fmt.Errorf("not a complex number: %w", err)
	}
	field.SetComplex(c)
	return nil
}

func setBoolValue(field reflect.Value, value string) error {
	b, err := parseBool(value)
	if err != nil {
		return err
	}
	field.SetBool(b)
	return nil
}

func parseBool(value string) (bool, error) {
	switch value {
	case "yes", "on", "Yes", "On", "YES", "ON":
		return true, nil
	case "no", "off", "No", "Off", "NO", "OFF":
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("not a boolean: %q", value)
	}
	return b, nil
}

func setUUIDValue(field reflect.Value, value string) error {
	id, err := uuid.Parse(value)
	if err != nil {
		return fmt.Errorf("not a UUID: %w", err)
	}
	field.Set(reflect.ValueOf(id))
	return nil
}

func setDurationValue(field reflect.Value, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("not a duration: %w", err)
	}
	field.SetInt(int64(d))
	return nil
}

func setTimeValue(field reflect.Value, value string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			field.Set(reflect.ValueOf(t))
			return nil
		}
	}
	return fmt.Errorf("not a time: %q", value)
}

///////////////////////////////////////////////////////////////////////////////
// Type checks
///////////////////////////////////////////////////////////////////////////////

// convertible reports whether setFieldValue can assign to values of type t.
func convertible(t reflect.Type) bool {
	if t == DurationType || t == TimeType || t == UUIDType {
		return true
	}
	if reflect.PointerTo(t).Implements(valueType) || reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return true
	}

	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8
	case reflect.Interface:
		return t.NumMethod() == 0
	case reflect.Pointer:
		return convertible(t.Elem())
	}
	return false
}

// scalarTarget reports whether target takes a single converted value.
func scalarTarget(target any) bool {
	if _, ok := target.(Value); ok {
		return true
	}
	t := reflect.TypeOf(target)
	return t != nil && t.Kind() == reflect.Pointer && convertible(t.Elem())
}

// collectorFor returns a Collector appending to target, which is either a
// Collector or a pointer to a slice of convertible elements. A *[]byte is a
// scalar, not a collection.
func collectorFor(target any) (Collector, bool) {
	if c, ok := target.(Collector); ok {
		return c, true
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, false
	}
	slice := rv.Elem()
	if slice.Kind() != reflect.Slice || slice.Type() == ByteSliceType || !convertible(slice.Type().Elem()) {
		return nil, false
	}
	return reflectCollector{slice: slice}, true
}

type reflectCollector struct {
	slice reflect.Value
}

func (c reflectCollector) Add(value string) error {
	elem := reflect.New(c.slice.Type().Elem()).Elem()
	if err := setFieldValue(elem, value); err != nil {
		return err
	}
	c.slice.Set(reflect.Append(c.slice, elem))
	return nil
}

// counterFor returns the integer a counting switch increments.
func counterFor(target any) (reflect.Value, bool) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() == DurationType {
		return reflect.Value{}, false
	}
	switch rv.Elem().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Elem(), true
	}
	return reflect.Value{}, false
}

func increment(counter reflect.Value) error {
	if counter.CanInt() {
		n := counter.Int() + 1
		if counter.OverflowInt(n) {
			return fmt.Errorf("count overflows %s", counter.Type())
		}
		counter.SetInt(n)
		return nil
	}
	n := counter.Uint() + 1
	if counter.OverflowUint(n) {
		return fmt.Errorf("count overflows %s", counter.Type())
	}
	counter.SetUint(n)
	return nil
}

package parg

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// constants for token shapes
const (
	LongPrefix  = "--"
	ShortPrefix = "-"
)

// Reserved definition names.
const (
	// TerminatorName is the long name of the switch matched by a bare "--".
	// By convention everything after it is taken literally.
	TerminatorName = ""
	HelpName       = "help"
	VersionName    = "version"
)

// constants for the `parg` struct tag
const (
	StructTagKey             = "parg"
	SubTagScopeDelimiter     = byte('\'')
	SubTagKeyValueDelimiter  = ":"
	NameSubTag               = "name"
	ShortSubTag              = "short"
	ParamSubTag              = "param"
	HelpSubTag               = "help"
	OptionalTrailTagModifier = "optional"
)

// Help layout defaults.
const (
	DefaultHelpWidth = 80
	UsagePrefix      = "Usage: "
)

// reflect.TypeOf constants for type checks
var (
	UUIDType      = reflect.TypeOf(uuid.UUID{})
	TimeType      = reflect.TypeOf(time.Time{})
	DurationType  = reflect.TypeOf(time.Duration(0))
	StringType    = reflect.TypeOf("")
	ByteSliceType = reflect.TypeOf([]byte{})
)

// timeLayouts are tried in order when converting to time.Time.
var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"15:04:05",
}

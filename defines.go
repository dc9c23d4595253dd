package parse

import (
	"encoding"
	"encoding/json"
	"net"
	"net/url"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// constants for the built-in format providers
const (
	DefaultProviderName      = "default"
	DotDecimalProviderName   = "dot-decimal"
	CommaDecimalProviderName = "comma-decimal"
)

// separator conventions used by the built-in providers
const (
	DotSeparator   = "."
	CommaSeparator = ","
	ListSeparator  = ","
)

// boolean word sets recognized by the built-in providers
var (
	DefaultTrueWords  = []string{"true", "1", "yes", "on"}
	DefaultFalseWords = []string{"false", "0", "no", "off"}
)

// time layouts tried in order by the built-in providers
var DefaultTimeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"15:04:05",
}

// reflect.TypeOf constants for type checks
var (
	StringType       = reflect.TypeOf("")
	TimeType         = reflect.TypeOf(time.Time{})
	DurationType     = reflect.TypeOf(time.Duration(0))
	UUIDType         = reflect.TypeOf(uuid.UUID{})
	URLType          = reflect.TypeOf(url.URL{})
	IPType           = reflect.TypeOf(net.IP{})
	StringAnyMapType = reflect.TypeOf(map[string]any{})
	RawMessageType   = reflect.TypeOf(json.RawMessage{})

	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

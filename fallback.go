package parse

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// fallbackSupports reports whether the generic fallback has any conversion
// path for typ. Kinds outside this set cannot be coerced from text at all;
// for them an exhausted strategy walk ends in ErrUnsupportedType rather
// than ErrParseFormat.
func fallbackSupports(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.String, reflect.Slice:
		return true
	default:
		return false
	}
}

// genericFallback is the last-resort, type-directed coercion of text into
// typ: a weakly typed decode with the standard string hooks. It knows
// nothing about format providers; by this point every provider-aware
// strategy has already declined.
func genericFallback(text string, typ reflect.Type) (any, error) {
	target := reflect.New(typ)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target.Interface(),
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToSliceHookFunc(ListSeparator),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("fallback decoder creation failed: %w", err)
	}
	if err := decoder.Decode(text); err != nil {
		return nil, err
	}
	return target.Elem().Interface(), nil
}

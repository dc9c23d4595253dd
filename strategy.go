package parse

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

var (
	ErrNilStrategyType = errors.New("strategy registration requires a non-nil target type")
	ErrNilStrategyFunc = errors.New("strategy registration requires a non-nil function")
	ErrEmptyEnum       = errors.New("enum registration requires at least one member")
	ErrDuplicateMember = errors.New("enum members must have distinct case-insensitive names")
)

// TryParseFunc is a non-throwing conversion attempt: it returns the parsed
// value and true, or (nil, false) when the text does not match. A failing
// try-parse is a silent signal to move on, never an error.
type TryParseFunc func(text string, provider *FormatProvider) (any, bool)

// ParseFunc is a direct conversion that may fail. During dispatch a parse
// failure is suppressed and the next format provider is tried.
type ParseFunc func(text string, provider *FormatProvider) (any, error)

// ConstructorFunc builds a value from raw text, without a format provider.
// A constructor failure is fatal to the parse call.
type ConstructorFunc func(text string) (any, error)

// strategySet holds the explicitly registered strategies for one type.
type strategySet struct {
	tryParse    TryParseFunc
	parse       ParseFunc
	constructor ConstructorFunc
}

// StrategyRegistry maps target types to their conversion strategies and
// enumeration member tables. Registration replaces runtime method lookup:
// every strategy is an explicit function handle selected by reflect.Type.
//
// Registrations should happen before the first parse call for the type;
// capability probes snapshot the registry and are cached permanently, so a
// later registration for an already-probed type is not observed.
type StrategyRegistry struct {
	mu    sync.RWMutex
	m     map[reflect.Type]strategySet
	enums map[reflect.Type]map[string]any // lower-cased member name -> value
}

type StrategyRegistryOpts struct {
	ExcludeBuiltins bool
}

func NewStrategyRegistry(opts StrategyRegistryOpts) *StrategyRegistry {
	reg := &StrategyRegistry{
		m:     make(map[reflect.Type]strategySet),
		enums: make(map[reflect.Type]map[string]any),
	}
	if !opts.ExcludeBuiltins {
		for _, b := range _builtinStrategies {
			b(reg)
		}
	}
	return reg
}

// RegisterTryParse registers a try-parse strategy for typ, replacing any
// previous one.
func (reg *StrategyRegistry) RegisterTryParse(typ reflect.Type, fn TryParseFunc) error {
	if typ == nil {
		return ErrNilStrategyType
	}
	if fn == nil {
		return ErrNilStrategyFunc
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	s := reg.m[typ]
	s.tryParse = fn
	reg.m[typ] = s
	return nil
}

// RegisterParse registers a parse strategy for typ, replacing any previous
// one.
func (reg *StrategyRegistry) RegisterParse(typ reflect.Type, fn ParseFunc) error {
	if typ == nil {
		return ErrNilStrategyType
	}
	if fn == nil {
		return ErrNilStrategyFunc
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	s := reg.m[typ]
	s.parse = fn
	reg.m[typ] = s
	return nil
}

// RegisterConstructor registers a constructor strategy for typ, replacing
// any previous one.
func (reg *StrategyRegistry) RegisterConstructor(typ reflect.Type, fn ConstructorFunc) error {
	if typ == nil {
		return ErrNilStrategyType
	}
	if fn == nil {
		return ErrNilStrategyFunc
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	s := reg.m[typ]
	s.constructor = fn
	reg.m[typ] = s
	return nil
}

// RegisterEnumType registers typ as an enumeration with the given member
// table. Member names are matched case-insensitively during parsing, so
// two members whose names differ only by case are rejected.
func (reg *StrategyRegistry) RegisterEnumType(typ reflect.Type, members map[string]any) error {
	if typ == nil {
		return ErrNilStrategyType
	}
	if len(members) == 0 {
		return ErrEmptyEnum
	}
	folded := make(map[string]any, len(members))
	for name, value := range members {
		key := strings.ToLower(name)
		if _, exists := folded[key]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateMember, name)
		}
		folded[key] = value
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.enums[typ] = folded
	return nil
}

// enumMembers returns the member table for typ, or nil if typ is not a
// registered enumeration.
func (reg *StrategyRegistry) enumMembers(typ reflect.Type) map[string]any {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.enums[typ]
}

// strategies returns the registered strategy set for typ.
func (reg *StrategyRegistry) strategies(typ reflect.Type) strategySet {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.m[typ]
}

///////////////////////////////////////////////////////////////////////////////
// Built-in strategies
///////////////////////////////////////////////////////////////////////////////

var _builtinStrategies []func(*StrategyRegistry)

func init() {
	_builtinStrategies = []func(*StrategyRegistry){
		registerTimeStrategies,
		registerNetStrategies,
		registerUUIDStrategy,
		registerJSONStrategies,
	}
}

func registerTimeStrategies(reg *StrategyRegistry) {
	reg.RegisterTryParse(TimeType, func(text string, provider *FormatProvider) (any, bool) {
		for _, layout := range provider.TimeLayouts {
			if ts, err := time.Parse(layout, text); err == nil {
				return ts, true
			}
		}
		return nil, false
	})
	reg.RegisterTryParse(DurationType, func(text string, _ *FormatProvider) (any, bool) {
		d, err := time.ParseDuration(text)
		if err != nil {
			return nil, false
		}
		return d, true
	})
}

func registerNetStrategies(reg *StrategyRegistry) {
	reg.RegisterTryParse(IPType, func(text string, _ *FormatProvider) (any, bool) {
		ip := net.ParseIP(text)
		if ip == nil {
			return nil, false
		}
		return ip, true
	})
	reg.RegisterConstructor(URLType, func(text string) (any, error) {
		u, err := url.Parse(text)
		if err != nil {
			return nil, err
		}
		return *u, nil
	})
}

func registerUUIDStrategy(reg *StrategyRegistry) {
	reg.RegisterConstructor(UUIDType, func(text string) (any, error) {
		return uuid.Parse(text)
	})
}

func registerJSONStrategies(reg *StrategyRegistry) {
	reg.RegisterTryParse(StringAnyMapType, func(text string, _ *FormatProvider) (any, bool) {
		if !gjson.Valid(text) {
			return nil, false
		}
		m, ok := gjson.Parse(text).Value().(map[string]any)
		return m, ok
	})
	reg.RegisterTryParse(RawMessageType, func(text string, _ *FormatProvider) (any, bool) {
		if !gjson.Valid(text) {
			return nil, false
		}
		return json.RawMessage(text), true
	})
}

///////////////////////////////////////////////////////////////////////////////
// Kind-derived strategies
///////////////////////////////////////////////////////////////////////////////

// kindTryParse synthesizes a try-parse strategy from the type's kind, so
// named basic types parse like their underlying kind without an explicit
// registration. Returns nil for kinds with no textual form.
func kindTryParse(typ reflect.Type) TryParseFunc {
	switch typ.Kind() {
	case reflect.String:
		return func(text string, _ *FormatProvider) (any, bool) {
			return reflect.ValueOf(text).Convert(typ).Interface(), true
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		bits := typ.Bits()
		return func(text string, provider *FormatProvider) (any, bool) {
			normalized, ok := provider.normalizeInteger(text)
			if !ok {
				return nil, false
			}
			n, err := strconv.ParseInt(normalized, 10, bits)
			if err != nil {
				return nil, false
			}
			return reflect.ValueOf(n).Convert(typ).Interface(), true
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		bits := typ.Bits()
		return func(text string, provider *FormatProvider) (any, bool) {
			normalized, ok := provider.normalizeInteger(text)
			if !ok {
				return nil, false
			}
			n, err := strconv.ParseUint(normalized, 10, bits)
			if err != nil {
				return nil, false
			}
			return reflect.ValueOf(n).Convert(typ).Interface(), true
		}
	case reflect.Float32, reflect.Float64:
		bits := typ.Bits()
		return func(text string, provider *FormatProvider) (any, bool) {
			normalized, ok := provider.normalizeDecimal(text)
			if !ok {
				return nil, false
			}
			f, err := strconv.ParseFloat(normalized, bits)
			if err != nil {
				return nil, false
			}
			return reflect.ValueOf(f).Convert(typ).Interface(), true
		}
	case reflect.Complex64, reflect.Complex128:
		bits := typ.Bits()
		return func(text string, _ *FormatProvider) (any, bool) {
			c, err := strconv.ParseComplex(text, bits)
			if err != nil {
				return nil, false
			}
			return reflect.ValueOf(c).Convert(typ).Interface(), true
		}
	case reflect.Bool:
		return func(text string, provider *FormatProvider) (any, bool) {
			if value, ok := provider.matchBoolWord(text); ok {
				return reflect.ValueOf(value).Convert(typ).Interface(), true
			}
			value, err := strconv.ParseBool(text)
			if err != nil {
				return nil, false
			}
			return reflect.ValueOf(value).Convert(typ).Interface(), true
		}
	default:
		return nil
	}
}

// textUnmarshalerParse synthesizes a parse strategy for types that
// implement encoding.TextUnmarshaler directly or through a pointer
// receiver. Returns nil when the type does not implement it.
func textUnmarshalerParse(typ reflect.Type) ParseFunc {
	if !typ.Implements(textUnmarshalerType) && !reflect.PointerTo(typ).Implements(textUnmarshalerType) {
		return nil
	}
	return func(text string, _ *FormatProvider) (any, error) {
		target := reflect.New(typ)
		if err := target.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
			return nil, err
		}
		return target.Elem().Interface(), nil
	}
}

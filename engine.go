package parse

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrNilTargetType   = errors.New("target type cannot be nil")
	ErrUnsupportedType = errors.New("target type exposes no usable parsing strategy")
	ErrParseFormat     = errors.New("text does not match any format for the target type")
	ErrConstructor     = errors.New("constructor strategy failed")
)

// Engine is the parse dispatcher. It owns a StrategyRegistry, a ProbeCache
// and the default format provider, and walks the strategy precedence for
// every call: enum member match, nullable recursion, then for plain types
// try-parse and parse across the providers, the constructor, and the
// generic fallback.
//
// An Engine is safe for concurrent use. The zero value is not usable;
// construct one with NewEngine or use the package-level functions, which
// delegate to a process-wide default Engine.
type Engine struct {
	registry        *StrategyRegistry
	probes          *ProbeCache
	defaultProvider *FormatProvider
}

type EngineOpts struct {
	Registry        *StrategyRegistry // Optional pre-built registry
	DefaultProvider *FormatProvider   // Provider used when a call supplies none
	ExcludeBuiltins bool              // Skip built-in strategies when building a registry
}

func NewEngine(opts EngineOpts) *Engine {
	registry := opts.Registry
	if registry == nil {
		registry = NewStrategyRegistry(StrategyRegistryOpts{ExcludeBuiltins: opts.ExcludeBuiltins})
	}
	provider := opts.DefaultProvider
	if provider == nil {
		provider = DefaultProvider()
	}
	return &Engine{
		registry:        registry,
		probes:          NewProbeCache(),
		defaultProvider: provider,
	}
}

// Registry exposes the engine's strategy registry for registrations.
func (e *Engine) Registry() *StrategyRegistry { return e.registry }

// Probes exposes the engine's capability cache.
func (e *Engine) Probes() *ProbeCache { return e.probes }

// capabilities returns the cached probe for typ, building it on first use.
func (e *Engine) capabilities(typ reflect.Type) *Capabilities {
	return e.probes.GetOrBuild(typ, func() *Capabilities {
		return e.registry.buildCapabilities(typ)
	})
}

// CanParse reports whether typ supports at least one strategy: enum member
// match, try-parse, parse, constructor, or the generic fallback.
func (e *Engine) CanParse(typ reflect.Type) bool {
	if typ == nil {
		return false
	}
	category, inner := e.registry.categoryOf(typ)
	switch category {
	case CategoryEnum:
		return true
	case CategoryNullable:
		return e.CanParse(inner)
	}
	return e.capabilities(typ).CanParse() || fallbackSupports(typ)
}

// ParseType converts text into a value of typ, consulting providers in the
// given order (or the engine's default provider when none is given).
//
// The returned value is nil when the engine decided the text holds no
// value: empty text reaching the generic fallback. A nullable target
// returns a typed nil pointer in that case. Failures are reported through
// ErrParseFormat, ErrConstructor and ErrUnsupportedType, matchable with
// errors.Is.
func (e *Engine) ParseType(text string, typ reflect.Type, providers ...*FormatProvider) (any, error) {
	if typ == nil {
		return nil, ErrNilTargetType
	}

	category, inner := e.registry.categoryOf(typ)
	switch category {
	case CategoryEnum:
		return e.parseEnum(text, typ)
	case CategoryNullable:
		// An inner failure stays a failure; there is no automatic
		// nil-on-empty here, that leniency lives in the fallback layer.
		value, err := e.ParseType(text, inner, providers...)
		if err != nil {
			return nil, err
		}
		if isAbsent(value) {
			return reflect.Zero(typ).Interface(), nil
		}
		present := reflect.New(inner)
		rv := reflect.ValueOf(value)
		if rv.Type() != inner {
			rv = rv.Convert(inner)
		}
		present.Elem().Set(rv)
		return present.Interface(), nil
	}
	return e.parsePlain(text, typ, providers)
}

// parseEnum matches text against the enumeration's member names,
// case-insensitively. No other strategy participates.
func (e *Engine) parseEnum(text string, typ reflect.Type) (any, error) {
	members := e.registry.enumMembers(typ)
	if value, ok := members[strings.ToLower(text)]; ok {
		return value, nil
	}
	return nil, fmt.Errorf("%w: %q is not a member of %s", ErrParseFormat, text, typ)
}

// parsePlain walks the strategy precedence for a plain type.
func (e *Engine) parsePlain(text string, typ reflect.Type, providers []*FormatProvider) (any, error) {
	caps := e.capabilities(typ)

	if len(providers) == 0 {
		providers = []*FormatProvider{e.defaultProvider}
	}

	if caps.HasTryParse() || caps.HasParse() {
		for _, provider := range providers {
			if caps.HasTryParse() {
				if value, ok := caps.TryParse(text, provider); ok {
					return convertTo(typ, value)
				}
			}
			if caps.HasParse() {
				value, err := caps.Parse(text, provider)
				if err == nil {
					return convertTo(typ, value)
				}
				// A parse failure only advances to the next provider.
			}
		}
	}

	if caps.HasConstructor() {
		// Providers do not apply to construction, and a constructor
		// failure is never suppressed.
		value, err := caps.Constructor(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s(%q): %w", ErrConstructor, typ, text, err)
		}
		return convertTo(typ, value)
	}

	if fallbackSupports(typ) {
		if text == "" && typ.Kind() != reflect.String {
			// Empty input means "no value" at this layer only.
			return nil, nil
		}
		value, err := genericFallback(text, typ)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot convert %q to %s: %v", ErrParseFormat, text, typ, err)
		}
		return value, nil
	}

	if !caps.CanParse() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
	}
	return nil, fmt.Errorf("%w: %q did not match any provider for %s", ErrParseFormat, text, typ)
}

// ParseTypeOrDefault calls ParseType and substitutes def for an absent
// result. Errors pass through unchanged.
func (e *Engine) ParseTypeOrDefault(text string, typ reflect.Type, def any, providers ...*FormatProvider) (any, error) {
	value, err := e.ParseType(text, typ, providers...)
	if err != nil {
		return nil, err
	}
	if isAbsent(value) {
		return def, nil
	}
	return value, nil
}

// convertTo aligns a strategy's result with the target type. Strategies
// for named types may produce the underlying type; the value is converted
// when needed.
func convertTo(typ reflect.Type, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Type() == typ {
		return value, nil
	}
	if rv.Type().ConvertibleTo(typ) {
		return rv.Convert(typ).Interface(), nil
	}
	return nil, fmt.Errorf("strategy for %s produced incompatible value of type %T", typ, value)
}

// isAbsent reports whether a parse result carries no value: an untyped nil
// or a nil pointer from a nullable target.
func isAbsent(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

///////////////////////////////////////////////////////////////////////////////
// Global Singleton and Package Functions
///////////////////////////////////////////////////////////////////////////////

var _gEngine *Engine

func init() {
	_gEngine = NewEngine(EngineOpts{})
}

// DefaultEngine returns the process-wide engine the package-level
// functions delegate to.
func DefaultEngine() *Engine { return _gEngine }

func ParseType(text string, typ reflect.Type, providers ...*FormatProvider) (any, error) {
	return _gEngine.ParseType(text, typ, providers...)
}

func ParseTypeOrDefault(text string, typ reflect.Type, def any, providers ...*FormatProvider) (any, error) {
	return _gEngine.ParseTypeOrDefault(text, typ, def, providers...)
}

func CanParse(typ reflect.Type) bool {
	return _gEngine.CanParse(typ)
}

func RegisterTryParse(typ reflect.Type, fn TryParseFunc) error {
	return _gEngine.registry.RegisterTryParse(typ, fn)
}

func RegisterParse(typ reflect.Type, fn ParseFunc) error {
	return _gEngine.registry.RegisterParse(typ, fn)
}

func RegisterConstructor(typ reflect.Type, fn ConstructorFunc) error {
	return _gEngine.registry.RegisterConstructor(typ, fn)
}

///////////////////////////////////////////////////////////////////////////////
// Generic Wrappers
///////////////////////////////////////////////////////////////////////////////

// ParseAs parses text into a T using the given engine. An absent result
// yields T's zero value with a nil error; use ParseOrDefaultAs to tell the
// two apart.
func ParseAs[T any](e *Engine, text string, providers ...*FormatProvider) (T, error) {
	var zero T
	value, err := e.ParseType(text, reflect.TypeOf((*T)(nil)).Elem(), providers...)
	if err != nil {
		return zero, err
	}
	if isAbsent(value) {
		return zero, nil
	}
	return value.(T), nil
}

// Parse parses text into a T using the default engine.
func Parse[T any](text string, providers ...*FormatProvider) (T, error) {
	return ParseAs[T](_gEngine, text, providers...)
}

// ParseOrDefaultAs parses text into a T, substituting def for an absent
// result. Errors are never swallowed: unparsable non-empty text still
// fails.
func ParseOrDefaultAs[T any](e *Engine, text string, def T, providers ...*FormatProvider) (T, error) {
	value, err := e.ParseTypeOrDefault(text, reflect.TypeOf((*T)(nil)).Elem(), def, providers...)
	if err != nil {
		var zero T
		return zero, err
	}
	return value.(T), nil
}

// ParseOrDefault parses text into a T on the default engine, substituting
// def for an absent result.
func ParseOrDefault[T any](text string, def T, providers ...*FormatProvider) (T, error) {
	return ParseOrDefaultAs(_gEngine, text, def, providers...)
}

// CanParseAs reports whether T is parseable by the default engine.
func CanParseAs[T any]() bool {
	return _gEngine.CanParse(reflect.TypeOf((*T)(nil)).Elem())
}

// RegisterEnumFor registers E as an enumeration on the given engine.
func RegisterEnumFor[E comparable](e *Engine, members map[string]E) error {
	m := make(map[string]any, len(members))
	for name, value := range members {
		m[name] = value
	}
	return e.registry.RegisterEnumType(reflect.TypeOf((*E)(nil)).Elem(), m)
}

// RegisterEnum registers E as an enumeration on the default engine.
func RegisterEnum[E comparable](members map[string]E) error {
	return RegisterEnumFor(_gEngine, members)
}

// Package parse provides a generic string-to-typed-value parsing engine.
//
// Given raw text and a target type, the engine discovers once per type
// which conversion strategies the type supports, caches that discovery, and
// executes
// them in a fixed precedence with well-defined fallback rules:
//
//  1. try-parse: a non-throwing attempt returning (value, ok), consulted
//     once per format provider in caller-given order. The first success
//     wins and short-circuits everything else.
//  2. parse: a direct conversion that may fail with an error. A failure is
//     silently suppressed and the next format provider is tried.
//  3. constructor: a single-text-argument construction. Format providers do
//     not apply here; a constructor failure is never suppressed and
//     surfaces as ErrConstructor.
//  4. generic fallback: a last-resort, type-directed coercion. Empty text
//     reaching this layer yields an absent (nil) result instead of an
//     error.
//
// Strategies are held in a StrategyRegistry keyed by reflect.Type. The
// registry ships with built-in strategies for the numeric kinds, bool,
// string, time.Time, time.Duration, uuid.UUID, url.URL, net.IP and JSON
// text, and applications register their own with RegisterTryParse,
// RegisterParse, RegisterConstructor and RegisterEnum. Types implementing
// encoding.TextUnmarshaler are picked up automatically as a parse strategy.
//
// Three type categories exist:
//   - Enum: a type registered with RegisterEnum. Parsing is a
//     case-insensitive match of the text against the member names; no
//     other strategy participates.
//   - Nullable: a pointer type *U. Parsing recurses on U and wraps the
//     result as present (a new *U) or absent (a nil *U).
//   - Plain: everything else, handled by the strategy precedence above.
//
// Capability discovery runs exactly once per type. The resulting
// Capabilities record is immutable and cached for the process lifetime in
// a ProbeCache that is safe for concurrent first-use: many goroutines
// parsing the same fresh type observe a single probe build.
//
// To use the package, you may use the exported functions, which delegate
// to a process-wide default Engine:
//   - Parse[T]() / ParseType(): parse text into a value
//   - ParseOrDefault[T](): substitute a default for an absent result
//   - CanParse() / CanParseAs[T](): capability query
//   - RegisterTryParse() / RegisterParse() / RegisterConstructor() /
//     RegisterEnum[E](): extend the strategy registry
//
// Or you may construct an isolated Engine with NewEngine, which owns its
// own registry and probe cache; tests use this to avoid sharing state.
//
// Locale and format conventions travel in FormatProvider values: decimal
// and group separators, time layouts and boolean word sets. Providers can
// be built in code or loaded from a TOML document with LoadProviders.
package parse

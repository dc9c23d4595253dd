package parse

import "reflect"

// Capabilities records which conversion strategies one plain type
// supports, with the handles to invoke them. A Capabilities value is built
// exactly once per type by probing the strategy registry, is immutable
// afterwards, and lives in the ProbeCache for the rest of the process.
type Capabilities struct {
	Type        reflect.Type
	TryParse    TryParseFunc    // nil when the type has no try-parse strategy
	Parse       ParseFunc       // nil when the type has no parse strategy
	Constructor ConstructorFunc // nil when the type has no constructor strategy
}

func (c *Capabilities) HasTryParse() bool    { return c.TryParse != nil }
func (c *Capabilities) HasParse() bool       { return c.Parse != nil }
func (c *Capabilities) HasConstructor() bool { return c.Constructor != nil }

// CanParse reports whether any strategy exists for the type.
func (c *Capabilities) CanParse() bool {
	return c.TryParse != nil || c.Parse != nil || c.Constructor != nil
}

// buildCapabilities probes the registry for typ's strategies. Explicit
// registrations win; absent those, a try-parse is synthesized from the
// type's kind and a parse strategy from encoding.TextUnmarshaler support.
// Every strategy that exists is retained, not just the first found, since
// dispatch may need more than one during fallback.
func (reg *StrategyRegistry) buildCapabilities(typ reflect.Type) *Capabilities {
	registered := reg.strategies(typ)

	caps := &Capabilities{
		Type:        typ,
		TryParse:    registered.tryParse,
		Parse:       registered.parse,
		Constructor: registered.constructor,
	}
	if caps.TryParse == nil {
		caps.TryParse = kindTryParse(typ)
	}
	if caps.Parse == nil {
		caps.Parse = textUnmarshalerParse(typ)
	}
	return caps
}

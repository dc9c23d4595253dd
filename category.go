package parse

import "reflect"

// TypeCategory classifies a target type before capability probing. The
// category decides which strategies even apply: enumerations only match
// member names, pointer types recurse on their element type, and plain
// types walk the full strategy precedence.
type TypeCategory int

const (
	CategoryPlain TypeCategory = iota
	CategoryEnum
	CategoryNullable
)

func (c TypeCategory) String() string {
	switch c {
	case CategoryEnum:
		return "enum"
	case CategoryNullable:
		return "nullable"
	default:
		return "plain"
	}
}

// categoryOf classifies typ against the registry's enum table. For a
// nullable (pointer) type the unwrapped element type is returned as well.
//
// Classification is re-derived on every call: it is a pure function of the
// type and cheap enough that caching it would only duplicate the probe
// cache's role.
func (reg *StrategyRegistry) categoryOf(typ reflect.Type) (TypeCategory, reflect.Type) {
	if reg.enumMembers(typ) != nil {
		return CategoryEnum, typ
	}
	if typ.Kind() == reflect.Pointer {
		return CategoryNullable, typ.Elem()
	}
	return CategoryPlain, typ
}

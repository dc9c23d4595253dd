package parse

import (
	"strings"
)

// FormatProvider describes the locale and format conventions a strategy
// consults while interpreting text: separator characters for numbers,
// accepted time layouts, and the word sets recognized as booleans.
//
// Callers pass zero or more providers to a parse call, in priority order.
// When none is passed, the engine uses exactly one default provider.
// Providers are read-only once built and safe to share between goroutines.
type FormatProvider struct {
	Name             string   // Identifier, used in provider config files and errors
	DecimalSeparator string   // Separator between integer and fractional part
	GroupSeparator   string   // Optional digit-group separator, "" disables grouping
	ListSeparator    string   // Separator for list-valued text
	TimeLayouts      []string // Accepted time layouts, tried in order
	TrueWords        []string // Words parsed as true (case-insensitive)
	FalseWords       []string // Words parsed as false (case-insensitive)
}

// DefaultProvider returns the provider used when a parse call supplies
// none: dot decimal separator, no digit grouping, the default time layout
// list and the default boolean word sets.
func DefaultProvider() *FormatProvider {
	return &FormatProvider{
		Name:             DefaultProviderName,
		DecimalSeparator: DotSeparator,
		ListSeparator:    ListSeparator,
		TimeLayouts:      DefaultTimeLayouts,
		TrueWords:        DefaultTrueWords,
		FalseWords:       DefaultFalseWords,
	}
}

// DotDecimalProvider returns a provider following the "1,234.5" convention:
// dot decimal separator, comma digit grouping.
func DotDecimalProvider() *FormatProvider {
	p := DefaultProvider()
	p.Name = DotDecimalProviderName
	p.DecimalSeparator = DotSeparator
	p.GroupSeparator = CommaSeparator
	return p
}

// CommaDecimalProvider returns a provider following the "1.234,5"
// convention: comma decimal separator, dot digit grouping.
func CommaDecimalProvider() *FormatProvider {
	p := DefaultProvider()
	p.Name = CommaDecimalProviderName
	p.DecimalSeparator = CommaSeparator
	p.GroupSeparator = DotSeparator
	p.ListSeparator = ";"
	return p
}

// matchBoolWord reports whether text matches one of the provider's boolean
// word sets, and which value it maps to.
func (p *FormatProvider) matchBoolWord(text string) (value bool, ok bool) {
	for _, w := range p.TrueWords {
		if strings.EqualFold(text, w) {
			return true, true
		}
	}
	for _, w := range p.FalseWords {
		if strings.EqualFold(text, w) {
			return false, true
		}
	}
	return false, false
}

// normalizeInteger rewrites integral text to the form strconv expects:
// digit-group separators are stripped after validating the grouping, and
// any decimal separator makes the text invalid for an integer target.
func (p *FormatProvider) normalizeInteger(text string) (string, bool) {
	sign, digits := splitSign(text)
	if p.DecimalSeparator != "" && strings.Contains(digits, p.DecimalSeparator) {
		return "", false
	}
	digits, ok := stripGrouping(digits, p.GroupSeparator)
	if !ok {
		return "", false
	}
	return sign + digits, true
}

// normalizeDecimal rewrites decimal text to the dot-separated form strconv
// expects. Grouping is validated on the integer part only; the fractional
// part and an optional exponent pass through unchanged.
func (p *FormatProvider) normalizeDecimal(text string) (string, bool) {
	sign, rest := splitSign(text)

	intPart := rest
	fracPart := ""
	hasFrac := false
	if p.DecimalSeparator != "" {
		if i := strings.Index(rest, p.DecimalSeparator); i >= 0 {
			intPart = rest[:i]
			fracPart = rest[i+len(p.DecimalSeparator):]
			hasFrac = true
			if strings.Contains(fracPart, p.DecimalSeparator) {
				return "", false
			}
		}
	}

	// A grouping separator inside the fractional part is never valid.
	if p.GroupSeparator != "" && strings.Contains(fracPart, p.GroupSeparator) {
		return "", false
	}

	intPart, ok := stripGrouping(intPart, p.GroupSeparator)
	if !ok {
		return "", false
	}

	if !hasFrac {
		return sign + intPart, true
	}
	return sign + intPart + "." + fracPart, true
}

func splitSign(text string) (sign string, rest string) {
	if strings.HasPrefix(text, "-") || strings.HasPrefix(text, "+") {
		return text[:1], text[1:]
	}
	return "", text
}

// stripGrouping removes the group separator after checking that every
// group past the first holds exactly three digits. "1,5" is rejected under
// a comma-grouping convention while "1,234" collapses to "1234".
func stripGrouping(digits string, sep string) (string, bool) {
	if sep == "" || !strings.Contains(digits, sep) {
		return digits, true
	}
	groups := strings.Split(digits, sep)
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}

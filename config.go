package parse

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

var (
	ErrNoProvidersConfigured = errors.New("provider config defines no providers")
	ErrUnknownProviderKey    = errors.New("provider config contains unknown keys")
)

// providerConfig is the TOML shape of a single format provider. Absent
// fields inherit the default provider's conventions.
type providerConfig struct {
	DecimalSeparator *string  `toml:"decimal_separator"`
	GroupSeparator   *string  `toml:"group_separator"`
	ListSeparator    *string  `toml:"list_separator"`
	TimeLayouts      []string `toml:"time_layouts"`
	TrueWords        []string `toml:"true_words"`
	FalseWords       []string `toml:"false_words"`
}

type providersFile struct {
	Providers map[string]providerConfig `toml:"providers"`
}

// ProvidersFromTOML builds format providers from a TOML document of the
// form:
//
//	[providers.french]
//	decimal_separator = ","
//	group_separator = " "
//	time_layouts = ["02/01/2006"]
//
// Providers are returned in declaration order, since callers pass them to
// parse calls in priority order. Unknown keys are rejected.
func ProvidersFromTOML(data []byte) ([]*FormatProvider, error) {
	var file providersFile
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, fmt.Errorf("decoding provider config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownProviderKey, undecoded)
	}
	if len(file.Providers) == 0 {
		return nil, ErrNoProvidersConfigured
	}

	// md.Keys preserves document order; map iteration would not.
	var providers []*FormatProvider
	seen := make(map[string]bool, len(file.Providers))
	for _, key := range md.Keys() {
		parts := key
		if len(parts) != 2 || parts[0] != "providers" {
			continue
		}
		name := parts[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		providers = append(providers, file.Providers[name].toProvider(name))
	}
	return providers, nil
}

// LoadProviders reads a TOML provider config file from path.
func LoadProviders(path string) ([]*FormatProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading provider config %q: %w", path, err)
	}
	return ProvidersFromTOML(data)
}

func (pc providerConfig) toProvider(name string) *FormatProvider {
	p := DefaultProvider()
	p.Name = name
	if pc.DecimalSeparator != nil {
		p.DecimalSeparator = *pc.DecimalSeparator
	}
	if pc.GroupSeparator != nil {
		p.GroupSeparator = *pc.GroupSeparator
	}
	if pc.ListSeparator != nil {
		p.ListSeparator = *pc.ListSeparator
	}
	if len(pc.TimeLayouts) > 0 {
		p.TimeLayouts = pc.TimeLayouts
	}
	if len(pc.TrueWords) > 0 {
		p.TrueWords = pc.TrueWords
	}
	if len(pc.FalseWords) > 0 {
		p.FalseWords = pc.FalseWords
	}
	return p
}

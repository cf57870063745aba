package types

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Options is the option set chosen for a line item, e.g. color or size.
// A nil Options and an empty Options are the same selection.
type Options map[string]string

// Equal reports whether both option sets hold the same keys with the same
// values. Key order never matters.
func (o Options) Equal(other Options) bool {
	return maps.Equal(o, other)
}

// Clone returns an independent copy, or nil when there is nothing selected.
func (o Options) Clone() Options {
	if len(o) == 0 {
		return nil
	}
	return maps.Clone(o)
}

// Keys returns the option names in sorted order.
func (o Options) Keys() []string {
	return slices.Sorted(maps.Keys(o))
}

// String renders the set as "k1: v1, k2: v2" in key order.
func (o Options) String() string {
	if len(o) == 0 {
		return ""
	}
	parts := make([]string, 0, len(o))
	for _, k := range o.Keys() {
		parts = append(parts, fmt.Sprintf("%s: %s", k, o[k]))
	}
	return strings.Join(parts, ", ")
}

// ParseOptions reads "key=value" pairs. Blank keys are rejected.
func ParseOptions(pairs []string) (Options, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	opts := make(Options, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid option %q, want key=value", pair)
		}
		opts[key] = strings.TrimSpace(value)
	}
	return opts, nil
}

// Package normalization maps free-form configuration strings onto typed enum values.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Normalizer provides type-safe string-to-enum normalization.
type Normalizer[T comparable] struct {
	name         string
	validValues  map[string]T
	defaultValue T
	validKeys    []string
}

// New creates a normalizer for the enum called name. Keys are matched after
// trimming and lower-casing.
func New[T comparable](name string, values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	keys := make([]string, 0, len(values))
	for k, v := range values {
		nk := clean(k)
		normalized[nk] = v
		keys = append(keys, nk)
	}
	slices.Sort(keys)
	return &Normalizer[T]{name: name, validValues: normalized, defaultValue: defaultValue, validKeys: keys}
}

// Normalize returns the value for raw, or the default when raw is not recognized.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.validValues[clean(raw)]; ok {
		return v
	}
	return n.defaultValue
}

// Lookup returns the value for raw and whether it was recognized.
func (n *Normalizer[T]) Lookup(raw string) (T, bool) {
	v, ok := n.validValues[clean(raw)]
	return v, ok
}

// NormalizeWithError is Lookup with an error naming the valid options.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if v, ok := n.Lookup(raw); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %s", n.name, raw, strings.Join(n.validKeys, ", "))
}

// ValidKeys returns the normalized keys in sorted order.
func (n *Normalizer[T]) ValidKeys() []string { return slices.Clone(n.validKeys) }

func clean(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

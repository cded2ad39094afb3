package systems

import (
	"fmt"
	"sort"
)

// pairKey is an unordered pair of type names, smaller name first.
type pairKey struct {
	a, b string
}

func canonicalPair(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// Rule is a resolved interaction: A and B touching produce Result.
type Rule struct {
	A, B   string
	Result string
}

// InteractionTable maps unordered type pairs to a reaction result.
type InteractionTable struct {
	rules map[pairKey]string
}

// NewInteractionTable creates an empty table.
func NewInteractionTable() *InteractionTable {
	return &InteractionTable{rules: make(map[pairKey]string)}
}

// Set records that a and b react into result. All three names must already be
// registered; otherwise the table is left unchanged and ErrInvalidRule is
// returned.
func (t *InteractionTable) Set(reg *Registry, a, b, result string) error {
	for _, name := range [...]string{a, b, result} {
		if !reg.Has(name) {
			return fmt.Errorf("%w: %s+%s->%s: %q: %w", ErrInvalidRule, a, b, result, name, ErrNotFound)
		}
	}
	t.rules[canonicalPair(a, b)] = result
	return nil
}

// Lookup returns the result type for a pair, in either order.
// Absence means no reaction is defined.
func (t *InteractionTable) Lookup(a, b string) (string, bool) {
	result, ok := t.rules[canonicalPair(a, b)]
	return result, ok
}

// Len returns the number of rules.
func (t *InteractionTable) Len() int {
	return len(t.rules)
}

// Rules returns all rules sorted by their canonical pair.
func (t *InteractionTable) Rules() []Rule {
	out := make([]Rule, 0, len(t.rules))
	for k, result := range t.rules {
		out = append(out, Rule{A: k.a, B: k.b, Result: result})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

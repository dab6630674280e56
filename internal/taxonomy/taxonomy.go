// Package taxonomy assigns guide pages to content categories.
//
// A Taxonomy is an ordered list of keyword rules evaluated first-match-wins,
// a fallback category, the natural category order used for iteration, and the
// complementary-category preferences consulted by related-page selection. It
// is immutable once built and safe for concurrent use.
package taxonomy

import (
	"fmt"
	"slices"
	"strings"
)

// Category is a content category name.
type Category string

const (
	Sauces     Category = "sauces"
	Noodles    Category = "noodles"
	Breakfast  Category = "breakfast"
	Meals      Category = "meals"
	BreadBaked Category = "bread_baked"
	Asian      Category = "asian"
	Condiments Category = "condiments"
	Other      Category = "other"
)

// Rule matches a record when any keyword is a substring of the lower-cased
// topic key, or of the lower-cased title when MatchTitle is set.
type Rule struct {
	Category   Category
	Keywords   []string
	MatchTitle bool
}

func (r Rule) matches(topic, title string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(topic, kw) {
			return true
		}
		if r.MatchTitle && strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

// Taxonomy is the immutable category configuration.
type Taxonomy struct {
	rules       []Rule
	order       []Category
	fallback    Category
	complements map[Category][]Category
}

// New validates and copies the given configuration. Every rule category and
// every complement must appear in order, as must the fallback.
func New(rules []Rule, order []Category, fallback Category, complements map[Category][]Category) (*Taxonomy, error) {
	if len(order) == 0 {
		return nil, fmt.Errorf("taxonomy: category order is empty")
	}
	known := make(map[Category]struct{}, len(order))
	for _, c := range order {
		if _, dup := known[c]; dup {
			return nil, fmt.Errorf("taxonomy: category %q listed twice", c)
		}
		known[c] = struct{}{}
	}
	if _, ok := known[fallback]; !ok {
		return nil, fmt.Errorf("taxonomy: fallback %q is not a known category", fallback)
	}

	t := &Taxonomy{
		order:       slices.Clone(order),
		fallback:    fallback,
		complements: make(map[Category][]Category, len(complements)),
	}
	for _, r := range rules {
		if _, ok := known[r.Category]; !ok {
			return nil, fmt.Errorf("taxonomy: rule category %q is not a known category", r.Category)
		}
		kws := make([]string, len(r.Keywords))
		for i, kw := range r.Keywords {
			kws[i] = strings.ToLower(kw)
		}
		t.rules = append(t.rules, Rule{Category: r.Category, Keywords: kws, MatchTitle: r.MatchTitle})
	}
	for cat, prefs := range complements {
		for _, p := range append([]Category{cat}, prefs...) {
			if _, ok := known[p]; !ok {
				return nil, fmt.Errorf("taxonomy: complement %q is not a known category", p)
			}
		}
		t.complements[cat] = slices.Clone(prefs)
	}
	return t, nil
}

// Categorize returns the first matching rule's category, or the fallback.
func (t *Taxonomy) Categorize(topicKey, title string) Category {
	topic := strings.ToLower(topicKey)
	lowerTitle := strings.ToLower(title)
	for _, r := range t.rules {
		if r.matches(topic, lowerTitle) {
			return r.Category
		}
	}
	return t.fallback
}

// Categories returns the natural category order.
func (t *Taxonomy) Categories() []Category { return slices.Clone(t.order) }

// Complements returns the preferred complementary categories for c, most preferred first.
func (t *Taxonomy) Complements(c Category) []Category { return slices.Clone(t.complements[c]) }

// SearchOrder lists every category other than primary: its complements first,
// then the rest in natural order, each at most once.
func (t *Taxonomy) SearchOrder(primary Category) []Category {
	seen := map[Category]struct{}{primary: {}}
	out := make([]Category, 0, len(t.order))
	for _, c := range append(t.Complements(primary), t.order...) {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

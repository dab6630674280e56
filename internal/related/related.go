// Package related picks the related pages linked from each guide.
//
// Selection is pure and deterministic: identical inputs give identical output,
// and nothing is shared between calls, so pages may be processed in parallel.
package related

import (
	"fmt"

	"git.home.luguber.info/inful/guidebuilder/internal/page"
	"git.home.luguber.info/inful/guidebuilder/internal/taxonomy"
)

// Strategy names accepted by StrategyByName.
const (
	StrategySeeded   = "seeded"
	StrategyFirstFit = "first-fit"
)

// Query is everything a strategy may use to pick related pages for Source.
type Query struct {
	Source      page.Record
	Primary     taxonomy.Category
	Index       int // Source's corpus position, 0 when absent
	Partition   *taxonomy.Partition
	SearchOrder []taxonomy.Category // non-primary categories, preferred first
	Count       int
}

// Strategy chooses related records. Implementations may return too many or
// include the source; the Selector trims the result.
type Strategy interface {
	Name() string
	Select(q Query) []page.Record
}

// StrategyByName resolves a configured strategy name.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case StrategySeeded, "":
		return Seeded{}, nil
	case StrategyFirstFit:
		return FirstFit{}, nil
	default:
		return nil, fmt.Errorf("unknown related strategy %q", name)
	}
}

// Result is the outcome for one source record.
type Result struct {
	Category taxonomy.Category
	Related  []page.Record
}

// Selector applies a Strategy under a Taxonomy and enforces the result bounds.
type Selector struct {
	tax      *taxonomy.Taxonomy
	strategy Strategy
}

func NewSelector(tax *taxonomy.Taxonomy, strategy Strategy) *Selector {
	if strategy == nil {
		strategy = Seeded{}
	}
	return &Selector{tax: tax, strategy: strategy}
}

// Select returns the source's category and at most count related records.
// A source present in partition keeps the category it was bucketed under.
// The source and duplicate slugs are never included. When the strategy comes
// up short, the remaining slots are filled from the search order so the result
// reaches count whenever enough other records exist.
func (s *Selector) Select(source page.Record, partition *taxonomy.Partition, corpus []page.Record, count int) Result {
	primary := s.categoryOf(source, partition)
	res := Result{Category: primary}
	if count <= 0 || partition == nil {
		return res
	}

	index := page.IndexOf(corpus, source.Slug)
	if index < 0 {
		index = 0
	}
	q := Query{
		Source:      source,
		Primary:     primary,
		Index:       index,
		Partition:   partition,
		SearchOrder: s.tax.SearchOrder(primary),
		Count:       count,
	}

	picked := newPicker(source.Slug, count)
	for _, r := range s.strategy.Select(q) {
		picked.add(r)
	}
	if !picked.full() {
		for _, c := range append([]taxonomy.Category{primary}, q.SearchOrder...) {
			for _, r := range partition.Members(c) {
				picked.add(r)
			}
		}
	}
	res.Related = picked.records
	return res
}

func (s *Selector) categoryOf(source page.Record, partition *taxonomy.Partition) taxonomy.Category {
	if partition != nil {
		if c, ok := partition.CategoryOf(source.Slug); ok {
			return c
		}
	}
	return s.tax.CategorizeRecord(source)
}

// picker accumulates unique, non-source records up to a limit.
type picker struct {
	exclude string
	limit   int
	seen    map[string]struct{}
	records []page.Record
}

func newPicker(exclude string, limit int) *picker {
	return &picker{exclude: exclude, limit: limit, seen: make(map[string]struct{}, limit)}
}

func (p *picker) full() bool { return len(p.records) >= p.limit }

func (p *picker) has(slug string) bool {
	_, ok := p.seen[slug]
	return ok
}

func (p *picker) add(r page.Record) bool {
	if p.full() || r.Slug == p.exclude || p.has(r.Slug) {
		return false
	}
	p.seen[r.Slug] = struct{}{}
	p.records = append(p.records, r)
	return true
}

package taxonomy

import (
	"slices"

	"git.home.luguber.info/inful/guidebuilder/internal/page"
)

// Partition buckets a corpus by category. Within a bucket records keep corpus order.
type Partition struct {
	order   []Category
	buckets map[Category][]page.Record
	bySlug  map[string]Category
}

// Build categorizes every record. Every category in the taxonomy gets a bucket, even when empty.
func (t *Taxonomy) Build(records []page.Record) *Partition {
	p := &Partition{
		order:   t.Categories(),
		buckets: make(map[Category][]page.Record, len(t.order)),
		bySlug:  make(map[string]Category, len(records)),
	}
	for _, c := range p.order {
		p.buckets[c] = nil
	}
	for _, r := range records {
		c := t.CategorizeRecord(r)
		p.buckets[c] = append(p.buckets[c], r)
		if _, seen := p.bySlug[r.Slug]; !seen {
			p.bySlug[r.Slug] = c
		}
	}
	return p
}

// CategorizeRecord categorizes a record by its topic key and title.
func (t *Taxonomy) CategorizeRecord(r page.Record) Category {
	return t.Categorize(r.TopicKey, r.Title)
}

// Categories returns the bucket names in natural order.
func (p *Partition) Categories() []Category { return slices.Clone(p.order) }

// Members returns a copy of the records in category c.
func (p *Partition) Members(c Category) []page.Record { return slices.Clone(p.buckets[c]) }

// CategoryOf returns the category recorded for slug.
func (p *Partition) CategoryOf(slug string) (Category, bool) {
	c, ok := p.bySlug[slug]
	return c, ok
}

// Len returns the number of records across all buckets.
func (p *Partition) Len() int {
	n := 0
	for _, b := range p.buckets {
		n += len(b)
	}
	return n
}

// Counts returns bucket sizes keyed by category.
func (p *Partition) Counts() map[Category]int {
	out := make(map[Category]int, len(p.buckets))
	for c, b := range p.buckets {
		out[c] = len(b)
	}
	return out
}

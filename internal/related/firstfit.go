package related

import "git.home.luguber.info/inful/guidebuilder/internal/page"

// FirstFit takes the first records of the source's category in corpus order,
// then fills from the remaining categories in natural order.
type FirstFit struct{}

func (FirstFit) Name() string { return StrategyFirstFit }

func (FirstFit) Select(q Query) []page.Record {
	picked := newPicker(q.Source.Slug, q.Count)
	for _, r := range q.Partition.Members(q.Primary) {
		picked.add(r)
	}
	for _, c := range q.Partition.Categories() {
		if c == q.Primary {
			continue
		}
		for _, r := range q.Partition.Members(c) {
			if picked.full() {
				return picked.records
			}
			picked.add(r)
		}
	}
	return picked.records
}

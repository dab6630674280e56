package related

import "git.home.luguber.info/inful/guidebuilder/internal/page"

// Position multipliers. Changing any of them reshuffles every page's related links.
const (
	sameStride       = 7
	sameStep         = 11
	complementStride = 13
	complementStep   = 17
	maxSameCategory  = 2
)

// Seeded spreads related links across the corpus by seeding candidate
// positions with the source's corpus index. At most two picks come from the
// source's own category, in hash-set slot order (see slotOrder). The rest come from the
// search order, each category contributing up to half of its eligible records.
type Seeded struct{}

func (Seeded) Name() string { return StrategySeeded }

func (Seeded) Select(q Query) []page.Record {
	picked := newPicker(q.Source.Slug, q.Count)

	same := without(q.Partition.Members(q.Primary), q.Source.Slug, nil)
	if n := len(same); n > 0 {
		target := min(maxSameCategory, n)
		positions := make([]int, 0, target)
		for i := range target {
			positions = append(positions, (q.Index*sameStride+i*sameStep)%n)
		}
		for _, pos := range slotOrder(positions) {
			picked.add(same[pos])
		}
	}

	for _, c := range q.SearchOrder {
		if picked.full() {
			break
		}
		candidates := without(q.Partition.Members(c), q.Source.Slug, picked)
		n := len(candidates)
		if n == 0 {
			continue
		}
		needed := min(q.Count-len(picked.records), max(1, n/2))
		taken := 0
		for i := 0; i < needed*2 && taken < needed; i++ {
			if picked.add(candidates[(q.Index*complementStride+i*complementStep)%n]) {
				taken++
			}
		}
	}
	return picked.records
}

// slotTableSize is the smallest open-addressing table used for integer sets.
// It holds up to four positions without resizing, which covers maxSameCategory.
const slotTableSize = 8

// slotOrder deduplicates positions and returns them in the slot order of an
// 8-slot open-addressing hash set keyed by the position itself, with the
// perturbed probe sequence i = 5i + 1 + (perturb >>= 5). Existing published
// pages were linked in this order, so {2, 9} yields [9, 2] rather than [2, 9].
func slotOrder(positions []int) []int {
	var (
		table [slotTableSize]int
		used  [slotTableSize]bool
	)
	const mask = slotTableSize - 1
	for _, pos := range positions {
		i := pos & mask
		perturb := pos
		for used[i] && table[i] != pos {
			perturb >>= 5
			i = (i*5 + 1 + perturb) & mask
		}
		table[i], used[i] = pos, true
	}
	out := make([]int, 0, len(positions))
	for i, ok := range used {
		if ok {
			out = append(out, table[i])
		}
	}
	return out
}

// without filters out the source slug and anything already picked.
func without(records []page.Record, source string, picked *picker) []page.Record {
	out := records[:0:0]
	for _, r := range records {
		if r.Slug == source || (picked != nil && picked.has(r.Slug)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

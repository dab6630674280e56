package related

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/guidebuilder/internal/page"
	"git.home.luguber.info/inful/guidebuilder/internal/taxonomy"
)

func rec(slug, topic string) page.Record {
	return page.Record{Slug: slug, TopicKey: topic, Title: slug}
}

func exampleCorpus() []page.Record {
	return []page.Record{
		rec("a-sauce", "soy-sauce"),
		rec("b-noodle", "rice-noodle"),
		rec("c-sauce", "oyster-sauce"),
		rec("d-meal", "beef-stew"),
		rec("e-other", "unrelated"),
	}
}

func selectFor(t *testing.T, strategy Strategy, corpus []page.Record, slug string, count int) Result {
	t.Helper()
	tax := taxonomy.Default()
	idx := page.IndexOf(corpus, slug)
	require.GreaterOrEqual(t, idx, 0)
	return NewSelector(tax, strategy).Select(corpus[idx], tax.Build(corpus), corpus, count)
}

func TestSeeded_ExampleScenario(t *testing.T) {
	res := selectFor(t, Seeded{}, exampleCorpus(), "a-sauce", 3)

	assert.Equal(t, taxonomy.Sauces, res.Category)
	assert.Equal(t, []string{"c-sauce", "d-meal", "b-noodle"}, page.Slugs(res.Related))
}

func TestFirstFit_ExampleScenario(t *testing.T) {
	res := selectFor(t, FirstFit{}, exampleCorpus(), "a-sauce", 3)
	assert.Equal(t, []string{"c-sauce", "b-noodle", "d-meal"}, page.Slugs(res.Related))
}

func seededFixture() []page.Record {
	var corpus []page.Record
	for i := range 4 {
		corpus = append(corpus, rec(fmt.Sprintf("s%d", i), fmt.Sprintf("x-sauce-%d", i)))
	}
	for i := range 4 {
		corpus = append(corpus, rec(fmt.Sprintf("a%d", i), fmt.Sprintf("miso-%d", i)))
	}
	return corpus
}

func TestSeeded_IndexSeededPositions(t *testing.T) {
	corpus := seededFixture()

	res := selectFor(t, Seeded{}, corpus, "s2", 4)
	assert.Equal(t, []string{"s1", "s3", "a2", "a3"}, page.Slugs(res.Related))

	// Complementary categories only yield half their records; the rest is backfilled.
	res = selectFor(t, Seeded{}, corpus, "s2", 6)
	assert.Equal(t, []string{"s1", "s3", "a2", "a3", "s0", "a0"}, page.Slugs(res.Related))
}

func TestSlotOrder(t *testing.T) {
	cases := []struct {
		in   []int
		want []int
	}{
		{[]int{1, 2}, []int{1, 2}},
		{[]int{2, 1}, []int{1, 2}},
		{[]int{2, 9}, []int{9, 2}},
		{[]int{9, 2}, []int{9, 2}},
		{[]int{4, 4}, []int{4}},
		{[]int{8, 16}, []int{8, 16}},
		{[]int{10, 3}, []int{10, 3}},
		{[]int{5}, []int{5}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, slotOrder(tc.in), "positions %v", tc.in)
	}
}

func TestSeeded_LargeCategoryUsesSlotOrder(t *testing.T) {
	var corpus []page.Record
	for i := range 19 {
		corpus = append(corpus, rec(fmt.Sprintf("s%d", i), fmt.Sprintf("x-sauce-%d", i)))
	}
	// 18 candidates: positions 9 and 2 land in slots 1 and 2.
	res := selectFor(t, Seeded{}, corpus, "s9", 2)
	assert.Equal(t, []string{"s10", "s2"}, page.Slugs(res.Related))
}

func TestSeeded_SingleSlot(t *testing.T) {
	res := selectFor(t, Seeded{}, seededFixture(), "s2", 1)
	assert.Equal(t, []string{"s1"}, page.Slugs(res.Related))
}

func bigCorpus() []page.Record {
	topics := []string{
		"soy-sauce", "rice-noodle", "oyster-sauce", "beef-stew", "unrelated", "pancake-mix",
		"bagel", "miso-soup", "ketchup", "chicken-curry", "hot-sauce", "udon-noodle",
		"waffle", "croissant", "kimchi", "mustard", "meatball", "rice", "tempura",
		"pretzel", "gravy", "egg-roll", "pasta", "nugget",
	}
	corpus := make([]page.Record, len(topics))
	for i, topic := range topics {
		corpus[i] = rec(topic, topic)
	}
	return corpus
}

func TestSelector_Invariants(t *testing.T) {
	corpus := bigCorpus()
	for _, strategy := range []Strategy{Seeded{}, FirstFit{}} {
		for _, count := range []int{1, 3, 4, 6, len(corpus) - 1, len(corpus) + 5} {
			for _, src := range corpus {
				name := fmt.Sprintf("%s/%d/%s", strategy.Name(), count, src.Slug)
				first := selectFor(t, strategy, corpus, src.Slug, count)
				second := selectFor(t, strategy, corpus, src.Slug, count)

				slugs := page.Slugs(first.Related)
				assert.Equal(t, slugs, page.Slugs(second.Related), "%s: deterministic", name)
				assert.NotContains(t, slugs, src.Slug, "%s: no self reference", name)
				assert.Len(t, slugs, min(count, len(corpus)-1), "%s: bounded size", name)

				seen := map[string]bool{}
				for _, s := range slugs {
					assert.False(t, seen[s], "%s: duplicate %s", name, s)
					seen[s] = true
				}
			}
		}
	}
}

func TestSelector_DegenerateCorpora(t *testing.T) {
	tax := taxonomy.Default()
	sel := NewSelector(tax, Seeded{})

	only := []page.Record{rec("solo", "soy-sauce")}
	res := sel.Select(only[0], tax.Build(only), only, 6)
	assert.Empty(t, res.Related)
	assert.Equal(t, taxonomy.Sauces, res.Category)

	empty := tax.Build(nil)
	res = sel.Select(rec("ghost", "unrelated"), empty, nil, 6)
	assert.Empty(t, res.Related)
	assert.Equal(t, taxonomy.Other, res.Category)

	res = sel.Select(only[0], tax.Build(only), only, 0)
	assert.Empty(t, res.Related)
}

func TestSelector_SourceOutsideCorpusUsesIndexZero(t *testing.T) {
	corpus := exampleCorpus()
	tax := taxonomy.Default()
	outsider := rec("z-sauce", "fish-sauce")

	res := NewSelector(tax, Seeded{}).Select(outsider, tax.Build(corpus), corpus, 3)
	assert.Equal(t, []string{"a-sauce", "c-sauce", "d-meal"}, page.Slugs(res.Related))
}

func TestSelector_UsesPartitionCategory(t *testing.T) {
	corpus := exampleCorpus()
	flat, err := taxonomy.New(nil, []taxonomy.Category{taxonomy.Sauces, taxonomy.Other}, taxonomy.Other, nil)
	require.NoError(t, err)
	partition := flat.Build(corpus)
	sel := NewSelector(taxonomy.Default(), Seeded{})

	res := sel.Select(corpus[0], partition, corpus, 2)
	assert.Equal(t, taxonomy.Other, res.Category)
	assert.Len(t, res.Related, 2)

	res = sel.Select(rec("z-sauce", "fish-sauce"), partition, corpus, 2)
	assert.Equal(t, taxonomy.Sauces, res.Category)
}

type sloppyStrategy struct{}

func (sloppyStrategy) Name() string { return "sloppy" }

func (sloppyStrategy) Select(q Query) []page.Record {
	return []page.Record{q.Source, rec("dup", "x"), rec("dup", "x"), rec("other", "y"), rec("third", "z")}
}

func TestSelector_TrimsStrategyOutput(t *testing.T) {
	corpus := exampleCorpus()
	tax := taxonomy.Default()
	res := NewSelector(tax, sloppyStrategy{}).Select(corpus[0], tax.Build(corpus), corpus, 2)
	assert.Equal(t, []string{"dup", "other"}, page.Slugs(res.Related))
}

func TestStrategyByName(t *testing.T) {
	s, err := StrategyByName("seeded")
	require.NoError(t, err)
	assert.Equal(t, StrategySeeded, s.Name())

	s, err = StrategyByName("first-fit")
	require.NoError(t, err)
	assert.Equal(t, StrategyFirstFit, s.Name())

	_, err = StrategyByName("random")
	require.Error(t, err)
}

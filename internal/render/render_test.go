package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/guidebuilder/internal/page"
	"git.home.luguber.info/inful/guidebuilder/internal/taxonomy"
)

func testSite() Site {
	return Site{
		Name:   "BiteRight",
		Origin: "https://biterightgluten.com",
		CTA: page.CTA{
			Title: "Want to scan menus in seconds?",
			Body:  "Download BiteRight to check ingredients and menu items on the go.",
			Href:  "https://apps.apple.com/app/biteright-gluten-scanner/id6755896176",
			Label: "Download on the App Store",
		},
	}
}

func soySauce() page.Record {
	doc := &page.Document{
		SchemaVersion:    1,
		TopicKey:         "soy-sauce",
		Slug:             "is-soy-sauce-gluten-free",
		Title:            "Is Soy Sauce Gluten Free? | BiteRight",
		Heading:          "Is soy sauce gluten free?",
		Intro:            "Soy sauce is one of the most common hidden sources of gluten.",
		Verdict:          page.Verdict{Status: "unsafe", Summary: "Traditional soy sauce is brewed with wheat."},
		Disclaimer:       "This guidance is informational only.",
		Sections:         []page.Section{{Title: "Quick answer", Body: "Choose **tamari** <b>labelled</b> GF."}},
		Ingredients:      page.Ingredients{Risk: []string{"Wheat", "Barley"}, Safe: []string{"Tamari (labeled GF)"}},
		WaiterScript:     page.WaiterScript{Preview: "Is this made with wheat-based soy sauce?"},
		SafeAlternatives: []string{"Coconut aminos"},
		KnownGFBrands:    []string{"San-J Tamari"},
		FAQ:              []page.FAQ{{Question: "Is tamari safe?", Answer: "Usually, when labeled GF."}},
	}
	return page.NewRecord(doc, "is-soy-sauce-gluten-free", "")
}

func renderGuide(t *testing.T, rec page.Record, related []page.Record) *goquery.Document {
	t.Helper()
	r, err := New(testSite())
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Guide(&buf, rec, taxonomy.Sauces, related))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestGuide_RendersAllSections(t *testing.T) {
	doc := renderGuide(t, soySauce(), nil)

	assert.Equal(t, "Is Soy Sauce Gluten Free? | BiteRight", doc.Find("title").Text())
	assert.Equal(t, "Is soy sauce gluten free?", doc.Find("h1").Text())
	assert.Equal(t, "Sauces", doc.Find(".category").Text())

	badge := doc.Find(".badge")
	assert.Equal(t, "✗ High Risk", badge.Text())
	style, _ := badge.Attr("style")
	assert.Contains(t, style, "#ef4444")

	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	assert.Equal(t, "https://biterightgluten.com/is-soy-sauce-gluten-free/", canonical)

	assert.Equal(t, 2, doc.Find(".risk li").Length())
	assert.Equal(t, "Tamari (labeled GF)", doc.Find(".safe li").Text())
	assert.Equal(t, "Is this made with wheat-based soy sauce?", doc.Find(".waiter blockquote").Text())
	assert.Equal(t, "Coconut aminos", doc.Find(".alternatives li").Text())
	assert.Equal(t, "San-J Tamari", doc.Find(".brands li").Text())
	assert.Equal(t, "tamari", doc.Find(".body strong").Text())
	assert.Equal(t, 0, doc.Find(".body b").Length(), "raw HTML in section bodies is dropped")
	assert.Equal(t, "Is tamari safe?", doc.Find(".faq summary").Text())

	assert.Equal(t, "Want to scan menus in seconds?", doc.Find(".cta h2").Text())
	href, _ := doc.Find(".cta a").Attr("href")
	assert.Equal(t, "https://apps.apple.com/app/biteright-gluten-scanner/id6755896176", href)
	assert.Equal(t, 0, doc.Find(".related").Length(), "no related section without related pages")
}

func TestGuide_RelatedCards(t *testing.T) {
	long := strings.Repeat("x", 120)
	related := []page.Record{
		{Slug: "is-miso-gluten-free", Title: "Is miso gluten free?", Description: long},
		{Slug: "is-ketchup-gluten-free", Title: "Is ketchup gluten free?", Description: "Usually safe."},
	}
	doc := renderGuide(t, soySauce(), related)

	cards := doc.Find(".related .card")
	require.Equal(t, 2, cards.Length())

	first := cards.First()
	href, _ := first.Find("a").Attr("href")
	assert.Equal(t, "/is-miso-gluten-free/", href)
	assert.Equal(t, strings.Repeat("x", 100)+"...", first.Find("p").Text())
	assert.Equal(t, "Usually safe.", cards.Last().Find("p").Text())
}

func TestGuide_EscapesText(t *testing.T) {
	rec := soySauce()
	rec.Doc.Intro = `<script>alert("x")</script>`
	r, err := New(testSite())
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Guide(&buf, rec, taxonomy.Sauces, nil))
	assert.NotContains(t, buf.String(), `<script>alert`)
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestGuide_PageCTAOverridesDefaults(t *testing.T) {
	rec := soySauce()
	rec.Doc.CTA = &page.CTA{Title: "Scan it"}
	doc := renderGuide(t, rec, nil)
	assert.Equal(t, "Scan it", doc.Find(".cta h2").Text())
	assert.Equal(t, "Download on the App Store", doc.Find(".cta a").Text())
}

func TestBadgeFor(t *testing.T) {
	assert.Equal(t, "✓ Generally Safe", BadgeFor("safe").Label)
	assert.Equal(t, "⚠ Use Caution", BadgeFor("caution").Label)
	assert.Equal(t, "✗ High Risk", BadgeFor("UNSAFE").Label)
	assert.Equal(t, "⚠ Use Caution", BadgeFor("mystery").Label)
	assert.Equal(t, "#00a36f", string(BadgeFor("safe").Color))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 80, 77))
	exact := strings.Repeat("a", 80)
	assert.Equal(t, exact, Truncate(exact, 80, 77))
	assert.Equal(t, strings.Repeat("a", 77)+"...", Truncate(exact+"a", 80, 77))
	assert.Equal(t, "ééé...", Truncate("éééé", 3, 3), "counts characters, not bytes")
}

func TestHubEntries(t *testing.T) {
	records := []page.Record{
		{Slug: "b", Title: "banana bread", Doc: &page.Document{Verdict: page.Verdict{Status: "unsafe", Summary: strings.Repeat("s", 81)}}},
		{Slug: "is-apple-gluten-free", Doc: &page.Document{}},
		{Slug: "c", Title: "Cherry", Doc: &page.Document{Verdict: page.Verdict{Summary: "Fine."}}},
	}
	entries := HubEntries(records)
	require.Len(t, entries, 3)

	assert.Equal(t, "banana bread", entries[0].Title)
	assert.Equal(t, strings.Repeat("s", 77)+"...", entries[0].Description)
	assert.Equal(t, "✗ High Risk", entries[0].Badge.Label)
	assert.Equal(t, "Cherry", entries[1].Title)
	assert.Empty(t, entries[1].Badge.Label)
	assert.Equal(t, "Is Apple Gluten Free", entries[2].Title)
	assert.Equal(t, "/is-apple-gluten-free/", entries[2].Href)
}

func TestHub_Renders(t *testing.T) {
	r, err := New(testSite())
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Hub(&buf, []page.Record{soySauce()}))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	link := doc.Find(".hub .card a")
	href, _ := link.Attr("href")
	assert.Equal(t, "/is-soy-sauce-gluten-free/", href)
	assert.Equal(t, "Is soy sauce gluten free?", link.Text())
	assert.Equal(t, "Traditional soy sauce is brewed with wheat.", doc.Find(".hub .card p").Text())
}

package render

import (
	"cmp"
	"html/template"
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/page"
	"git.home.luguber.info/inful/guidebuilder/internal/taxonomy"
	"git.home.luguber.info/inful/guidebuilder/internal/topic"
)

const (
	cardDescriptionLimit = 100
	hubDescriptionLimit  = 80
	hubDescriptionKeep   = 77
	ellipsis             = "..."
)

// Badge is the verdict pill shown on guide pages and hub entries.
type Badge struct {
	Status string
	Label  string
	Color  template.CSS
}

var badges = map[string]Badge{
	page.StatusSafe:    {Status: page.StatusSafe, Label: "✓ Generally Safe", Color: "#00a36f"},
	page.StatusCaution: {Status: page.StatusCaution, Label: "⚠ Use Caution", Color: "#f59e0b"},
	page.StatusUnsafe:  {Status: page.StatusUnsafe, Label: "✗ High Risk", Color: "#ef4444"},
}

// BadgeFor maps a verdict status to its badge. Unknown statuses render as caution.
func BadgeFor(status string) Badge {
	if b, ok := badges[strings.ToLower(status)]; ok {
		return b
	}
	return badges[page.StatusCaution]
}

var categoryLabels = map[taxonomy.Category]string{
	taxonomy.Sauces:     "Sauces",
	taxonomy.Noodles:    "Noodles & Wraps",
	taxonomy.Breakfast:  "Breakfast",
	taxonomy.Meals:      "Meals",
	taxonomy.BreadBaked: "Bread & Baked Goods",
	taxonomy.Asian:      "Asian Cuisine",
	taxonomy.Condiments: "Condiments",
	taxonomy.Other:      "More Guides",
}

// CategoryLabel is the display name of a category.
func CategoryLabel(c taxonomy.Category) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return topic.TitleCase(strings.ReplaceAll(string(c), "_", " "))
}

// Truncate shortens s to keep characters plus "..." when it is longer than limit characters.
func Truncate(s string, limit, keep int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:keep]) + ellipsis
}

type pageMeta struct {
	Lang        string
	SiteName    string
	PageTitle   string
	Description string
	Canonical   string
}

// Card links to a related guide.
type Card struct {
	Href        string
	Title       string
	Description string
}

type section struct {
	Title string
	Body  template.HTML
}

type guideData struct {
	pageMeta
	Heading       string
	CategoryLabel string
	Badge         Badge
	Summary       string
	Intro         string
	Risk          []string
	Safe          []string
	Waiter        string
	Alternatives  []string
	Brands        []string
	Sections      []section
	FAQ           []page.FAQ
	CTA           page.CTA
	Related       []Card
	Disclaimer    string
}

// Href is the site path of a guide.
func Href(slug string) string { return "/" + slug + "/" }

// Cards builds related cards from records.
func Cards(related []page.Record) []Card {
	cards := make([]Card, len(related))
	for i, r := range related {
		cards[i] = Card{
			Href:        Href(r.Slug),
			Title:       r.Title,
			Description: Truncate(r.Description, cardDescriptionLimit, cardDescriptionLimit),
		}
	}
	return cards
}

func (r *Renderer) guideData(rec page.Record, category taxonomy.Category, related []page.Record) (guideData, error) {
	doc := rec.Doc
	if doc == nil {
		doc = &page.Document{}
	}
	canonical := doc.Canonical
	if canonical == "" {
		canonical = r.site.Origin + Href(rec.Slug)
	}
	pageTitle := cmp.Or(doc.Title, rec.Title, topic.TitleFromSlug(rec.Slug))

	sections := make([]section, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		body, err := r.md.Render(s.Body)
		if err != nil {
			return guideData{}, ferrors.WrapError(err, ferrors.CategoryRender, "failed to render section markdown").
				Fatal().
				WithContext("slug", rec.Slug).
				WithContext("section", s.Title).
				Build()
		}
		sections = append(sections, section{Title: s.Title, Body: body})
	}

	return guideData{
		pageMeta: pageMeta{
			Lang:        cmp.Or(doc.Locale, r.site.Lang),
			SiteName:    r.site.Name,
			PageTitle:   pageTitle,
			Description: cmp.Or(doc.Description, rec.Description),
			Canonical:   canonical,
		},
		Heading:       cmp.Or(rec.Title, pageTitle),
		CategoryLabel: CategoryLabel(category),
		Badge:         BadgeFor(doc.Verdict.Status),
		Summary:       doc.Verdict.Summary,
		Intro:         doc.Intro,
		Risk:          doc.Ingredients.Risk,
		Safe:          doc.Ingredients.Safe,
		Waiter:        doc.WaiterScript.Preview,
		Alternatives:  doc.SafeAlternatives,
		Brands:        doc.KnownGFBrands,
		Sections:      sections,
		FAQ:           doc.FAQ,
		CTA:           r.cta(doc.CTA),
		Related:       Cards(related),
		Disclaimer:    doc.Disclaimer,
	}, nil
}

func (r *Renderer) cta(c *page.CTA) page.CTA {
	out := r.site.CTA
	if c == nil {
		return out
	}
	out.Title = cmp.Or(c.Title, out.Title)
	out.Body = cmp.Or(c.Body, out.Body)
	out.Href = cmp.Or(c.Href, out.Href)
	out.Label = cmp.Or(c.Label, out.Label)
	return out
}

// HubEntry is one line of the knowledge hub.
type HubEntry struct {
	Slug        string
	Href        string
	Title       string
	Description string
	Badge       Badge
}

type hubData struct {
	pageMeta
	Entries []HubEntry
}

// HubEntries lists records sorted case-insensitively by title. Records without
// a title use their slug in title case.
func HubEntries(records []page.Record) []HubEntry {
	entries := make([]HubEntry, len(records))
	for i, rec := range records {
		e := HubEntry{
			Slug:  rec.Slug,
			Href:  Href(rec.Slug),
			Title: cmp.Or(rec.Title, topic.TitleFromSlug(rec.Slug)),
		}
		if rec.Doc != nil {
			e.Description = Truncate(rec.Doc.Verdict.Summary, hubDescriptionLimit, hubDescriptionKeep)
			if rec.Doc.Verdict.Status != "" {
				e.Badge = BadgeFor(rec.Doc.Verdict.Status)
			}
		}
		entries[i] = e
	}
	slices.SortStableFunc(entries, func(a, b HubEntry) int {
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	})
	return entries
}

// Package topic holds the naming rules shared by page scaffolding, refresh and rendering:
// slugs, display names and plural detection.
package topic

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s and collapses every run of non-alphanumerics to a single dash.
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// TitleCase capitalizes each whitespace-separated word and lower-cases the rest of it.
func TitleCase(s string) string {
	caser := cases.Title(language.English)
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// TitleFromSlug turns "is-soy-sauce-gluten-free" into "Is Soy Sauce Gluten Free".
func TitleFromSlug(slug string) string {
	return TitleCase(strings.ReplaceAll(slug, "-", " "))
}

// Name returns the display name of a page topic: the title-cased topic key, or
// the slug stripped of its "is-"/"are-" and "-gluten-free" decorations.
func Name(topicKey, slug string) string {
	if topicKey != "" {
		return TitleFromSlug(topicKey)
	}
	s := strings.ReplaceAll(slug, "is-", "")
	s = strings.ReplaceAll(s, "are-", "")
	s = strings.ReplaceAll(s, "-gluten-free", "")
	return TitleFromSlug(s)
}

var pluralEndings = []string{
	"noodles", "waffles", "pancakes", "croissants", "breadcrumbs", "wrappers",
	"browns", "nuggets", "meatballs", "sausages", "chips", "eggs", "oats",
}

var pluralExact = map[string]struct{}{
	"fish-and-chips": {}, "bacon-and-eggs": {}, "scrambled-eggs": {}, "overnight-oats": {},
	"hash-browns": {}, "chicken-nuggets": {}, "spring-roll-wrappers": {}, "dumpling-wrappers": {},
	"panko-breadcrumbs": {}, "tortilla-chips": {}, "flour-tortillas": {}, "corn-tortillas": {},
	"egg-rolls": {}, "bagels": {}, "pretzels": {},
}

// IsPlural reports whether a topic key names a plural food ("Are X gluten free?").
func IsPlural(topicKey string) bool {
	k := strings.ToLower(topicKey)
	for _, e := range pluralEndings {
		if k == e || strings.HasSuffix(k, "-"+e) {
			return true
		}
	}
	_, ok := pluralExact[topicKey]
	return ok
}

// IsPluralSlug reports whether a page slug uses the plural "are-" form.
func IsPluralSlug(slug string) bool { return strings.HasPrefix(slug, "are-") }

// Verb returns "is" or "are" for a topic key.
func Verb(topicKey string) string {
	if IsPlural(topicKey) {
		return "are"
	}
	return "is"
}

// PageSlug builds the guide slug for a topic key, e.g. "is-soy-sauce-gluten-free".
func PageSlug(topicKey string) string {
	return Verb(topicKey) + "-" + topicKey + "-gluten-free"
}

var singularLead = regexp.MustCompile(`(?i)^This (item|dish|sauce) `)

// PluralizeSummary rewrites a leading "This item|dish|sauce " to "These items ".
func PluralizeSummary(summary string) string {
	return singularLead.ReplaceAllString(summary, "These items ")
}

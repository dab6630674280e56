package refresh

import (
	"git.home.luguber.info/inful/guidebuilder/internal/topic"
)

// Apply writes profile into a raw page record, leaving unrelated fields alone.
// Plural ("are-") pages get a pluralized summary lead. An empty brand list
// removes known_gf_brands from the record.
func Apply(raw map[string]any, p *Profile) {
	slug, _ := raw["slug"].(string)
	summary := p.Summary
	if topic.IsPluralSlug(slug) {
		summary = topic.PluralizeSummary(summary)
	}

	raw["verdict"] = map[string]any{"status": p.Verdict, "summary": summary}
	raw["ingredients"] = map[string]any{"risk": anyList(p.Risk), "safe": anyList(p.Safe)}
	raw["waiter_script"] = map[string]any{"preview": p.Waiter}
	raw["safe_alternatives"] = anyList(p.Alternatives)
	if len(p.KnownGFBrands) > 0 {
		raw["known_gf_brands"] = anyList(p.KnownGFBrands)
	} else {
		delete(raw, "known_gf_brands")
	}
}

// TopicName derives the display name sent to the provider. stem stands in
// for a missing slug.
func TopicName(raw map[string]any, stem string) string {
	key, _ := raw["topic_key"].(string)
	slug, _ := raw["slug"].(string)
	if slug == "" {
		slug = stem
	}
	return topic.Name(key, slug)
}

// anyList keeps list values in the same shape json.Unmarshal produces, so a
// freshly applied record fingerprints like one read back from disk.
func anyList(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}

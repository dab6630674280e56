// Package seed scaffolds new page records from a list of topic names.
package seed

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/history"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
	"git.home.luguber.info/inful/guidebuilder/internal/page"
	"git.home.luguber.info/inful/guidebuilder/internal/topic"
)

// SchemaVersion is written into every scaffolded record.
const SchemaVersion = 1

// DefaultMaxNew caps the pages created per run.
const DefaultMaxNew = 10

const disclaimer = "This guidance is informational only. Always verify ingredients and preparation with the restaurant."

// BuildDocument scaffolds the record for topicName as of today.
func BuildDocument(topicName string, cta page.CTA, today time.Time) *page.Document {
	key := topic.Slugify(topicName)
	verb := topic.Verb(key)
	verbCap := strings.ToUpper(verb[:1]) + verb[1:]
	name := topic.TitleCase(topicName)

	prof := ProfileFor(topicName)
	summary := prof.Summary
	if verb == "are" {
		summary = topic.PluralizeSummary(summary)
	}

	doc := &page.Document{
		SchemaVersion: SchemaVersion,
		TopicKey:      key,
		Slug:          topic.PageSlug(key),
		Title:         verbCap + " " + name + " Gluten Free? | BiteRight",
		Description:   "Public gluten safety analysis for " + name + ". See major risks, safer alternatives, and what to ask before ordering.",
		Heading:       verbCap + " " + name + " gluten free?",
		Intro:         "This public analysis report explains the biggest gluten risks in " + name + " and how to order more safely.",
		Verdict:       page.Verdict{Status: prof.Verdict, Summary: summary},
		Disclaimer:    disclaimer,
		Meta:          page.Meta{UpdatedAt: today.Format(page.DateLayout)},
		Sections: []page.Section{
			{Title: "Quick answer", Body: name + " can vary by recipe, ingredients, and cross-contact controls in the kitchen."},
			{Title: "Common gluten risks", Body: "Watch for hidden sources like soy sauce, malt flavoring, marinades, thickeners, and shared fryers."},
			{Title: "How BiteRight helps", Body: "Scan menus and ingredient labels with BiteRight to get a localized gluten-risk breakdown in seconds."},
		},
		Ingredients:      page.Ingredients{Risk: prof.Risk, Safe: prof.Safe},
		WaiterScript:     page.WaiterScript{Preview: prof.Waiter},
		SafeAlternatives: prof.Alternatives,
		FAQ: []page.FAQ{
			{
				Question: "Can BiteRight confirm if " + name + " " + verb + " gluten free?",
				Answer:   "BiteRight highlights likely gluten risks based on ingredients and preparation. Always confirm with the kitchen if you have coeliac disease.",
			},
			{
				Question: "What should I ask a restaurant?",
				Answer:   "Ask about shared equipment, sauces, marinades, and whether the kitchen has a dedicated gluten-free prep area.",
			},
		},
	}
	if cta != (page.CTA{}) {
		c := cta
		doc.CTA = &c
	}
	return doc
}

// ReadTopics returns the non-blank, trimmed lines of a seeds file.
func ReadTopics(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.ConfigError("seeds file not found").WithContext("path", path).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to open seeds file").
			WithContext("path", path).
			Build()
	}
	defer func() { _ = f.Close() }()

	var topics []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			topics = append(topics, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read seeds file").
			WithContext("path", path).
			Build()
	}
	return topics, nil
}

// Options controls a seed run.
type Options struct {
	PagesDir string
	MaxNew   int
	CTA      page.CTA
	Now      func() time.Time
	Ledger   *history.Ledger
}

// Result lists the slugs written by Generate.
type Result struct {
	RunID   string
	Created []string
}

// Generate writes a record for each topic whose slug has no file yet, up to
// MaxNew. The "test" topic is never scaffolded.
func Generate(ctx context.Context, topics []string, opts Options) (*Result, error) {
	if opts.MaxNew <= 0 {
		opts.MaxNew = DefaultMaxNew
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if err := os.MkdirAll(opts.PagesDir, 0o755); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create pages directory").
			WithContext("path", opts.PagesDir).
			Build()
	}

	// Every stem counts, excluded or not, so fixtures are never overwritten.
	loader := page.NewLoader(opts.PagesDir, nil)
	existing, err := loader.Stems()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[s] = true
	}

	res := &Result{RunID: history.NewBuildID()}
	today := opts.Now()
	for _, name := range topics {
		if len(res.Created) >= opts.MaxNew {
			break
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		key := topic.Slugify(name)
		if key == "" || key == "test" {
			continue
		}
		doc := BuildDocument(name, opts.CTA, today)
		if seen[doc.Slug] {
			continue
		}

		raw, err := page.ToRaw(doc)
		if err != nil {
			return res, err
		}
		if doc.Meta.Fingerprint, err = page.ComputeFingerprint(raw); err != nil {
			return res, err
		}
		path := loader.Path(doc.Slug)
		if err := page.WriteJSON(path, doc); err != nil {
			return res, err
		}
		seen[doc.Slug] = true
		res.Created = append(res.Created, doc.Slug)
		slog.Info("Created page", logfields.Slug(doc.Slug), logfields.Path(path))
	}

	if err := opts.Ledger.Record(ctx, res.RunID, history.TypePagesSeeded, history.PagesSeeded{Created: res.Created}); err != nil {
		slog.Warn("Failed to record seed history", logfields.Error(err))
	}
	slog.Info("Seeding finished", logfields.Count(len(res.Created)))
	return res, nil
}

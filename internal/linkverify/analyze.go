// Package linkverify measures how well rendered guide pages link to each other.
package linkverify

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/page"
)

// DefaultMinIncoming is the incoming-link threshold for a well linked page.
const DefaultMinIncoming = 3

// Grades assigned from the well-linked percentage.
const (
	GradeExcellent        = "EXCELLENT"
	GradeGood             = "GOOD"
	GradeNeedsImprovement = "NEEDS IMPROVEMENT"
)

// Options controls an analysis run.
type Options struct {
	OutputDir   string   // rendered site root
	HubPath     string   // hub page, relative to OutputDir
	Origin      *url.URL // site origin for absolute internal links
	MinIncoming int
}

// PageLinks is the per-page result.
type PageLinks struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Incoming int    `json:"incoming"`
	FromHub  bool   `json:"from_hub"`
	Rendered bool   `json:"rendered"`
}

// BrokenLink is an internal guide link whose target has no rendered page.
type BrokenLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Report summarizes the internal link graph.
type Report struct {
	Pages        []PageLinks  `json:"pages"`
	Distribution map[int]int  `json:"distribution"`
	Insufficient []PageLinks  `json:"insufficient,omitempty"`
	Broken       []BrokenLink `json:"broken,omitempty"`
	HubExists    bool         `json:"hub_exists"`
	HubLinked    int          `json:"hub_linked"`
	WellLinked   int          `json:"well_linked"`
	Percent      float64      `json:"percent_well_linked"`
	Average      float64      `json:"average_incoming"`
	MinIncoming  int          `json:"min_incoming"`
	Grade        string       `json:"grade"`
}

// Total is the number of analysed pages.
func (r *Report) Total() int { return len(r.Pages) }

// Analyze counts, for every record, how many other rendered guide pages link
// to it. A hub link adds one more. Pages whose HTML is missing score zero.
func Analyze(ctx context.Context, records []page.Record, opts Options) (*Report, error) {
	if opts.MinIncoming <= 0 {
		opts.MinIncoming = DefaultMinIncoming
	}

	known := make(map[string]bool, len(records))
	for _, r := range records {
		known[r.Slug] = true
	}

	incoming := make(map[string]int, len(records))
	rendered := make(map[string]bool, len(records))
	var broken []BrokenLink

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(opts.OutputDir, r.Slug, "index.html")
		targets, ok, err := targetsIn(path, opts.Origin)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		rendered[r.Slug] = true
		for target := range targets {
			switch {
			case target == r.Slug:
			case known[target]:
				incoming[target]++
			case !exists(filepath.Join(opts.OutputDir, target, "index.html")):
				broken = append(broken, BrokenLink{Source: r.Slug, Target: target})
			}
		}
	}

	rep := &Report{
		Distribution: make(map[int]int),
		MinIncoming:  opts.MinIncoming,
	}

	var hubTargets map[string]bool
	if opts.HubPath != "" {
		var err error
		hubTargets, rep.HubExists, err = targetsIn(filepath.Join(opts.OutputDir, opts.HubPath), opts.Origin)
		if err != nil {
			return nil, err
		}
	}

	sum := 0
	for _, r := range records {
		pl := PageLinks{Slug: r.Slug, Title: r.Title, Rendered: rendered[r.Slug]}
		if pl.Rendered {
			pl.Incoming = incoming[r.Slug]
			if hubTargets[r.Slug] {
				pl.FromHub = true
				pl.Incoming++
			}
		}
		if hubTargets[r.Slug] {
			rep.HubLinked++
		}
		rep.Pages = append(rep.Pages, pl)
		rep.Distribution[pl.Incoming]++
		sum += pl.Incoming
		if pl.Incoming >= opts.MinIncoming {
			rep.WellLinked++
		} else {
			rep.Insufficient = append(rep.Insufficient, pl)
		}
	}

	slices.SortStableFunc(rep.Insufficient, func(a, b PageLinks) int { return a.Incoming - b.Incoming })
	slices.SortFunc(broken, func(a, b BrokenLink) int {
		if c := strings.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return strings.Compare(a.Target, b.Target)
	})
	rep.Broken = broken

	if n := len(records); n > 0 {
		rep.Percent = float64(rep.WellLinked) / float64(n) * 100
		rep.Average = float64(sum) / float64(n)
	}
	rep.Grade = grade(rep.Percent)
	return rep, nil
}

func grade(percent float64) string {
	switch {
	case percent >= 90:
		return GradeExcellent
	case percent >= 70:
		return GradeGood
	default:
		return GradeNeedsImprovement
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// targetsIn returns the distinct guide slugs linked from the HTML file at
// path. ok is false when the file does not exist.
func targetsIn(path string, origin *url.URL) (map[string]bool, bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to stat rendered page").
			WithContext("path", path).
			Build()
	}
	links, err := ExtractLinks(path, origin)
	if err != nil {
		return nil, false, err
	}
	targets := make(map[string]bool)
	for _, l := range links {
		if slug, ok := TargetSlug(l, origin); ok {
			targets[slug] = true
		}
	}
	return targets, true, nil
}

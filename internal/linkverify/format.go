package linkverify

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
)

const (
	maxBar          = 50
	maxInsufficient = 10
	rule            = "------------------------------------------------------------"
)

// WriteText renders the report as the human readable analysis.
func WriteText(w io.Writer, r *Report) error {
	var b strings.Builder

	b.WriteString("Internal Linking Analysis\n")
	b.WriteString(strings.Repeat("=", len(rule)) + "\n\n")

	if r.HubExists {
		b.WriteString("Knowledge Hub: generated\n")
		fmt.Fprintf(&b, "  Links to guide pages: %d/%d\n\n", r.HubLinked, r.Total())
	} else {
		b.WriteString("Knowledge Hub: missing\n\n")
	}

	b.WriteString("Internal Link Distribution (incoming links per page):\n")
	b.WriteString(rule + "\n")
	counts := make([]int, 0, len(r.Distribution))
	for c := range r.Distribution {
		counts = append(counts, c)
	}
	slices.Sort(counts)
	slices.Reverse(counts)
	for _, c := range counts {
		n := r.Distribution[c]
		fmt.Fprintf(&b, "  %2d links: %s (%d pages)\n", c, strings.Repeat("#", min(n, maxBar)), n)
	}
	b.WriteString("\n")

	b.WriteString("Summary:\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "  Total guide pages: %d\n", r.Total())
	fmt.Fprintf(&b, "  Pages with %d+ internal links: %d (%.1f%%)\n", r.MinIncoming, r.WellLinked, r.Percent)
	fmt.Fprintf(&b, "  Average links per page: %.1f\n\n", r.Average)

	if len(r.Insufficient) > 0 {
		fmt.Fprintf(&b, "Pages with fewer than %d internal links (%d):\n", r.MinIncoming, len(r.Insufficient))
		for _, p := range r.Insufficient[:min(len(r.Insufficient), maxInsufficient)] {
			fmt.Fprintf(&b, "  - %s: %d links\n", displayTitle(p), p.Incoming)
		}
		if extra := len(r.Insufficient) - maxInsufficient; extra > 0 {
			fmt.Fprintf(&b, "  ... and %d more\n", extra)
		}
	} else {
		fmt.Fprintf(&b, "All pages have at least %d internal links.\n", r.MinIncoming)
	}

	if len(r.Broken) > 0 {
		fmt.Fprintf(&b, "\nBroken internal links (%d):\n", len(r.Broken))
		for _, l := range r.Broken {
			fmt.Fprintf(&b, "  - /%s/ -> /%s/\n", l.Source, l.Target)
		}
	}

	b.WriteString("\nSEO Impact:\n")
	b.WriteString(rule + "\n")
	switch r.Grade {
	case GradeExcellent:
		b.WriteString("  EXCELLENT: Strong internal linking structure\n")
	case GradeGood:
		b.WriteString("  GOOD: Most pages have adequate internal links\n")
	default:
		b.WriteString("  NEEDS IMPROVEMENT: Many pages lack sufficient internal links\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON renders the report as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func displayTitle(p PageLinks) string {
	if p.Title != "" {
		return p.Title
	}
	return p.Slug
}

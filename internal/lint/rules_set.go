package lint

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/guidebuilder/internal/markdown"
)

// DuplicateSlugRule reports slugs claimed by more than one file.
type DuplicateSlugRule struct{}

func (r *DuplicateSlugRule) Name() string { return "duplicate-slug" }

func (r *DuplicateSlugRule) CheckAll(files []*File) []Issue {
	first := make(map[string]string)
	var issues []Issue
	for _, f := range files {
		slug := slugOf(f)
		if slug == "" {
			continue
		}
		if prev, ok := first[slug]; ok {
			issues = append(issues, Issue{
				FilePath:    f.Path,
				Severity:    SeverityError,
				Rule:        r.Name(),
				Message:     fmt.Sprintf("Slug is duplicated: %s", slug),
				Explanation: "Also used by " + prev + ". Two records with one slug render to the same URL.",
			})
			continue
		}
		first[slug] = f.Path
	}
	return issues
}

// SectionLinkRule reports Markdown links in section bodies that point at a
// guide slug no record defines.
type SectionLinkRule struct {
	// Static lists site paths outside the record set, e.g. "/knowledge-hub/".
	Static []string
}

func (r *SectionLinkRule) Name() string { return "section-links" }

func (r *SectionLinkRule) CheckAll(files []*File) []Issue {
	known := make(map[string]bool, len(files)+len(r.Static))
	for _, f := range files {
		if slug := slugOf(f); slug != "" {
			known["/"+slug+"/"] = true
		}
	}
	for _, p := range r.Static {
		known[p] = true
	}

	var issues []Issue
	for _, f := range files {
		sections, _ := f.Raw["sections"].([]any)
		for _, s := range sections {
			sec, _ := s.(map[string]any)
			body, _ := sec["body"].(string)
			if body == "" {
				continue
			}
			for _, link := range markdown.ExtractLinks([]byte(body)) {
				if !link.IsInternal() || link.Kind == markdown.LinkKindImage {
					continue
				}
				dest := link.Destination
				if i := strings.IndexAny(dest, "?#"); i >= 0 {
					dest = dest[:i]
				}
				if known[dest] {
					continue
				}
				title, _ := sec["title"].(string)
				issues = append(issues, Issue{
					FilePath: f.Path,
					Severity: SeverityWarning,
					Rule:     r.Name(),
					Message:  fmt.Sprintf("Section %q links to unknown page %s", title, link.Destination),
					Fix:      "Point the link at an existing guide or create the missing record",
				})
			}
		}
	}
	return issues
}

func slugOf(f *File) string {
	if f.Raw == nil {
		return ""
	}
	s, _ := f.Raw["slug"].(string)
	return s
}

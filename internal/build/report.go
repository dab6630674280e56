// Package build runs the site generation pipeline: load the page records,
// partition them by category, select related pages, and write the guide
// pages, the knowledge hub, the sitemap and the landing page.
//
// All execution paths (CLI build, preview server, scheduled rebuilds) route
// through Builder.Run.
package build

import (
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/taxonomy"
)

// Status represents the outcome of a build execution.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsSuccess returns true if the build completed successfully.
func (s Status) IsSuccess() bool { return s == StatusSuccess }

// Pipeline stage names used in logs, metrics and history events.
const (
	StageLoad      = "load"
	StagePartition = "partition"
	StageRender    = "render"
	StageHub       = "hub"
	StageSitemap   = "sitemap"
	StageLanding   = "landing"
	StageClean     = "clean"
)

// Assignment is the category and related set computed for one record.
type Assignment struct {
	Slug     string            `json:"slug"`
	Title    string            `json:"title"`
	Category taxonomy.Category `json:"category"`
	Related  []string          `json:"related"`
}

// Report contains the outcome of a build execution.
type Report struct {
	BuildID     string
	Status      Status
	Strategy    string
	OutputDir   string
	Pages       int
	Categories  map[taxonomy.Category]int
	Assignments []Assignment
	SitemapURLs int
	// LandingCopied is set when the static landing page was copied to the output root.
	LandingCopied bool
	// FailedStage names the stage that aborted the build.
	FailedStage string
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}

// CategoryCounts returns the per-category page counts keyed by name.
func (r *Report) CategoryCounts() map[string]int {
	out := make(map[string]int, len(r.Categories))
	for c, n := range r.Categories {
		out[string(c)] = n
	}
	return out
}

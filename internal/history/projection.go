package history

import (
	"context"
	"slices"
	"time"
)

// Run statuses reported by BuildSummary.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run kinds.
const (
	KindBuild   = "build"
	KindRefresh = "refresh"
	KindSeed    = "seed"
)

// BuildSummary is the read model of one run in the ledger.
type BuildSummary struct {
	BuildID      string         `json:"build_id"`
	Kind         string         `json:"kind"`
	Status       string         `json:"status"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	Duration     time.Duration  `json:"duration,omitempty"`
	Strategy     string         `json:"strategy,omitempty"`
	Pages        int            `json:"pages"`
	Categories   map[string]int `json:"categories,omitempty"`
	ErrorStage   string         `json:"error_stage,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Updated      int            `json:"updated,omitempty"`
	Failed       int            `json:"failed,omitempty"`
	Created      int            `json:"created,omitempty"`
}

// Summarize folds events into one summary per run, newest first.
// Undecodable payloads leave the affected fields at their zero values.
func Summarize(events []Event) []BuildSummary {
	byID := make(map[string]*BuildSummary)
	var order []string

	for _, ev := range events {
		if ev.BuildID == "" {
			continue
		}
		s, ok := byID[ev.BuildID]
		if !ok {
			s = &BuildSummary{BuildID: ev.BuildID, Kind: KindBuild, Status: StatusRunning, StartedAt: ev.Timestamp}
			byID[ev.BuildID] = s
			order = append(order, ev.BuildID)
		}
		apply(s, ev)
	}

	out := make([]BuildSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	slices.SortStableFunc(out, func(a, b BuildSummary) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	return out
}

func apply(s *BuildSummary, ev Event) {
	finish := func(status string) {
		at := ev.Timestamp
		s.CompletedAt = &at
		s.Duration = at.Sub(s.StartedAt)
		s.Status = status
	}

	switch ev.Type {
	case TypeBuildStarted:
		var p BuildStarted
		s.StartedAt = ev.Timestamp
		if ev.Decode(&p) == nil {
			s.Strategy = p.Strategy
		}
	case TypeBuildCompleted:
		var p BuildCompleted
		finish(StatusCompleted)
		if ev.Decode(&p) == nil {
			s.Pages = p.Pages
			s.Categories = p.Categories
		}
	case TypeBuildFailed:
		var p BuildFailed
		finish(StatusFailed)
		if ev.Decode(&p) == nil {
			s.ErrorStage = p.Stage
			s.ErrorMessage = p.Error
		}
	case TypePagesRefreshed:
		var p PagesRefreshed
		s.Kind = KindRefresh
		finish(StatusCompleted)
		if ev.Decode(&p) == nil {
			s.Updated = len(p.Updated)
			s.Failed = len(p.Failed)
			s.Pages = len(p.Updated) + len(p.Unchanged) + len(p.Failed)
			if s.Failed > 0 {
				s.Status = StatusFailed
			}
		}
	case TypePagesSeeded:
		var p PagesSeeded
		s.Kind = KindSeed
		finish(StatusCompleted)
		if ev.Decode(&p) == nil {
			s.Created = len(p.Created)
			s.Pages = s.Created
		}
	}
}

// Recent returns at most n summaries from store, newest first. n <= 0 means all.
func Recent(ctx context.Context, store Store, n int) ([]BuildSummary, error) {
	events, err := store.All(ctx)
	if err != nil {
		return nil, err
	}
	out := Summarize(events)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

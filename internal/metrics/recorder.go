package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultSkipped ResultLabel = "skipped"
	ResultFailed  ResultLabel = "failed"
)

// BuildOutcome is the final status of a build.
type BuildOutcome string

const (
	BuildSuccess  BuildOutcome = "success"
	BuildFailed   BuildOutcome = "failed"
	BuildCanceled BuildOutcome = "canceled"
)

// Recorder defines observability hooks for builds, related-page selection and refreshes.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcome)
	SetPagesRendered(n int)
	SetCategoryPages(category string, n int)
	ObserveRelatedLinks(n int)
	IncRefreshResult(result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)               {}
func (NoopRecorder) SetPagesRendered(int)                       {}
func (NoopRecorder) SetCategoryPages(string, int)               {}
func (NoopRecorder) ObserveRelatedLinks(int)                    {}
func (NoopRecorder) IncRefreshResult(ResultLabel)               {}

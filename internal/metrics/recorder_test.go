package metrics

import (
	"testing"
	"time"
)

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("render", time.Second)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("render", ResultSuccess)
	r.IncBuildOutcome(BuildSuccess)
	r.SetPagesRendered(3)
	r.SetCategoryPages("sauces", 2)
	r.ObserveRelatedLinks(6)
	r.IncRefreshResult(ResultSkipped)
}

package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg            *prom.Registry
	stageDuration  *prom.HistogramVec
	buildDuration  prom.Histogram
	stageResults   *prom.CounterVec
	buildOutcome   *prom.CounterVec
	pagesRendered  prom.Gauge
	categoryPages  *prom.GaugeVec
	relatedLinks   prom.Histogram
	refreshResults *prom.CounterVec
}

// NewPrometheusRecorder constructs metrics and registers them on reg.
func NewPrometheusRecorder(reg *prom.Registry, namespace string) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	if namespace == "" {
		namespace = "guidebuilder"
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual build stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "build_duration_seconds",
		Help:      "Total build duration",
		Buckets:   prom.DefBuckets,
	})
	pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "stage_results_total",
		Help:      "Stage result counts by outcome",
	}, []string{"stage", "result"})
	pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "build_outcomes_total",
		Help:      "Build outcomes by final status",
	}, []string{"outcome"})
	pr.pagesRendered = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pages_rendered",
		Help:      "Guide pages rendered by the last build",
	})
	pr.categoryPages = prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "category_pages",
		Help:      "Guide pages per category in the last build",
	}, []string{"category"})
	pr.relatedLinks = prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "related_links_per_page",
		Help:      "Related links selected per guide page",
		Buckets:   prom.LinearBuckets(0, 1, 9),
	})
	pr.refreshResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_results_total",
		Help:      "Page refresh results by outcome",
	}, []string{"result"})
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
		pr.pagesRendered, pr.categoryPages, pr.relatedLinks, pr.refreshResults)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetPagesRendered(n int) { p.pagesRendered.Set(float64(n)) }

func (p *PrometheusRecorder) SetCategoryPages(category string, n int) {
	p.categoryPages.WithLabelValues(category).Set(float64(n))
}

func (p *PrometheusRecorder) ObserveRelatedLinks(n int) { p.relatedLinks.Observe(float64(n)) }

func (p *PrometheusRecorder) IncRefreshResult(result ResultLabel) {
	p.refreshResults.WithLabelValues(string(result)).Inc()
}

// Registry returns the registry the recorder writes to.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

// HTTPHandler serves the recorder's metrics.
func (p *PrometheusRecorder) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// WriteTextfile writes the current metrics in the node_exporter textfile format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}

// Package metrics records build and refresh metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never needs nil checks at call sites:
//
//	recorder := metrics.NewPrometheusRecorder(prom.NewRegistry(), "guidebuilder")
//	report, err := build.Run(ctx, cfg, build.WithRecorder(recorder))
//
// A PrometheusRecorder can be exported as a node_exporter textfile after a
// one-shot build or scraped over HTTP while `guidebuilder serve` is running.
package metrics

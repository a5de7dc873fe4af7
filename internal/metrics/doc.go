// Package metrics provides build matrix observability for crosspy.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics cost nothing unless enabled:
//
//	d := dispatch.New(backend, dispatch.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// PrometheusRecorder registers its collectors on a caller-supplied registry.
// A batch tool has no scrape endpoint, so the registry is exported once at the
// end of a run with WriteTextfile, in the format read by the node exporter
// textfile collector.
package metrics

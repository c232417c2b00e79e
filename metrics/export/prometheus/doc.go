// Package prometheus provides Prometheus collectors for crewauth metrics.
//
// [NewPrometheusExporter] accepts a [crewauth.Engine] and exposes an [http.Handler]
// that renders all crewauth counters and histograms in Prometheus text exposition
// format. Counter names are prefixed crewauth_*_total; the single histogram is
// crewauth_validate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus

// Package promobs records observability metrics in Prometheus.
//
// An Observer wraps another observability.Provider: tracing and logging are
// delegated unchanged, while Counter and Histogram are backed by CounterVec and
// HistogramVec collectors registered on the supplied prometheus.Registerer.
// Metric names are sanitized ("viralflow.llm.requests" becomes
// "viralflow_llm_requests_total" for counters) and the attribute keys seen on
// the first use of a metric become its label set.
package promobs

// Package metrics defines the observability contract of the analytics
// service. A MetricsSink records served queries; sinks may also implement
// DatasetRecorder and OccupancyRecorder to receive load time facts. Concrete
// sinks live in infra/metrics and are combined with a MultiSink.
package metrics

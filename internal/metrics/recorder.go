// Package metrics defines observability hooks for the conversion pipeline.
package metrics

import "time"

// Recorder defines observability hooks for ingestion and rendering metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. The
// NoopRecorder allows optional injection.
type Recorder interface {
	ObservePassDuration(pass string, d time.Duration)
	IncDeclared(category string)
	IncDefined(category string)
	IncPagesGenerated()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePassDuration(string, time.Duration) {}
func (NoopRecorder) IncDeclared(string)                        {}
func (NoopRecorder) IncDefined(string)                         {}
func (NoopRecorder) IncPagesGenerated()                        {}

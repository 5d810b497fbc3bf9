// Package metrics records operational counters from the pipeline run. It
// exposes a narrow Backend interface with a global no-op default, so the
// pipeline stages can record freely whether or not a real backend was
// configured. Concrete backends (Pushgateway, Datadog) live in subpackages.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style observation.
	ObserveDuration(name string, value float64, labels Labels)
	// Flush pushes buffered metrics if the backend needs it.
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveDuration(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStage records one pipeline stage execution for an entity: latency
// plus success or failure. Stages are "extract", "clean", and "load".
func RecordStage(entity, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"entity": entity,
		"stage":  stage,
		"status": status,
	}
	backend.IncCounter("salesetl_stage_total", 1, lbls)
	backend.ObserveDuration("salesetl_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given entity and kind.
//
// Kinds mirror the stage outputs:
//   - "extracted": raw rows pulled from a source
//   - "cleaned":   rows surviving normalization
//   - "dropped":   rows discarded during normalization
//   - "loaded":    rows written to the warehouse
func RecordRows(entity, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("salesetl_rows_total", float64(delta), Labels{
		"entity": entity,
		"kind":   kind,
	})
}

// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package. The pipeline is a batch job, so metrics are collected in
// a local registry and pushed once at the end of the run rather than exposed
// on a scrape endpoint.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"salesetl/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stageCounter  *prometheus.CounterVec // salesetl_stage_total
	stageDuration *prometheus.SummaryVec // salesetl_stage_duration_seconds
	rowCounter    *prometheus.CounterVec // salesetl_rows_total
}

// NewBackend constructs a Pushgateway backend. jobName is the Pushgateway
// grouping key; it defaults to "salesetl".
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "salesetl"
	}

	reg := prometheus.NewRegistry()

	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesetl_stage_total",
			Help: "Pipeline stage executions, partitioned by entity, stage, and status.",
		},
		[]string{"entity", "stage", "status"},
	)
	stageDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "salesetl_stage_duration_seconds",
			Help:       "Pipeline stage durations in seconds, partitioned by entity, stage, and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"entity", "stage", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesetl_rows_total",
			Help: "Row counts per entity and kind (extracted, cleaned, dropped, loaded).",
		},
		[]string{"entity", "kind"},
	)

	if err := reg.Register(stageCounter); err != nil {
		return nil, fmt.Errorf("prompush: register stage counter: %w", err)
	}
	if err := reg.Register(stageDuration); err != nil {
		return nil, fmt.Errorf("prompush: register stage summary: %w", err)
	}
	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
		rowCounter:    rowCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "salesetl_stage_total":
		b.stageCounter.WithLabelValues(labels["entity"], labels["stage"], labels["status"]).Add(delta)
	case "salesetl_rows_total":
		b.rowCounter.WithLabelValues(labels["entity"], labels["kind"]).Add(delta)
	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveDuration(name string, value float64, labels metrics.Labels) {
	if name != "salesetl_stage_duration_seconds" {
		return
	}
	b.stageDuration.WithLabelValues(labels["entity"], labels["stage"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}

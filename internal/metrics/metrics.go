// Package metrics records the outcome of a reconciliation run as Prometheus
// gauges. A batch run has no scrape endpoint, so the registry is written
// to a node-exporter textfile instead.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agentstation/eventlink/pkg/errors"
	"github.com/agentstation/eventlink/pkg/reconciler"
)

const namespace = "eventlink"

// Recorder holds the gauges of one run on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	rows         *prometheus.GaugeVec
	records      *prometheus.GaugeVec
	groupRows    *prometheus.GaugeVec
	groupFailed  *prometheus.GaugeVec
	linkerDrops  *prometheus.GaugeVec
	duration     prometheus.Gauge
	lastSuccess  prometheus.Gauge
	runsRecorded prometheus.Counter
}

// New creates a Recorder with all gauges registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		rows: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "rows",
				Help:      "Output rows of the last run by match status",
			},
			[]string{"status"},
		),
		records: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "input_records",
				Help:      "Input records of the last run by side and state",
			},
			[]string{"side", "state"},
		),
		groupRows: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "group",
				Name:      "rows",
				Help:      "Rows per group of the last run by match status",
			},
			[]string{"group", "status"},
		),
		groupFailed: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "group",
				Name:      "failed",
				Help:      "1 if the group failed to reconcile in the last run",
			},
			[]string{"group"},
		),
		linkerDrops: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "linker",
				Name:      "dropped_rows",
				Help:      "Rows dropped while linking lookup tables by reason",
			},
			[]string{"reason"},
		),
		duration: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "duration_seconds",
				Help:      "Wall time of the last run in seconds",
			},
		),
		lastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last run in which every group reconciled",
			},
		),
		runsRecorded: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "recorded_total",
				Help:      "Number of runs recorded by this process",
			},
		),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records a result, replacing the values of any previous run.
func (r *Recorder) Observe(result *reconciler.Result) {
	s := result.Metadata.Stats

	r.rows.Reset()
	r.rows.WithLabelValues("matched").Set(float64(s.Matched))
	r.rows.WithLabelValues("unmatched_outreach").Set(float64(s.UnmatchedOutreach))
	r.rows.WithLabelValues("unmatched_event").Set(float64(s.UnmatchedEvents))
	r.rows.WithLabelValues("linked").Set(float64(s.LinkedRows))

	r.records.Reset()
	r.records.WithLabelValues("outreach", "input").Set(float64(s.OutreachRecords))
	r.records.WithLabelValues("event", "input").Set(float64(s.EventRecords))
	r.records.WithLabelValues("outreach", "ungrouped").Set(float64(len(result.Ungrouped.Outreach)))
	r.records.WithLabelValues("event", "ungrouped").Set(float64(len(result.Ungrouped.Events)))
	excluded := map[string]int{"outreach": 0, "event": 0}
	for _, x := range result.Excluded {
		excluded[string(x.Side)]++
	}
	for side, n := range excluded {
		r.records.WithLabelValues(side, "excluded").Set(float64(n))
	}

	r.groupRows.Reset()
	r.groupFailed.Reset()
	for _, g := range result.Groups {
		failed := 0.0
		if g.Failed {
			failed = 1
		}
		r.groupFailed.WithLabelValues(g.Group).Set(failed)
		r.groupRows.WithLabelValues(g.Group, "matched").Set(float64(g.Matched))
		r.groupRows.WithLabelValues(g.Group, "unmatched_outreach").Set(float64(g.UnmatchedOutreach))
		r.groupRows.WithLabelValues(g.Group, "unmatched_event").Set(float64(g.UnmatchedEvents))
		r.groupRows.WithLabelValues(g.Group, "dropped_empty").Set(float64(g.DroppedEmpty))
	}

	r.linkerDrops.Reset()
	r.linkerDrops.WithLabelValues("required").Set(float64(s.Filtered))
	r.linkerDrops.WithLabelValues("duplicate").Set(float64(s.Duplicates))

	r.duration.Set(result.Metadata.Duration.Seconds())
	if result.IsSuccess() {
		r.lastSuccess.Set(float64(result.Metadata.EndTime.Unix()))
	}
	r.runsRecorded.Inc()
}

// WriteFile writes the registry in the text exposition format. The file is
// written to a temporary name and renamed, so a collector never reads a
// partial file.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.WrapIO("write metrics", path, err)
	}
	return nil
}

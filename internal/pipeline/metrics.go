package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	windowPopulated = "populated"
	windowEmpty     = "empty"

	failureTimestamp = "timestamp"
	failureField     = "field"
)

// Metrics collects per-run counters on a private registry so a run can be
// exported as a textfile or pushed to a Pushgateway when it finishes.
type Metrics struct {
	registry *prometheus.Registry

	recordsRead       prometheus.Counter
	blankFields       prometheus.Counter
	observations      *prometheus.CounterVec
	windowsFlushed    *prometheus.CounterVec
	parseFailures     *prometheus.CounterVec
	columns           prometheus.Gauge
	runDuration       prometheus.Gauge
	lastSuccessSecond prometheus.Gauge
}

// NewMetrics registers the run metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		recordsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "agg_records_read_total",
			Help: "Total number of data rows parsed from the input.",
		}),
		blankFields: factory.NewCounter(prometheus.CounterOpts{
			Name: "agg_blank_fields_skipped_total",
			Help: "Total number of blank value fields skipped.",
		}),
		observations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agg_observations_total",
				Help: "Total number of numeric observations folded into windows, per column.",
			},
			[]string{"column"},
		),
		windowsFlushed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agg_windows_flushed_total",
				Help: "Total number of period windows emitted, by whether they held observations.",
			},
			[]string{"state"}, // populated | empty
		),
		parseFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agg_parse_failures_total",
				Help: "Total number of fatal parse failures, by kind.",
			},
			[]string{"kind"}, // timestamp | field
		),
		columns: factory.NewGauge(prometheus.GaugeOpts{
			Name: "agg_columns",
			Help: "Number of value columns in the last run.",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "agg_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		lastSuccessSecond: factory.NewGauge(prometheus.GaugeOpts{
			Name: "agg_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}),
	}
}

func (m *Metrics) observeRecords(n int) {
	m.recordsRead.Add(float64(n))
}

func (m *Metrics) observeBlankField() {
	m.blankFields.Inc()
}

func (m *Metrics) observeValue(column int) {
	m.observations.WithLabelValues(strconv.Itoa(column + 1)).Inc()
}

func (m *Metrics) observeFlush(observations int) {
	if observations == 0 {
		m.windowsFlushed.WithLabelValues(windowEmpty).Inc()
		return
	}
	m.windowsFlushed.WithLabelValues(windowPopulated).Inc()
}

func (m *Metrics) observeColumns(n int) {
	m.columns.Set(float64(n))
}

func (m *Metrics) observeFailure(kind string) {
	m.parseFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) observeRun(started time.Time, err error) {
	m.runDuration.Set(time.Since(started).Seconds())
	if err == nil {
		m.lastSuccessSecond.SetToCurrentTime()
	}
}

// WriteTextfile writes the registry in the text exposition format, for
// node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrMetricsExportFailed, err)
	}
	return nil
}

// Push sends the registry to a Pushgateway under the given job name.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrMetricsExportFailed, err)
	}
	return nil
}

package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// registry holds only the filter's own metrics so the textfile export does not
// carry Go runtime or process collectors.
var registry = prometheus.NewRegistry()

var (
	rowsReadCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_filter",
		Subsystem: "pipeline",
		Name:      "rows_read_total",
		Help:      "Number of data rows loaded from the input dataset.",
	})
	rowsRetainedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_filter",
		Subsystem: "pipeline",
		Name:      "rows_retained_total",
		Help:      "Number of rows that matched the running predicate and were saved.",
	})
	rowsPublishedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_filter",
		Subsystem: "publish",
		Name:      "records_published_total",
		Help:      "Number of retained records published to Kafka.",
	})
	runsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_filter",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Number of pipeline runs grouped by outcome.",
	}, []string{"outcome"})
	runDurationGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activity_filter",
		Subsystem: "pipeline",
		Name:      "last_run_duration_seconds",
		Help:      "Wall-clock duration of the most recent run.",
	})
	samplesByRiskCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_filter",
		Subsystem: "risk",
		Name:      "samples_total",
		Help:      "Number of retained running samples grouped by assessed risk level.",
	}, []string{"level"})
	averageRiskGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activity_filter",
		Subsystem: "risk",
		Name:      "average_level",
		Help:      "Rounded average risk level over the most recent samples of the last run.",
	})
	lastSuccessGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activity_filter",
		Subsystem: "pipeline",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful run.",
	})
)

func init() {
	registry.MustRegister(rowsReadCounter, rowsRetainedCounter, rowsPublishedCounter, runsCounter, runDurationGauge, samplesByRiskCounter, averageRiskGauge, lastSuccessGauge)
}

// RunStats summarises one pipeline execution.
type RunStats struct {
	RowsRead      int
	RowsRetained  int
	RowsPublished int
	Duration      time.Duration
	FinishedAt    time.Time
	// RiskCounts maps risk level to sample count. A zero AverageRisk leaves
	// the gauge unchanged.
	RiskCounts  map[int]int
	AverageRisk int
	// Outcome is "success" or the failure kind.
	Outcome string
}

// RecordRun updates the pipeline metrics for a finished run.
func RecordRun(stats RunStats) {
	rowsReadCounter.Add(float64(stats.RowsRead))
	rowsRetainedCounter.Add(float64(stats.RowsRetained))
	rowsPublishedCounter.Add(float64(stats.RowsPublished))
	runsCounter.WithLabelValues(stats.Outcome).Inc()
	runDurationGauge.Set(stats.Duration.Seconds())
	for level, n := range stats.RiskCounts {
		samplesByRiskCounter.WithLabelValues(strconv.Itoa(level)).Add(float64(n))
	}
	if stats.AverageRisk > 0 {
		averageRiskGauge.Set(float64(stats.AverageRisk))
	}
	if stats.Outcome == OutcomeSuccess && !stats.FinishedAt.IsZero() {
		lastSuccessGauge.Set(float64(stats.FinishedAt.Unix()))
	}
}

// OutcomeSuccess labels runs that completed every stage.
const OutcomeSuccess = "success"

// WriteTextfile writes the current metric values in the text exposition format,
// suitable for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, registry)
}

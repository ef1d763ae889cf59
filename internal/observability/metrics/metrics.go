package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	telemetry "analyzer-training/internal/telemetry/domain"
)

const (
	metricPrefix = "analyzer_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	ingestRequests *prometheus.CounterVec
	ingestLatency  *prometheus.HistogramVec
	recordsTotal   *prometheus.CounterVec

	parseDropsTotal *prometheus.CounterVec

	buildTotal   *prometheus.CounterVec
	buildLatency *prometheus.HistogramVec
	rowsTotal    *prometheus.CounterVec
	issuesTotal  *prometheus.CounterVec

	anomaliesTotal prometheus.Counter

	artifactTotal *prometheus.CounterVec
)

// Init registers pipeline metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		ingestRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_requests_total",
				Help: "Total ingest requests by result",
			},
			[]string{"result"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Ingest latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		recordsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "records_ingested_total",
				Help: "Total parsed records by start register",
			},
			[]string{"register"},
		)

		parseDropsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "parse_drops_total",
				Help: "Total records dropped during conversion by field",
			},
			[]string{"field"},
		)

		buildTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "dataset_build_total",
				Help: "Total dataset builds by kind and result",
			},
			[]string{"kind", "result"},
		)
		buildLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "dataset_build_latency_seconds",
				Help:    "Dataset build latency in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
			},
			[]string{"kind", "result"},
		)
		rowsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "dataset_rows_total",
				Help: "Total dataset rows emitted by kind",
			},
			[]string{"kind"},
		)
		issuesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "issue_flags_total",
				Help: "Total threshold issue flags by metric",
			},
			[]string{"metric"},
		)

		anomaliesTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "synthetic_anomalies_total",
				Help: "Total synthetic rows generated as anomalous",
			},
		)

		artifactTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "artifact_writes_total",
				Help: "Total artifact writes by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			ingestRequests,
			ingestLatency,
			recordsTotal,
			parseDropsTotal,
			buildTotal,
			buildLatency,
			rowsTotal,
			issuesTotal,
			anomaliesTotal,
			artifactTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveIngest records ingest request duration and result.
func ObserveIngest(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if ingestRequests != nil {
		ingestRequests.WithLabelValues(result).Inc()
	}
	if ingestLatency != nil {
		ingestLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncRecord counts one parsed record. A missing register is reported as "missing" and any
// register outside the supported set as "other".
func IncRecord(register string) {
	register = registerLabel(register)
	if recordsTotal != nil {
		recordsTotal.WithLabelValues(register).Inc()
	}
}

func registerLabel(register string) string {
	if register == "" {
		return "missing"
	}
	id, ok := telemetry.ParseRegisterID(register)
	if !ok {
		return "other"
	}
	return id.String()
}

// IncParseDrop counts a record dropped during conversion.
func IncParseDrop(field string) {
	if field == "" {
		field = "unknown"
	}
	if parseDropsTotal != nil {
		parseDropsTotal.WithLabelValues(field).Inc()
	}
}

// ObserveBuild records dataset build latency and result.
func ObserveBuild(kind, result string, duration time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if buildTotal != nil {
		buildTotal.WithLabelValues(kind, result).Inc()
	}
	if buildLatency != nil {
		buildLatency.WithLabelValues(kind, result).Observe(duration.Seconds())
	}
}

// AddRows counts emitted dataset rows.
func AddRows(kind string, count int) {
	if count <= 0 {
		return
	}
	if rowsTotal != nil {
		rowsTotal.WithLabelValues(kind).Add(float64(count))
	}
}

// AddIssues counts threshold issue flags for a metric.
func AddIssues(metric string, count int) {
	if count <= 0 {
		return
	}
	if issuesTotal != nil {
		issuesTotal.WithLabelValues(metric).Add(float64(count))
	}
}

// AddAnomalies counts generated anomalous rows.
func AddAnomalies(count int) {
	if count <= 0 {
		return
	}
	if anomaliesTotal != nil {
		anomaliesTotal.Add(float64(count))
	}
}

// IncArtifact counts an artifact write.
func IncArtifact(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if artifactTotal != nil {
		artifactTotal.WithLabelValues(format, result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)

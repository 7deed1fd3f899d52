package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "procurement_"

	// ResultSuccess labels a successful operation.
	ResultSuccess = "success"
	// ResultError labels a failed operation.
	ResultError = "error"
)

var (
	registerOnce sync.Once

	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec

	awardTransitions *prometheus.CounterVec
	contractMerges   *prometheus.CounterVec
	contractSignings *prometheus.CounterVec
	saveConflicts    prometheus.Counter

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		requestTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "requests_total",
				Help: "Total tender mutation requests by operation and result",
			},
			[]string{"operation", "result"},
		)
		requestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "request_latency_seconds",
				Help:    "Tender mutation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "result"},
		)

		awardTransitions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "award_transitions_total",
				Help: "Total award status transitions by target status",
			},
			[]string{"status"},
		)
		contractMerges = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "contract_merges_total",
				Help: "Total contract merge-list updates by result",
			},
			[]string{"result"},
		)
		contractSignings = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "contract_signings_total",
				Help: "Total contract signing attempts by result",
			},
			[]string{"result"},
		)
		saveConflicts = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "save_conflicts_total",
				Help: "Total optimistic-concurrency save conflicts",
			},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "contract_export_total",
				Help: "Total contract export operations by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "contract_export_latency_seconds",
				Help:    "Contract export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			requestTotal,
			requestLatency,
			awardTransitions,
			contractMerges,
			contractSignings,
			saveConflicts,
			exportTotal,
			exportLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveRequest records a mutation request duration and result.
func ObserveRequest(operation, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if requestTotal != nil {
		requestTotal.WithLabelValues(operation, result).Inc()
	}
	if requestLatency != nil {
		requestLatency.WithLabelValues(operation, result).Observe(duration.Seconds())
	}
}

// IncAwardTransition counts an accepted award status transition.
func IncAwardTransition(status string) {
	if awardTransitions != nil {
		awardTransitions.WithLabelValues(status).Inc()
	}
}

// IncContractMerge counts a merge-list update.
func IncContractMerge(result string) {
	if contractMerges != nil {
		contractMerges.WithLabelValues(result).Inc()
	}
}

// IncContractSigning counts a signing attempt.
func IncContractSigning(result string) {
	if contractSignings != nil {
		contractSignings.WithLabelValues(result).Inc()
	}
}

// IncSaveConflict counts a rejected stale-revision save.
func IncSaveConflict() {
	if saveConflicts != nil {
		saveConflicts.Inc()
	}
}

// ObserveExport records a contract export duration and result.
func ObserveExport(format, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

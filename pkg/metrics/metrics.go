// Package metrics provides Prometheus metrics for the price tracker.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ExtractionsTotal is a counter of extraction pipeline runs by winning stage.
	ExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_extractions_total",
			Help: "Total number of price extraction runs by stage and outcome",
		},
		[]string{"stage", "status"},
	)

	// ExtractionDuration is a histogram of full pipeline run durations.
	ExtractionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "price_extraction_duration_seconds",
			Help:    "Duration of price extraction pipeline runs",
			Buckets: prometheus.DefBuckets,
		},
	)

	// CandidatesScanned is a counter of heuristic candidates considered.
	CandidatesScanned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "price_candidates_scanned_total",
			Help: "Total number of heuristic price candidates scanned",
		},
	)

	// CandidatesDisqualified is a counter of candidates dropped by exclusion phrases.
	CandidatesDisqualified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_candidates_disqualified_total",
			Help: "Total number of price candidates disqualified by context",
		},
		[]string{"reason"},
	)

	// ObservationsRecorded is a counter of recorded price observations.
	ObservationsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "price_observations_recorded_total",
			Help: "Total number of price observations appended to history",
		},
	)

	// ObservationsSuppressed is a counter of duplicate observations suppressed.
	ObservationsSuppressed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "price_observations_suppressed_total",
			Help: "Total number of duplicate price observations suppressed",
		},
	)

	// LowestPriceUpdates is a counter of new lowest-price records.
	LowestPriceUpdates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lowest_price_updates_total",
			Help: "Total number of times a new lowest price was recorded",
		},
	)

	// StoreErrorsTotal is a counter of persistence failures.
	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Total number of key-value store failures",
		},
		[]string{"op"},
	)

	// HTTPRequestsTotal is a counter of total HTTP requests.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status"},
	)

	// HTTPRequestDuration is a histogram of HTTP request latencies.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"endpoint"},
	)
)

// Init initializes Prometheus metrics registry.
func Init() {
	// Register all metrics
	prometheus.MustRegister(
		ExtractionsTotal,
		ExtractionDuration,
		CandidatesScanned,
		CandidatesDisqualified,
		ObservationsRecorded,
		ObservationsSuppressed,
		LowestPriceUpdates,
		StoreErrorsTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// ServeHTTP serves Prometheus metrics on the specified address.
func ServeHTTP(addr string) error {
	http.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      http.DefaultServeMux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// RecordExtraction records a completed extraction pipeline run.
func RecordExtraction(stage, status string, duration time.Duration) {
	ExtractionsTotal.WithLabelValues(stage, status).Inc()
	ExtractionDuration.Observe(duration.Seconds())
}

// RecordCandidateScanned records a heuristic candidate being considered.
func RecordCandidateScanned() {
	CandidatesScanned.Inc()
}

// RecordDisqualification records a candidate dropped by an exclusion phrase.
func RecordDisqualification(reason string) {
	CandidatesDisqualified.WithLabelValues(reason).Inc()
}

// RecordObservation records a price observation appended to history.
func RecordObservation(newLowest bool) {
	ObservationsRecorded.Inc()
	if newLowest {
		LowestPriceUpdates.Inc()
	}
}

// RecordSuppressedObservation records a duplicate observation no-op.
func RecordSuppressedObservation() {
	ObservationsSuppressed.Inc()
}

// RecordStoreError records a key-value store failure.
func RecordStoreError(op string) {
	StoreErrorsTotal.WithLabelValues(op).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	snapshotsSaved *prometheus.CounterVec
	symbolsSkipped *prometheus.CounterVec
	providerErrors *prometheus.CounterVec
	zeroFilled     prometheus.Counter
	errorsTotal    *prometheus.CounterVec
	lastScore      *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a recorder registered on reg; nil uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		snapshotsSaved: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tazeai_snapshots_saved_total",
				Help: "Feature-table snapshots written per symbol",
			},
			[]string{"symbol"},
		),
		symbolsSkipped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tazeai_symbols_skipped_total",
				Help: "Symbols skipped during ingestion or backtest",
			},
			[]string{"reason"},
		),
		providerErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tazeai_provider_errors_total",
				Help: "Failed provider endpoint requests",
			},
			[]string{"endpoint"},
		),
		zeroFilled: f.NewCounter(
			prometheus.CounterOpts{
				Name: "tazeai_zero_filled_features_total",
				Help: "Model features zero-filled because the row lacked them",
			},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tazeai_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastScore: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tazeai_last_score",
				Help: "Last computed score for a symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tazeai_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSnapshotSaved counts a silver snapshot written for symbol.
func (r *Recorder) RecordSnapshotSaved(symbol string) {
	r.snapshotsSaved.WithLabelValues(symbol).Inc()
}

func (r *Recorder) RecordSymbolSkipped(reason string) {
	r.symbolsSkipped.WithLabelValues(reason).Inc()
}

func (r *Recorder) RecordProviderError(endpoint string) {
	r.providerErrors.WithLabelValues(endpoint).Inc()
}

func (r *Recorder) RecordZeroFilled(count int) {
	if count > 0 {
		r.zeroFilled.Add(float64(count))
	}
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordScore records the last score for a symbol.
func (r *Recorder) RecordScore(symbol string, score float64) {
	r.lastScore.WithLabelValues(symbol).Set(score)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordSnapshotSaved(string)    {}
func (Nop) RecordSymbolSkipped(string)    {}
func (Nop) RecordProviderError(string)    {}
func (Nop) RecordZeroFilled(int)          {}
func (Nop) RecordError(string)            {}
func (Nop) RecordScore(string, float64)   {}
func (Nop) RecordLatency(string, float64) {}

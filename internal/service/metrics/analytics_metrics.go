package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	AnalyzerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tazeai",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of signal and backtest endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	AnalyzerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tazeai",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by endpoint",
		},
		[]string{"endpoint"},
	)

	CacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tazeai",
			Subsystem: "api",
			Name:      "cache_total",
			Help:      "Signal cache lookups by result",
		},
		[]string{"result"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(AnalyzerLatency, AnalyzerErrors, CacheResults)
	})
}

// Observe records the latency of endpoint since start and counts err.
func Observe(endpoint string, start time.Time, err error) {
	AnalyzerLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		AnalyzerErrors.WithLabelValues(endpoint).Inc()
	}
}

// CacheLookup counts a cache hit or miss.
func CacheLookup(hit bool) {
	if hit {
		CacheResults.WithLabelValues("hit").Inc()
		return
	}
	CacheResults.WithLabelValues("miss").Inc()
}

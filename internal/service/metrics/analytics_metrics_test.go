package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestObserveCountsErrors(t *testing.T) {
	Register()
	Register()

	before := counterValue(t, AnalyzerErrors.WithLabelValues("signals"))
	Observe("signals", time.Now(), nil)
	Observe("signals", time.Now(), errors.New("x"))
	assert.Equal(t, before+1, counterValue(t, AnalyzerErrors.WithLabelValues("signals")))

	hits := counterValue(t, CacheResults.WithLabelValues("hit"))
	CacheLookup(true)
	CacheLookup(false)
	assert.Equal(t, hits+1, counterValue(t, CacheResults.WithLabelValues("hit")))
}

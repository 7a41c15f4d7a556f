package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gathered(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	out := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				out[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[mf.GetName()] += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[mf.GetName()] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordSnapshotSaved("PETR4")
	r.RecordSnapshotSaved("VALE3")
	r.RecordSymbolSkipped("data_unavailable")
	r.RecordProviderError("histories")
	r.RecordZeroFilled(3)
	r.RecordZeroFilled(0)
	r.RecordScore("PETR4", 7.5)
	r.RecordLatency("ingest", 0.2)
	r.RecordError("predict")

	got := gathered(t, reg)
	assert.Equal(t, 2.0, got["tazeai_snapshots_saved_total"])
	assert.Equal(t, 1.0, got["tazeai_symbols_skipped_total"])
	assert.Equal(t, 1.0, got["tazeai_provider_errors_total"])
	assert.Equal(t, 3.0, got["tazeai_zero_filled_features_total"])
	assert.Equal(t, 7.5, got["tazeai_last_score"])
	assert.Equal(t, 1.0, got["tazeai_operation_duration_seconds"])
	assert.Equal(t, 1.0, got["tazeai_errors_total"])
}

package tradebox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func (m *countingMetrics) RecordSnapshotSaved(string)    {}
func (m *countingMetrics) RecordSymbolSkipped(string)    {}
func (m *countingMetrics) RecordZeroFilled(int)          {}
func (m *countingMetrics) RecordScore(string, float64)   {}
func (m *countingMetrics) RecordLatency(string, float64) {}
func (m *countingMetrics) RecordError(string)            {}
func (m *countingMetrics) RecordProviderError(endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[endpoint]++
}

func TestRangeParam(t *testing.T) {
	assert.Equal(t, "1mo", RangeParam(0))
	assert.Equal(t, "1mo", RangeParam(29))
	assert.Equal(t, "12mo", RangeParam(365))
	assert.Equal(t, "24mo", RangeParam(730))
}

func TestFetchBundleAllEndpoints(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "u", user)
		assert.Equal(t, "p", pass)
		mu.Lock()
		seen[r.URL.Path] = r.URL.RawQuery
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"ok":true}}`))
	}))
	defer srv.Close()

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := New(Config{BaseURL: srv.URL + "/", User: "u", Password: "p"}, nil).With(WithClock(func() time.Time { return fixed }))

	b, err := c.FetchBundle(context.Background(), "petr4", 365)
	require.NoError(t, err)
	assert.Equal(t, "PETR4", b.Symbol)
	assert.Equal(t, fixed, b.FetchedAt)
	assert.True(t, b.Info.HasData())
	assert.True(t, b.Intraday.HasData())
	assert.True(t, b.Histories.HasData())
	assert.True(t, b.Fundamentals.HasData())

	require.Len(t, seen, 4)
	assert.Contains(t, seen, "/assetInformation/PETR4")
	assert.Contains(t, seen, "/assetIntraday/PETR4")
	assert.Contains(t, seen, "/assetFundamentals/PETR4")
	assert.Equal(t, "interval=1d&range=12mo", seen["/assetHistories/PETR4"])
}

func TestFetchBundleDegradesFailedEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/assetIntraday/VALE3":
			w.WriteHeader(http.StatusInternalServerError)
		case "/assetFundamentals/VALE3":
			_, _ = w.Write([]byte(`not json`))
		case "/assetInformation/VALE3":
			w.WriteHeader(http.StatusNotFound)
		default:
			_, _ = w.Write([]byte(`{"data":[]}`))
		}
	}))
	defer srv.Close()

	m := &countingMetrics{errors: map[string]int{}}
	c := New(Config{BaseURL: srv.URL}, nil).With(WithMetrics(m))

	b, err := c.FetchBundle(context.Background(), "VALE3", 30)
	require.NoError(t, err)
	assert.NotNil(t, b.Histories)
	assert.Nil(t, b.Info)
	assert.Nil(t, b.Intraday)
	assert.Nil(t, b.Fundamentals)
	assert.Equal(t, 1, m.errors[EndpointIntraday])
	assert.Equal(t, 1, m.errors[EndpointFundamentals])
	// 404 is missing data, not a provider failure.
	assert.Zero(t, m.errors[EndpointInfo])
}

func TestFetchBundleUnreachableProvider(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, nil)
	b, err := c.FetchBundle(context.Background(), "ITUB4", 30)
	require.NoError(t, err)
	assert.Nil(t, b.Info)
	assert.Nil(t, b.Intraday)
	assert.Nil(t, b.Histories)
	assert.Nil(t, b.Fundamentals)
}

func TestFetchBundleRejectsEmptySymbol(t *testing.T) {
	c := New(Config{BaseURL: "http://example.invalid"}, nil)
	_, err := c.FetchBundle(context.Background(), "  ", 30)
	require.Error(t, err)
}

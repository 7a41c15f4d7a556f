package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEntries(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var out []map[string]interface{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func TestLoggerWritesStructuredJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path, Service: "tazeai"})
	require.NoError(t, err)

	l.Debug("hidden")
	l.With(String("symbol", "PETR4")).Info("scored",
		Float64("score", 7.5),
		Int("zero_filled", 2),
		Bool("degraded", false),
		Strings("missing", []string{"pl", "roe"}),
		Duration("latency_ms", 1500*time.Millisecond),
	)
	l.Error("publish failed", Error(errors.New("broker down")))

	entries := readEntries(t, path)
	require.Len(t, entries, 2)
	first := entries[0]
	assert.Equal(t, "info", first["level"])
	assert.Equal(t, "tazeai", first["service"])
	assert.Equal(t, "PETR4", first["symbol"])
	assert.Equal(t, 7.5, first["score"])
	assert.Equal(t, 1500.0, first["latency_ms"])
	assert.Equal(t, []interface{}{"pl", "roe"}, first["missing"])
	assert.Contains(t, first["caller"], "logger_test.go")
	assert.Equal(t, "broker down", entries[1]["error"])
}

func TestLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestErrorsReachCollector(t *testing.T) {
	pub := &memPublisher{}
	l := NewNop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, Topic: "tazeai.logs", Publisher: pub})

	l.Warn("slow request")
	l.Error("ingest failed", String("symbol", "VALE3"), Error(nil))
	l.RemoveCollector()

	require.Len(t, pub.batches, 1)
	require.Len(t, pub.batches[0], 1)
	entry := pub.batches[0][0]
	assert.Equal(t, "ingest failed", entry.Message)
	assert.Equal(t, "VALE3", entry.Fields["symbol"])
	assert.Contains(t, entry.Caller, "logger/logger_test.go")
}

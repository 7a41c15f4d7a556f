package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (p *memPublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func TestCollectorAggregatesRepeats(t *testing.T) {
	pub := &memPublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, Topic: "tazeai.logs", Publisher: pub})

	c.AddLog("error", "symbol failed", map[string]interface{}{"symbol": "PETR4"}, "ingest.go:10")
	c.AddLog("error", "symbol failed", map[string]interface{}{"symbol": "VALE3"}, "ingest.go:10")
	c.AddLog("error", "publish failed", nil, "analyzer.go:20")
	c.Close()

	require.Len(t, pub.batches, 1)
	batch := pub.batches[0]
	require.Len(t, batch, 2)
	assert.Equal(t, "tazeai.logs", pub.topic)
	assert.Equal(t, "symbol failed", batch[0].Message)
	assert.Equal(t, 2, batch[0].Count)
	assert.Equal(t, "VALE3", batch[0].Fields["symbol"])
}

func TestCollectorFlushesAtThreshold(t *testing.T) {
	pub := &memPublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Publisher: pub})
	defer c.Close()

	c.AddLog("error", "a", nil, "x.go:1")
	assert.Empty(t, pub.batches)
	c.AddLog("error", "b", nil, "x.go:2")
	require.Len(t, pub.batches, 1)
	assert.Len(t, pub.batches[0], 2)
}

func TestLoggerErrorFeedsCollector(t *testing.T) {
	pub := &memPublisher{}
	l := NewNop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, Publisher: pub})

	l.Error("store failed", Error(errors.New("disk full")), String("symbol", "PETR4"))
	l.Info("not collected")
	l.RemoveCollector()

	require.Len(t, pub.batches, 1)
	require.Len(t, pub.batches[0], 1)
	e := pub.batches[0][0]
	assert.Equal(t, "error", e.Level)
	assert.Equal(t, "PETR4", e.Fields["symbol"])
	assert.Contains(t, e.Caller, "collector_test.go")
}

package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer(ProducerConfig{})
	require.Error(t, err)

	p, err := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}, KeyedOrdering: true, Compression: "zstd"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestNewProducerRejectsUnknownCompression(t *testing.T) {
	_, err := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}, Compression: "brotli"})
	require.Error(t, err)
}

func TestProducerConfigDefaults(t *testing.T) {
	w, err := ProducerConfig{Brokers: []string{"localhost:9092"}, RequiredAcks: 1}.withDefaults().newWriter()
	require.NoError(t, err)
	assert.Equal(t, kafka.RequireOne, w.RequiredAcks)
	assert.Equal(t, kafka.Gzip, w.Compression)
	assert.Equal(t, 3, w.MaxAttempts)
	assert.IsType(t, &kafka.LeastBytes{}, w.Balancer)
}

func TestPublishBatchEncodesValues(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w, "gzip")

	err := p.PublishBatch(context.Background(), "signals", []Message{
		{Key: []byte("PETR4"), Value: map[string]float64{"score": 7.5}},
		{Key: []byte("VALE3"), Value: "raw"},
		{Key: nil, Value: []byte("bytes")},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 3)
	assert.Equal(t, "signals", w.msgs[0].Topic)
	assert.Equal(t, []byte("PETR4"), w.msgs[0].Key)
	assert.JSONEq(t, `{"score":7.5}`, string(w.msgs[0].Value))
	assert.Equal(t, "raw", string(w.msgs[1].Value))
	assert.Equal(t, "bytes", string(w.msgs[2].Value))
	assert.Equal(t, "application/json", string(w.msgs[0].Headers[0].Value))
	assert.Equal(t, "application/octet-stream", string(w.msgs[2].Headers[0].Value))

	require.NoError(t, p.PublishBatch(context.Background(), "signals", nil))
	assert.Len(t, w.msgs, 3)
}

func TestPublishMessageAndErrors(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w, "gzip")
	require.NoError(t, p.PublishMessage(context.Background(), "logs", []byte(`{"k":1}`)))
	require.Len(t, w.msgs, 1)
	assert.Nil(t, w.msgs[0].Key)

	w.err = errors.New("broker down")
	assert.Error(t, p.Publish(context.Background(), "logs", nil, "x"))

	err := p.Publish(context.Background(), "logs", nil, func() {})
	assert.Error(t, err)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

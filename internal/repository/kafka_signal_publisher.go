package repository

import (
	"context"

	"TazeAI/internal/domain/models"
	"TazeAI/internal/domain/repository"
	pkgkafka "TazeAI/pkg/kafka"
)

// KafkaSignalPublisher implements SignalPublisher for Kafka, one message per
// record keyed by symbol.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSignalPublisher creates a Kafka signal publisher.
func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) repository.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) PublishSignals(ctx context.Context, records []models.SignalRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(records))
	for i := range records {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(records[i].Symbol),
			Value: records[i],
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopSignalPublisher drops every record; used when Kafka is disabled.
type NopSignalPublisher struct{}

func (NopSignalPublisher) PublishSignals(context.Context, []models.SignalRecord) error {
	return nil
}

func (NopSignalPublisher) Close() error { return nil }

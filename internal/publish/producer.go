package publish

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	defaultWriteTimeout = 10 * time.Second
	// The whole run is written in one call, so there is nothing to wait for
	// before flushing a partial batch.
	defaultBatchTimeout = 10 * time.Millisecond
)

// KafkaProducer wraps a single synchronous kafka.Writer. The writer has no fixed
// topic; each batch is routed by setting Topic on its messages.
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer that waits for all in-sync replicas.
func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			Compression:            kafka.Snappy,
			WriteTimeout:           defaultWriteTimeout,
			BatchTimeout:           defaultBatchTimeout,
			AllowAutoTopicCreation: true,
		},
	}
}

// WriteMessages delivers msgs to topic and blocks until they are acknowledged.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	for i := range msgs {
		msgs[i].Topic = topic
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

// Close flushes and releases the underlying writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

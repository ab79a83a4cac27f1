//go:build integration

package publish

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaContainer "github.com/testcontainers/testcontainers-go/modules/kafka"

	"example.com/activityfilter/internal/events"
)

func TestKafkaProducerDeliversRunningSamples(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	kafkaC, err := kafkaContainer.RunContainer(ctx, testcontainers.WithEnv(map[string]string{
		"KAFKA_AUTO_CREATE_TOPICS_ENABLE": "true",
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kafkaC.Terminate(context.Background()) })

	brokers, err := kafkaC.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)

	topic := "running_samples"
	conn, err := kafka.Dial("tcp", brokers[0])
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))

	producer := NewKafkaProducer(brokers)
	defer producer.Close()

	pub := NewPublisher(producer, topic, WithSource("integration.csv"))
	n, err := pub.Publish(ctx, "run-int", runningDataset())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	defer reader.Close()

	var rows []string
	for len(rows) < 2 {
		msg, err := reader.ReadMessage(ctx)
		require.NoError(t, err)

		var evt events.RunningSampleFiltered
		require.NoError(t, json.Unmarshal(msg.Value, &evt))
		require.Equal(t, "run-int", evt.RunID)
		require.Equal(t, "Running", evt.ActivityType)
		rows = append(rows, evt.Fields["hr"])
	}
	require.Equal(t, []string{"120", "130"}, rows)
}

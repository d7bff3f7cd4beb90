// Package producer provides Kafka producer functionality for the
// run-completed topic.
package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"scheduler-service/internal/events"

	"github.com/segmentio/kafka-go"
)

const (
	// writeTimeout is the maximum time to wait for a Kafka write operation.
	writeTimeout = 10 * time.Second
)

// Producer wraps a Kafka writer and publishes run-completed events.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer with the specified brokers and topic.
// The producer is configured for at-least-once delivery semantics with synchronous writes.
func NewProducer(brokers string, topic string) (*Producer, error) {
	if brokers == "" {
		return nil, fmt.Errorf("brokers cannot be empty")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	// Parse comma-separated broker list
	brokerList := strings.Split(brokers, ",")
	for i := range brokerList {
		brokerList[i] = strings.TrimSpace(brokerList[i])
	}

	slog.Info("Initializing Kafka producer",
		"brokers", brokerList,
		"topic", topic,
	)

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerList...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // Key-based partitioning (hashes the message key)
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequireOne, // At-least-once semantics (waits for leader ack)
		Async:        false,            // Synchronous writes for reliability and error handling
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}, nil
}

// Publish serializes a run-completed event to JSON and publishes it to Kafka.
// The message is keyed by run_id for partition distribution.
func (p *Producer) Publish(ctx context.Context, completed *events.RunCompleted) error {
	payload, err := json.Marshal(completed)
	if err != nil {
		slog.Error("Failed to marshal run completed event to JSON",
			"run_id", completed.RunID,
			"scope", completed.Scope,
			"error", err,
		)
		return fmt.Errorf("failed to marshal run completed event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(completed.RunID),
		Value: payload,
		Headers: []kafka.Header{
			{
				Key:   "schema_version",
				Value: []byte(fmt.Sprintf("%d", completed.SchemaVersion)),
			},
			{
				Key:   "scope",
				Value: []byte(completed.Scope),
			},
		},
		Time: time.Unix(completed.CompletedAt, 0),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		slog.Error("Failed to write message to Kafka",
			"run_id", completed.RunID,
			"topic", p.topic,
			"error", err,
		)
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	slog.Info("Published run completed event",
		"run_id", completed.RunID,
		"scope", completed.Scope,
		"processed_count", completed.ProcessedCount,
	)

	return nil
}

// Close gracefully closes the Kafka writer and releases resources.
func (p *Producer) Close() error {
	slog.Info("Closing Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		slog.Error("Error closing Kafka producer", "error", err)
		return err
	}
	return nil
}

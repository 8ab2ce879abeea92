package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/nolalabs/analytics/internal/common/config"
	"github.com/nolalabs/analytics/internal/common/logger"
)

// Producer publishes JSON events to Kafka topics.
type Producer struct {
	writer *kafkago.Writer
	log    logger.Logger
}

func NewProducer(cfg config.KafkaConfig, log logger.Logger) *Producer {
	return &Producer{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Balancer:     &kafkago.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafkago.RequireOne,
		},
		log: log,
	}
}

// PublishEvent marshals event as JSON and writes it to topic keyed by key.
func (p *Producer) PublishEvent(ctx context.Context, topic, key string, event interface{}) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	p.log.Infof("Published event to %s (key=%s)", topic, key)
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Consumer reads messages from a single topic as part of a consumer group.
type Consumer struct {
	reader *kafkago.Reader
	log    logger.Logger
}

func NewConsumer(cfg config.KafkaConfig, topic string, log logger.Logger) *Consumer {
	return &Consumer{
		reader: kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:  cfg.Brokers,
			GroupID:  cfg.GroupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
			MaxWait:  time.Second,
		}),
		log: log,
	}
}

// Consume reads one message and passes it to handler. Offsets are committed only
// after the handler returns nil, so failed messages are redelivered.
func (c *Consumer) Consume(ctx context.Context, handler func(ctx context.Context, key, value []byte) error) error {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch message: %w", err)
	}

	if err := handler(ctx, msg.Key, msg.Value); err != nil {
		c.log.Errorf("Handler failed for message at offset %d: %v", msg.Offset, err)
		return err
	}

	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to commit offset: %w", err)
	}

	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

// UnmarshalEvent decodes a JSON event payload.
func UnmarshalEvent(value []byte, v interface{}) error {
	if err := json.Unmarshal(value, v); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return nil
}

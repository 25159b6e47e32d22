package events

import (
	"context"
	"encoding/json"
	"time"

	skafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Writer is the subset of the kafka writer the producer needs, so tests can
// inject a fake.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Publisher emits lifecycle events for downstream consumers (ministry
// analytics, notification fan-out). A nil *KafkaProducer is safe to call,
// so services never need to branch on whether a broker is configured.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// LifecycleEvent is the wire shape of one status transition.
type LifecycleEvent struct {
	Entity     string    `json:"entity"`
	EntityID   string    `json:"entity_id"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type KafkaProducer struct {
	writer Writer
	logger *zap.Logger
}

// NewKafkaProducer writes to the given broker/topic. Returns nil when the
// broker is empty, which disables publishing.
func NewKafkaProducer(broker, topic string, logger *zap.Logger) *KafkaProducer {
	if broker == "" {
		return nil
	}
	w := &skafka.Writer{
		Addr:     skafka.TCP(broker),
		Topic:    topic,
		Balancer: &skafka.LeastBytes{},
	}
	return &KafkaProducer{writer: w, logger: logger}
}

// NewKafkaProducerWithWriter allows injecting a test writer.
func NewKafkaProducerWithWriter(w Writer, logger *zap.Logger) *KafkaProducer {
	return &KafkaProducer{writer: w, logger: logger}
}

// Publish marshals the value to JSON and writes a message keyed by key.
func (p *KafkaProducer) Publish(ctx context.Context, key string, value interface{}) error {
	if p == nil {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		p.logger.Error("failed to marshal event", zap.Error(err))
		return err
	}
	msg := skafka.Message{Key: []byte(key), Value: b}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("kafka write error", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (p *KafkaProducer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}

package events

import (
	"context"
	"testing"
	"time"

	skafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// fakeWriter records messages written.
type fakeWriter struct {
	msgs []skafka.Message
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...skafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublishLifecycleEvent(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaProducerWithWriter(fw, zap.NewNop())

	ev := LifecycleEvent{
		Entity:     "freight_request",
		EntityID:   "REQ-0001",
		FromStatus: "Pending",
		ToStatus:   "Accepted",
		Actor:      "Ramesh",
		OccurredAt: time.Now(),
	}
	if err := p.Publish(context.Background(), ev.EntityID, ev); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(fw.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fw.msgs))
	}
	if string(fw.msgs[0].Key) != "REQ-0001" {
		t.Errorf("expected key REQ-0001, got %s", fw.msgs[0].Key)
	}
}

func TestNilProducerIsSafe(t *testing.T) {
	var p *KafkaProducer
	if err := p.Publish(context.Background(), "k", "v"); err != nil {
		t.Fatalf("nil producer publish should be a no-op, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("nil producer close should be a no-op, got %v", err)
	}
}

func TestNewKafkaProducerEmptyBroker(t *testing.T) {
	if p := NewKafkaProducer("", "topic", zap.NewNop()); p != nil {
		t.Fatal("expected nil producer for empty broker")
	}
}

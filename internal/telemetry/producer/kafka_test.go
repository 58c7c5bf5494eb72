package producer

import (
	"context"
	"testing"

	"sessiond/internal/telemetry"
)

func TestNewKafkaProducer_DisabledWithoutConfig(t *testing.T) {
	if p := NewKafkaProducer(nil, "events"); p != nil {
		t.Error("no brokers should disable the producer")
	}
	if p := NewKafkaProducer([]string{"localhost:9092"}, ""); p != nil {
		t.Error("no topic should disable the producer")
	}
}

func TestKafkaProducer_NilSafe(t *testing.T) {
	var p *KafkaProducer
	if err := p.Emit(context.Background(), &telemetry.SessionEvent{SessionID: "s1"}); err != nil {
		t.Errorf("Emit on nil producer: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close on nil producer: %v", err)
	}
}

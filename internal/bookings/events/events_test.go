package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hostbook/pkg/kafka"
	"hostbook/pkg/middleware"
	"hostbook/pkg/model"
)

type mockProducer struct {
	publishFunc func(ctx context.Context, msg kafka.Message) error
	closed      bool
}

func (m *mockProducer) Publish(ctx context.Context, msg kafka.Message) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, msg)
	}
	return nil
}

func (m *mockProducer) Close() error {
	m.closed = true
	return nil
}

func sampleReservation() model.Reservation {
	return model.Reservation{
		ID:        12,
		HostID:    "h-1",
		GuestID:   "g-7",
		StartDate: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		Total:     decimal.NewFromInt(500),
	}
}

func TestNewReservationEvent(t *testing.T) {
	at := time.Date(2025, 5, 1, 9, 30, 0, 0, time.FixedZone("X", 3600))
	event := NewReservationEvent(TypeCreated, sampleReservation(), at)

	if event.StartDate != "2025-06-05" || event.EndDate != "2025-06-09" {
		t.Errorf("unexpected dates %s..%s", event.StartDate, event.EndDate)
	}
	if event.Total != "500.00" {
		t.Errorf("Total = %q, want 500.00", event.Total)
	}
	if event.OccurredAt.Location() != time.UTC {
		t.Errorf("OccurredAt should be UTC, got %s", event.OccurredAt.Location())
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	var got kafka.Message
	producer := &mockProducer{
		publishFunc: func(ctx context.Context, msg kafka.Message) error {
			got = msg
			return nil
		},
	}
	pub := NewKafkaPublisher(producer)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	event := NewReservationEvent(TypeCancelled, sampleReservation(), time.Now())
	if err := pub.Publish(ctx, event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if got.Key != "h-1" {
		t.Errorf("Key = %q, want host id", got.Key)
	}
	if got.GetEventType() != TypeCancelled {
		t.Errorf("event type = %q", got.GetEventType())
	}
	if got.GetCorrelationID() != "req-42" {
		t.Errorf("correlation id = %q", got.GetCorrelationID())
	}
	if got.Headers[kafka.HeaderSource] != Source || got.Headers[kafka.HeaderSchemaVersion] != SchemaVersion {
		t.Errorf("unexpected headers %v", got.Headers)
	}

	decoded, err := Decode(got)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded.ReservationID != 12 || decoded.GuestID != "g-7" || decoded.Type != TypeCancelled {
		t.Errorf("unexpected decoded event %+v", decoded)
	}

	if err := pub.Close(); err != nil || !producer.closed {
		t.Errorf("Close() should close the producer, err = %v", err)
	}
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	brokerDown := errors.New("broker down")
	pub := NewKafkaPublisher(&mockProducer{
		publishFunc: func(context.Context, kafka.Message) error { return brokerDown },
	})

	err := pub.Publish(context.Background(), NewReservationEvent(TypeCreated, sampleReservation(), time.Now()))
	if !errors.Is(err, brokerDown) {
		t.Errorf("expected wrapped broker error, got %v", err)
	}
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode(kafka.Message{Value: []byte("not json")})
	if !errors.Is(err, kafka.ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestNopPublisher(t *testing.T) {
	pub := NewNopPublisher()
	if err := pub.Publish(context.Background(), ReservationEvent{}); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

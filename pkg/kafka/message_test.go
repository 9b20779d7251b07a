package kafka

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

func TestMessageBuilder_Build(t *testing.T) {
	ts := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	msg, err := NewMessage().
		WithKey("host-1").
		WithValue(map[string]int{"id": 7}).
		WithEventType("reservation.created").
		WithCorrelationID("req-1").
		WithSchemaVersion("1").
		WithSource("bookings").
		WithTimestamp(ts).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if msg.Key != "host-1" {
		t.Errorf("Key = %q", msg.Key)
	}
	if string(msg.Value) != `{"id":7}` {
		t.Errorf("Value = %s", msg.Value)
	}
	if msg.GetEventType() != "reservation.created" {
		t.Errorf("event type = %q", msg.GetEventType())
	}
	if msg.GetCorrelationID() != "req-1" {
		t.Errorf("correlation id = %q", msg.GetCorrelationID())
	}
	if _, err := uuid.Parse(msg.GetEventID()); err != nil {
		t.Errorf("event id %q is not a uuid: %v", msg.GetEventID(), err)
	}
	if msg.Headers[HeaderTimestamp] != "2025-05-01T12:00:00Z" {
		t.Errorf("timestamp header = %q", msg.Headers[HeaderTimestamp])
	}

	var decoded struct {
		ID int `json:"id"`
	}
	if err := msg.DecodeValue(&decoded); err != nil || decoded.ID != 7 {
		t.Errorf("DecodeValue() = %+v, %v", decoded, err)
	}
}

func TestMessageBuilder_KeepsExplicitEventID(t *testing.T) {
	msg, err := NewMessage().WithKey("k").WithValue("v").WithHeader(HeaderEventID, "fixed").Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if msg.GetEventID() != "fixed" {
		t.Errorf("event id = %q, want fixed", msg.GetEventID())
	}
}

func TestMessageBuilder_EmptyCorrelationIDSkipped(t *testing.T) {
	msg, _ := NewMessage().WithCorrelationID("").Build()
	if _, ok := msg.Headers[HeaderCorrelationID]; ok {
		t.Error("empty correlation id should not set a header")
	}
}

func TestMessageBuilder_ValueEncodeError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(math.Inf(1)).Build()
	if err == nil {
		t.Fatal("expected encoding error for +Inf")
	}
}

func TestCompression(t *testing.T) {
	tests := []struct {
		name string
		want compress.Compression
	}{
		{"none", compress.None},
		{"gzip", compress.Gzip},
		{"lz4", compress.Lz4},
		{"zstd", compress.Zstd},
		{"snappy", compress.Snappy},
		{"", compress.Snappy},
	}
	for _, tt := range tests {
		if got := compression(tt.name); got != tt.want {
			t.Errorf("compression(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRequiredAcks(t *testing.T) {
	tests := []struct {
		acks int
		want kafka.RequiredAcks
	}{
		{0, kafka.RequireNone},
		{1, kafka.RequireOne},
		{-1, kafka.RequireAll},
	}
	for _, tt := range tests {
		if got := requiredAcks(tt.acks); got != tt.want {
			t.Errorf("requiredAcks(%d) = %v, want %v", tt.acks, got, tt.want)
		}
	}
}

func TestFromKafkaMessage(t *testing.T) {
	km := kafka.Message{
		Topic:   "t",
		Key:     []byte("host-1"),
		Value:   []byte(`{}`),
		Offset:  42,
		Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte("reservation.cancelled")}},
	}

	msg := fromKafkaMessage(km)
	if msg.Key != "host-1" || msg.Offset != 42 || msg.GetEventType() != "reservation.cancelled" {
		t.Errorf("unexpected message %+v", msg)
	}

	back := toKafkaMessage(msg)
	if string(back.Key) != "host-1" || len(back.Headers) != 1 {
		t.Errorf("unexpected kafka message %+v", back)
	}
}

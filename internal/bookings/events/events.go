package events

import (
	"context"
	"fmt"
	"time"

	"hostbook/pkg/kafka"
	"hostbook/pkg/middleware"
	"hostbook/pkg/model"
)

const (
	TypeCreated   = "reservation.created"
	TypeUpdated   = "reservation.updated"
	TypeCancelled = "reservation.cancelled"

	SchemaVersion = "1"
	Source        = "hostbook.bookings"
)

// ReservationEvent is the payload published after a committed change to a
// host calendar.
type ReservationEvent struct {
	Type          string    `json:"type"`
	ReservationID int       `json:"reservation_id"`
	HostID        string    `json:"host_id"`
	GuestID       string    `json:"guest_id"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	Total         string    `json:"total"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewReservationEvent(eventType string, r model.Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          eventType,
		ReservationID: r.ID,
		HostID:        r.HostID,
		GuestID:       r.GuestID,
		StartDate:     model.FormatDate(r.StartDate),
		EndDate:       model.FormatDate(r.EndDate),
		Total:         r.Total.StringFixed(2),
		OccurredAt:    at.UTC(),
	}
}

func (e ReservationEvent) String() string {
	return fmt.Sprintf("%s id=%d host=%s guest=%s %s..%s total=%s",
		e.Type, e.ReservationID, e.HostID, e.GuestID, e.StartDate, e.EndDate, e.Total)
}

type Publisher interface {
	Publish(ctx context.Context, event ReservationEvent) error
	Close() error
}

type nopPublisher struct{}

// NewNopPublisher returns a Publisher that drops every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, ReservationEvent) error { return nil }

func (nopPublisher) Close() error { return nil }

// MessageProducer is the part of *kafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	producer MessageProducer
}

// NewKafkaPublisher publishes events keyed by host id so a host's changes
// stay ordered on one partition.
func NewKafkaPublisher(producer MessageProducer) Publisher {
	return &kafkaPublisher{producer: producer}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event ReservationEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.HostID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		return fmt.Errorf("build %s message: %w", event.Type, err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for reservation %d: %w", event.Type, event.ReservationID, err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// Decode reads a ReservationEvent back out of a consumed message.
func Decode(msg kafka.Message) (ReservationEvent, error) {
	var event ReservationEvent
	if err := msg.DecodeValue(&event); err != nil {
		return ReservationEvent{}, fmt.Errorf("%w: %w", kafka.ErrInvalidMessage, err)
	}
	if event.Type == "" {
		event.Type = msg.GetEventType()
	}
	return event, nil
}

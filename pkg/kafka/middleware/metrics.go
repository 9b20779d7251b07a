package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"hostbook/pkg/kafka"
	"hostbook/pkg/logger"
)

// Metrics counts Kafka traffic for one process. The zero value is ready to use.
type Metrics struct {
	published       atomic.Int64
	publishedFailed atomic.Int64
	publishNanos    atomic.Int64

	consumed       atomic.Int64
	consumedFailed atomic.Int64
	consumeNanos   atomic.Int64
}

type MetricsSnapshot struct {
	Published          int64
	PublishedFailed    int64
	AvgPublishDuration time.Duration
	Consumed           int64
	ConsumedFailed     int64
	AvgConsumeDuration time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Published:       m.published.Load(),
		PublishedFailed: m.publishedFailed.Load(),
		Consumed:        m.consumed.Load(),
		ConsumedFailed:  m.consumedFailed.Load(),
	}
	if n := s.Published + s.PublishedFailed; n > 0 {
		s.AvgPublishDuration = time.Duration(m.publishNanos.Load() / n)
	}
	if n := s.Consumed + s.ConsumedFailed; n > 0 {
		s.AvgConsumeDuration = time.Duration(m.consumeNanos.Load() / n)
	}
	return s
}

// LogSummary writes the counters as one record, typically at shutdown.
func (m *Metrics) LogSummary(log *logger.Logger) {
	s := m.Snapshot()
	log.Info("Kafka metrics",
		"published", s.Published,
		"published_failed", s.PublishedFailed,
		"avg_publish_ms", s.AvgPublishDuration.Milliseconds(),
		"consumed", s.Consumed,
		"consumed_failed", s.ConsumedFailed,
		"avg_consume_ms", s.AvgConsumeDuration.Milliseconds(),
	)
}

func MetricsProducerMiddleware(m *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		m.publishNanos.Add(int64(time.Since(start)))
		if err != nil {
			m.publishedFailed.Add(1)
		} else {
			m.published.Add(1)
		}

		return err
	}
}

func MetricsConsumerMiddleware(m *Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()

		err := next(ctx, msg)

		m.consumeNanos.Add(int64(time.Since(start)))
		if err != nil {
			m.consumedFailed.Add(1)
		} else {
			m.consumed.Add(1)
		}

		return err
	}
}

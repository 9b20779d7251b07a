package kafka_config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Brokers) != 1 || cfg.Brokers[0] != DefaultKafkaBrokers {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
	if cfg.ConsumerGroupID != DefaultConsumerGroupID {
		t.Errorf("ConsumerGroupID = %q", cfg.ConsumerGroupID)
	}
	if cfg.ProducerCompression != DefaultProducerCompression {
		t.Errorf("ProducerCompression = %q", cfg.ProducerCompression)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "kafka-1:9092, kafka-2:9092")
	t.Setenv(EnvKafkaProducerCompression, "zstd")
	t.Setenv(EnvKafkaConsumerMaxWait, "2s")
	t.Setenv(EnvKafkaConsumerStartOffset, "-2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "kafka-2:9092" {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
	if cfg.ProducerCompression != "zstd" {
		t.Errorf("ProducerCompression = %q", cfg.ProducerCompression)
	}
	if cfg.ConsumerMaxWait != 2*time.Second {
		t.Errorf("ConsumerMaxWait = %s", cfg.ConsumerMaxWait)
	}
	if cfg.ConsumerStartOffset != -2 {
		t.Errorf("ConsumerStartOffset = %d", cfg.ConsumerStartOffset)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(EnvKafkaProducerCompression, "brotli")
	t.Setenv(EnvKafkaProducerRequireAcks, "2")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "1. ProducerCompression") || !strings.Contains(msg, "2. ProducerRequireAcks") {
		t.Errorf("expected numbered aggregated errors, got %q", msg)
	}
}

func TestValidate_EmptyBroker(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "kafka-1:9092,")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "Broker 1 cannot be empty") {
		t.Errorf("expected empty broker error, got %v", err)
	}
}

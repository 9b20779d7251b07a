package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		DataDir:           "./data",
		ReservationsDir:   "./data/reservations",
		HostsFile:         "./data/hosts.csv",
		GuestsFile:        "./data/guests.csv",
		MongoURI:          DefaultMongoURI,
		MongoDatabaseName: DefaultMongoDatabaseName,
		MongoConnTimeout:  DefaultMongoConnTimeout,
		Port:              DefaultPort,
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
		RequestTimeout:    DefaultRequestTimeout,
		IdempotencyTTL:    DefaultIdempotencyTTL,
		MaxRequestSize:    DefaultMaxRequestSize,
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		ShutdownTimeout:   DefaultShutdownTimeout,
		EventsTopic:       DefaultEventsTopic,
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv(EnvDataDir, "/srv/hostbook")
	t.Setenv(EnvReservationsDir, "")
	t.Setenv(EnvHostsFile, "")
	t.Setenv(EnvGuestsFile, "")

	cfg := FromEnv()

	if cfg.ReservationsDir != filepath.Join("/srv/hostbook", "reservations") {
		t.Errorf("ReservationsDir = %q", cfg.ReservationsDir)
	}
	if cfg.HostsFile != filepath.Join("/srv/hostbook", "hosts.csv") {
		t.Errorf("HostsFile = %q", cfg.HostsFile)
	}
	if cfg.GuestsFile != filepath.Join("/srv/hostbook", "guests.csv") {
		t.Errorf("GuestsFile = %q", cfg.GuestsFile)
	}
	if cfg.EventsEnabled {
		t.Error("events should be disabled by default")
	}
	if cfg.MongoTransactions {
		t.Error("mongo transactions should be disabled by default")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv(EnvReservationsDir, "/tmp/cal")
	t.Setenv(EnvRequestTimeout, "5s")
	t.Setenv(EnvMaxRequestSize, "2048")
	t.Setenv(EnvEventsEnabled, "true")
	t.Setenv(EnvReadTimeout, "not-a-duration")

	cfg := FromEnv()

	if cfg.ReservationsDir != "/tmp/cal" {
		t.Errorf("ReservationsDir = %q", cfg.ReservationsDir)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %s", cfg.RequestTimeout)
	}
	if cfg.MaxRequestSize != 2048 {
		t.Errorf("MaxRequestSize = %d", cfg.MaxRequestSize)
	}
	if !cfg.EventsEnabled {
		t.Error("EventsEnabled should be true")
	}
	if cfg.ReadTimeout != DefaultReadTimeout {
		t.Errorf("unparsable duration should fall back to default, got %s", cfg.ReadTimeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Port = "70000" }, wantErr: "Port"},
		{name: "empty reservations dir", mutate: func(c *Config) { c.ReservationsDir = " " }, wantErr: "ReservationsDir"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "LogFormat"},
		{name: "text log format", mutate: func(c *Config) { c.LogFormat = "TEXT" }},
		{name: "bad mongo uri", mutate: func(c *Config) { c.MongoURI = "postgres://localhost" }, wantErr: "MongoURI"},
		{name: "zero timeout", mutate: func(c *Config) { c.RequestTimeout = 0 }, wantErr: "RequestTimeout"},
		{
			name:    "events without topic",
			mutate:  func(c *Config) { c.EventsEnabled = true; c.EventsTopic = "" },
			wantErr: "EventsTopic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.ShutdownTimeout = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "1. ") || !strings.Contains(err.Error(), "2. ") {
		t.Errorf("expected numbered list of problems, got %q", err.Error())
	}
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://admin:s3cret@db:27017")
	if strings.Contains(got, "s3cret") {
		t.Errorf("password leaked: %s", got)
	}
	if got != "mongodb://***:***@db:27017" {
		t.Errorf("redactMongoURI() = %s", got)
	}
}

package config

import "time"

const (
	DefaultDataDir = "./data"

	DefaultReservationsSubdir = "reservations"
	DefaultHostsFileName      = "hosts.csv"
	DefaultGuestsFileName     = "guests.csv"

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "hostbook"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultMongoTransactions = false // standalone servers reject transactions

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultEventsEnabled = false
	DefaultEventsTopic   = "hostbook.reservations"
)

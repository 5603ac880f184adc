package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "clubsite"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRoomName               = "clubroom"
	DefaultRoomTimezone           = "America/New_York"
	DefaultMaxReservationDuration = 2 * time.Hour
	DefaultLockTTL                = 10 * time.Second
	DefaultLockRetryDelay         = 50 * time.Millisecond

	DefaultReservationTopic = "reservation-events"
	DefaultReservationDLQ   = "reservation-events-dlq"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

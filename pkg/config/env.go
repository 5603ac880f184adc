package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvIdentitySecret = "IDENTITY_SECRET"

	EnvRoomName               = "ROOM_NAME"
	EnvRoomTimezone           = "ROOM_TIMEZONE"
	EnvMaxReservationDuration = "MAX_RESERVATION_DURATION"
	EnvLockTTL                = "LOCK_TTL"
	EnvLockRetryDelay         = "LOCK_RETRY_DELAY"

	EnvKafkaEnabled     = "KAFKA_ENABLED"
	EnvReservationTopic = "RESERVATION_EVENTS_TOPIC"
	EnvReservationDLQ   = "RESERVATION_EVENTS_DLQ_TOPIC"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)

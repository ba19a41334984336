package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvStoreDriver      = "STORE_DRIVER"
	EnvPostgresHost     = "POSTGRES_HOST"
	EnvPostgresPort     = "POSTGRES_PORT"
	EnvPostgresUser     = "POSTGRES_USER"
	EnvPostgresPassword = "POSTGRES_PASSWORD"
	EnvPostgresDatabase = "POSTGRES_DATABASE"
	EnvPostgresSSLMode  = "POSTGRES_SSLMODE"
	EnvSQLitePath       = "SQLITE_PATH"
	EnvSeedSampleData   = "SEED_SAMPLE_DATA"

	EnvRedisURL       = "REDIS_URL"
	EnvLockBackend    = "LOCK_BACKEND"
	EnvLockTTLSeconds = "LOCK_TTL_SECONDS"

	EnvKafkaTopicBooking    = "KAFKA_TOPIC_BOOKING"
	EnvKafkaTopicBookingDLQ = "KAFKA_TOPIC_BOOKING_DLQ"
	EnvKafkaGroupID         = "KAFKA_GROUP_ID"
	EnvProcessingTimeout    = "PROCESSING_TIMEOUT"

	EnvSyncIntervalMs           = "SYNC_INTERVAL_MS"
	EnvSyncMaxConsecutiveErrors = "SYNC_MAX_CONSECUTIVE_ERRORS"
	EnvSyncErrorBackoff         = "SYNC_ERROR_BACKOFF"
	EnvSyncCycleTimeout         = "SYNC_CYCLE_TIMEOUT"

	EnvStartupMaxAttempts = "STARTUP_MAX_ATTEMPTS"
	EnvStartupBackoff     = "STARTUP_BACKOFF"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout     = "REQUEST_TIMEOUT"
	EnvMaxRequestSize     = "MAX_REQUEST_SIZE"
	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"
	EnvIdempotencyTTL     = "IDEMPOTENCY_TTL"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)

package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "ticketing"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultStoreDriver      = StoreDriverPostgres
	DefaultPostgresHost     = "localhost"
	DefaultPostgresPort     = "5432"
	DefaultPostgresUser     = "postgres"
	DefaultPostgresPassword = "postgres"
	DefaultPostgresDatabase = "ticketing"
	DefaultPostgresSSLMode  = "disable"
	DefaultSQLitePath       = "ticketing.db"
	DefaultSeedSampleData   = false

	DefaultRedisURL       = "redis://localhost:6379"
	DefaultLockBackend    = LockBackendRedis
	DefaultLockTTLSeconds = 10

	DefaultKafkaTopicBooking    = "booking-requests"
	DefaultKafkaTopicBookingDLQ = "booking-requests-dlq"
	DefaultKafkaGroupID         = "booking-workers"
	DefaultProcessingTimeout    = 30 * time.Second

	DefaultSyncIntervalMs           = 5000
	DefaultSyncMaxConsecutiveErrors = 3
	DefaultSyncErrorBackoff         = 30 * time.Second
	DefaultSyncCycleTimeout         = 60 * time.Second

	DefaultStartupMaxAttempts = 10
	DefaultStartupBackoff     = 2 * time.Second

	DefaultPort = "8080"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 64 * 1024 // 64KB
	DefaultIdempotencyTTL = 10 * time.Minute

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultCORSAllowedOrigins = "*"
	DefaultLogLevel           = "info"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"

	LockBackendRedis = "redis"
	LockBackendMongo = "mongo"
)

package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ticketing/pkg/logger"
	"ticketing/pkg/retry"
)

type Config struct {
	ServiceName string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	StoreDriver      string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDatabase string
	PostgresSSLMode  string
	SQLitePath       string
	SeedSampleData   bool

	RedisURL    string
	LockBackend string
	LockTTL     time.Duration

	KafkaTopicBooking    string
	KafkaTopicBookingDLQ string
	KafkaGroupID         string
	ProcessingTimeout    time.Duration

	SyncInterval             time.Duration
	SyncMaxConsecutiveErrors int
	SyncErrorBackoff         time.Duration
	SyncCycleTimeout         time.Duration

	StartupMaxAttempts int
	StartupBackoff     time.Duration

	Port string

	RequestTimeout     time.Duration
	MaxRequestSize     int
	CORSAllowedOrigins []string
	IdempotencyTTL     time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log *logger.Logger
}

// Load reads the environment, validates it and exits the process on invalid configuration.
func Load(serviceName string) *Config {
	cfg := FromEnv(serviceName)
	cfg.Log = logger.New(logger.Config{
		Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromEnv reads the environment without validating or building a logger.
func FromEnv(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		StoreDriver:      strings.ToLower(getEnvStr(EnvStoreDriver, DefaultStoreDriver)),
		PostgresHost:     getEnvStr(EnvPostgresHost, DefaultPostgresHost),
		PostgresPort:     getEnvStr(EnvPostgresPort, DefaultPostgresPort),
		PostgresUser:     getEnvStr(EnvPostgresUser, DefaultPostgresUser),
		PostgresPassword: getEnvStr(EnvPostgresPassword, DefaultPostgresPassword),
		PostgresDatabase: getEnvStr(EnvPostgresDatabase, DefaultPostgresDatabase),
		PostgresSSLMode:  getEnvStr(EnvPostgresSSLMode, DefaultPostgresSSLMode),
		SQLitePath:       getEnvStr(EnvSQLitePath, DefaultSQLitePath),
		SeedSampleData:   getEnvBool(EnvSeedSampleData, DefaultSeedSampleData),

		RedisURL:    getEnvStr(EnvRedisURL, DefaultRedisURL),
		LockBackend: strings.ToLower(getEnvStr(EnvLockBackend, DefaultLockBackend)),
		LockTTL:     time.Duration(getEnvNum(EnvLockTTLSeconds, DefaultLockTTLSeconds)) * time.Second,

		KafkaTopicBooking:    getEnvStr(EnvKafkaTopicBooking, DefaultKafkaTopicBooking),
		KafkaTopicBookingDLQ: getEnvStr(EnvKafkaTopicBookingDLQ, DefaultKafkaTopicBookingDLQ),
		KafkaGroupID:         getEnvStr(EnvKafkaGroupID, DefaultKafkaGroupID),
		ProcessingTimeout:    getEnvDuration(EnvProcessingTimeout, DefaultProcessingTimeout),

		SyncInterval:             time.Duration(getEnvNum(EnvSyncIntervalMs, DefaultSyncIntervalMs)) * time.Millisecond,
		SyncMaxConsecutiveErrors: getEnvNum(EnvSyncMaxConsecutiveErrors, DefaultSyncMaxConsecutiveErrors),
		SyncErrorBackoff:         getEnvDuration(EnvSyncErrorBackoff, DefaultSyncErrorBackoff),
		SyncCycleTimeout:         getEnvDuration(EnvSyncCycleTimeout, DefaultSyncCycleTimeout),

		StartupMaxAttempts: getEnvNum(EnvStartupMaxAttempts, DefaultStartupMaxAttempts),
		StartupBackoff:     getEnvDuration(EnvStartupBackoff, DefaultStartupBackoff),

		Port: getEnvStr(EnvPort, DefaultPort),

		RequestTimeout:     getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize:     getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),
		CORSAllowedOrigins: getEnvList(EnvCORSAllowedOrigins, DefaultCORSAllowedOrigins),
		IdempotencyTTL:     getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),
	}
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.PostgresHost == "" {
			errors = append(errors, "PostgresHost cannot be empty")
		}
		if port, err := strconv.Atoi(cfg.PostgresPort); err != nil || port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PostgresPort must be between 1 and 65535, got: %s", cfg.PostgresPort))
		}
		if cfg.PostgresUser == "" {
			errors = append(errors, "PostgresUser cannot be empty")
		}
		if cfg.PostgresDatabase == "" {
			errors = append(errors, "PostgresDatabase cannot be empty")
		}
	case StoreDriverSQLite:
		if cfg.SQLitePath == "" {
			errors = append(errors, "SQLitePath cannot be empty")
		}
	default:
		errors = append(errors, fmt.Sprintf("StoreDriver must be '%s' or '%s', got: %s", StoreDriverPostgres, StoreDriverSQLite, cfg.StoreDriver))
	}

	switch cfg.LockBackend {
	case LockBackendRedis:
		if !regexp.MustCompile(`^rediss?://`).MatchString(cfg.RedisURL) {
			errors = append(errors, fmt.Sprintf("RedisURL must start with 'redis://' or 'rediss://', got: %s", redactURI(cfg.RedisURL)))
		}
	case LockBackendMongo:
	default:
		errors = append(errors, fmt.Sprintf("LockBackend must be '%s' or '%s', got: %s", LockBackendRedis, LockBackendMongo, cfg.LockBackend))
	}
	if cfg.LockTTL <= 0 {
		errors = append(errors, fmt.Sprintf("LockTTL must be positive, got: %s", cfg.LockTTL))
	}

	if cfg.KafkaTopicBooking == "" {
		errors = append(errors, "KafkaTopicBooking cannot be empty")
	}
	if cfg.KafkaTopicBookingDLQ == cfg.KafkaTopicBooking {
		errors = append(errors, "KafkaTopicBookingDLQ must differ from KafkaTopicBooking")
	}
	if cfg.KafkaGroupID == "" {
		errors = append(errors, "KafkaGroupID cannot be empty")
	}
	if cfg.ProcessingTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ProcessingTimeout must be positive, got: %s", cfg.ProcessingTimeout))
	}

	if cfg.SyncInterval <= 0 {
		errors = append(errors, fmt.Sprintf("SyncInterval must be positive, got: %s", cfg.SyncInterval))
	}
	if cfg.SyncMaxConsecutiveErrors < 0 {
		errors = append(errors, fmt.Sprintf("SyncMaxConsecutiveErrors cannot be negative, got: %d", cfg.SyncMaxConsecutiveErrors))
	}
	if cfg.SyncErrorBackoff <= 0 {
		errors = append(errors, fmt.Sprintf("SyncErrorBackoff must be positive, got: %s", cfg.SyncErrorBackoff))
	}
	if cfg.SyncCycleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("SyncCycleTimeout must be positive, got: %s", cfg.SyncCycleTimeout))
	}

	if cfg.StartupMaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("StartupMaxAttempts must be positive, got: %d", cfg.StartupMaxAttempts))
	}
	if cfg.StartupBackoff <= 0 {
		errors = append(errors, fmt.Sprintf("StartupBackoff must be positive, got: %s", cfg.StartupBackoff))
	}

	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.IdempotencyTTL < 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL cannot be negative, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"store_driver", cfg.StoreDriver,
		"postgres_host", cfg.PostgresHost,
		"postgres_port", cfg.PostgresPort,
		"postgres_database", cfg.PostgresDatabase,
		"postgres_password_set", cfg.PostgresPassword != "",
		"sqlite_path", cfg.SQLitePath,
		"seed_sample_data", cfg.SeedSampleData,
		"redis_url", redactURI(cfg.RedisURL),
		"lock_backend", cfg.LockBackend,
		"lock_ttl", cfg.LockTTL,
		"kafka_topic_booking", cfg.KafkaTopicBooking,
		"kafka_topic_booking_dlq", cfg.KafkaTopicBookingDLQ,
		"kafka_group_id", cfg.KafkaGroupID,
		"processing_timeout", cfg.ProcessingTimeout,
		"sync_interval", cfg.SyncInterval,
		"sync_max_consecutive_errors", cfg.SyncMaxConsecutiveErrors,
		"sync_error_backoff", cfg.SyncErrorBackoff,
		"sync_cycle_timeout", cfg.SyncCycleTimeout,
		"startup_max_attempts", cfg.StartupMaxAttempts,
		"startup_backoff", cfg.StartupBackoff,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"cors_allowed_origins", cfg.CORSAllowedOrigins,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

// SQLDataSource returns the database/sql driver name and DSN for the configured store.
func (cfg *Config) SQLDataSource() (driver, dsn string) {
	if cfg.StoreDriver == StoreDriverSQLite {
		return StoreDriverSQLite, cfg.SQLitePath
	}
	dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDatabase, cfg.PostgresSSLMode)
	return StoreDriverPostgres, dsn
}

// StartupPolicy bounds how long a service waits for its dependencies before giving up.
func (cfg *Config) StartupPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:     cfg.StartupMaxAttempts,
		InitialInterval: cfg.StartupBackoff,
	}
}

func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "REDACTED")
	}
	return u.String()
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	var items []string
	for _, item := range strings.Split(getEnvStr(key, fallback), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

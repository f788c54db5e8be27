package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds all configuration for the music service
type Config struct {
	Database DatabaseConfig
	Telegram TelegramConfig
	Sync     SyncConfig
	Stream   StreamConfig
	Security SecurityConfig
	Kafka    KafkaConfig
	S3       S3Config
	Logging  LoggingConfig
	Service  ServiceConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// TelegramConfig holds Telegram MTProto configuration
type TelegramConfig struct {
	APIID       int
	APIHash     string
	Phone       string
	SessionName string
	DownloadDir string
	RateLimit   int
	LogLevel    string
}

// SyncConfig holds folder reconciliation and ingest configuration
type SyncConfig struct {
	FolderName        string
	ReconcileSchedule string
	IngestInterval    time.Duration
	IngestBatchSize   int
	HistoryPageSize   int
	OnStartup         bool
	StartupWait       time.Duration
}

// StreamConfig holds audio streaming configuration
type StreamConfig struct {
	RetryAttempts int
	RetryInterval time.Duration
	ChunkSize     int
}

// SecurityConfig holds request signature configuration
type SecurityConfig struct {
	SignatureEnabled bool
	APIKeys          map[string]string
	SignatureWindow  time.Duration
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled            bool
	Brokers            []string
	TopicMusicIngested string
}

// S3Config holds S3/MinIO archive configuration
type S3Config struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name string
	Port string
}

// Result is fx.Out struct for providing config dependencies
type Result struct {
	fx.Out

	Config         *Config
	DatabaseConfig *DatabaseConfig
	TelegramConfig *TelegramConfig
	SyncConfig     *SyncConfig
	StreamConfig   *StreamConfig
	SecurityConfig *SecurityConfig
	KafkaConfig    *KafkaConfig
	S3Config       *S3Config
	LoggingConfig  *LoggingConfig
	ServiceConfig  *ServiceConfig
}

// Out returns fx-compatible config result
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:         cfg,
		DatabaseConfig: &cfg.Database,
		TelegramConfig: &cfg.Telegram,
		SyncConfig:     &cfg.Sync,
		StreamConfig:   &cfg.Stream,
		SecurityConfig: &cfg.Security,
		KafkaConfig:    &cfg.Kafka,
		S3Config:       &cfg.S3,
		LoggingConfig:  &cfg.Logging,
		ServiceConfig:  &cfg.Service,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	apiID, err := strconv.Atoi(getEnv("TELEGRAM_API_ID", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_API_ID: %w", err)
	}

	ingestInterval, err := time.ParseDuration(getEnv("SYNC_INGEST_INTERVAL", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_INGEST_INTERVAL: %w", err)
	}

	startupWait, err := time.ParseDuration(getEnv("SYNC_STARTUP_WAIT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_STARTUP_WAIT: %w", err)
	}

	retryInterval, err := time.ParseDuration(getEnv("STREAM_RETRY_INTERVAL", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid STREAM_RETRY_INTERVAL: %w", err)
	}

	signatureWindow, err := time.ParseDuration(getEnv("API_SIGNATURE_WINDOW", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_SIGNATURE_WINDOW: %w", err)
	}

	apiKeys, err := ParseAPIKeys(getEnv("API_KEYS", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
			Host:       getEnv("DATABASE_HOST", "localhost"),
			Port:       getEnv("DATABASE_PORT", "5432"),
			User:       getEnv("DATABASE_USER", "music_user"),
			Password:   getEnv("DATABASE_PASSWORD", "music_pass"),
			DBName:     getEnv("DATABASE_NAME", "music_db"),
			SSLMode:    getEnv("DATABASE_SSLMODE", "disable"),
			SQLitePath: getEnv("DATABASE_SQLITE_PATH", "./data/music.db"),
		},
		Telegram: TelegramConfig{
			APIID:       apiID,
			APIHash:     getEnv("TELEGRAM_API_HASH", ""),
			Phone:       getEnv("TELEGRAM_PHONE", ""),
			SessionName: getEnv("TELEGRAM_SESSION_NAME", "default"),
			DownloadDir: getEnv("TELEGRAM_DOWNLOAD_DIR", "./downloads"),
			RateLimit:   getEnvInt("TELEGRAM_RATE_LIMIT", 10),
			LogLevel:    getEnv("TELEGRAM_LOG_LEVEL", "warn"),
		},
		Sync: SyncConfig{
			FolderName:        getEnv("SYNC_FOLDER_NAME", "Music"),
			ReconcileSchedule: getEnv("SYNC_RECONCILE_SCHEDULE", "@every 60s"),
			IngestInterval:    ingestInterval,
			IngestBatchSize:   getEnvInt("SYNC_INGEST_BATCH_SIZE", 100),
			HistoryPageSize:   getEnvInt("SYNC_HISTORY_PAGE_SIZE", 100),
			OnStartup:         getEnvBool("SYNC_ON_STARTUP", true),
			StartupWait:       startupWait,
		},
		Stream: StreamConfig{
			RetryAttempts: getEnvInt("STREAM_RETRY_ATTEMPTS", 60),
			RetryInterval: retryInterval,
			ChunkSize:     getEnvInt("STREAM_CHUNK_SIZE", 4096),
		},
		Security: SecurityConfig{
			SignatureEnabled: getEnvBool("API_SIGNATURE_ENABLED", false),
			APIKeys:          apiKeys,
			SignatureWindow:  signatureWindow,
		},
		Kafka: KafkaConfig{
			Enabled:            getEnvBool("KAFKA_ENABLED", false),
			Brokers:            strings.Split(getEnv("KAFKA_BROKERS", "localhost:9093"), ","),
			TopicMusicIngested: getEnv("KAFKA_TOPIC_MUSIC_INGESTED", "music.ingested"),
		},
		S3: S3Config{
			Enabled:   getEnvBool("S3_ENABLED", false),
			Endpoint:  getEnv("S3_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("S3_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("S3_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("S3_BUCKET", "music-archive"),
			UseSSL:    getEnvBool("S3_USE_SSL", false),
			PublicURL: getEnv("S3_PUBLIC_URL", "http://localhost:9000"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Service: ServiceConfig{
			Name: getEnv("SERVICE_NAME", "music-service"),
			Port: getEnv("SERVICE_PORT", "8080"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.APIID == 0 {
		return fmt.Errorf("TELEGRAM_API_ID is required")
	}

	if c.Telegram.APIHash == "" {
		return fmt.Errorf("TELEGRAM_API_HASH is required")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("DATABASE_HOST is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("DATABASE_NAME is required")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("DATABASE_SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER: %s", c.Database.Driver)
	}

	if c.Sync.FolderName == "" {
		return fmt.Errorf("SYNC_FOLDER_NAME is required")
	}

	if c.Sync.IngestBatchSize <= 0 || c.Sync.HistoryPageSize <= 0 {
		return fmt.Errorf("SYNC_INGEST_BATCH_SIZE and SYNC_HISTORY_PAGE_SIZE must be positive")
	}

	if c.Stream.RetryAttempts <= 0 || c.Stream.ChunkSize <= 0 {
		return fmt.Errorf("STREAM_RETRY_ATTEMPTS and STREAM_CHUNK_SIZE must be positive")
	}

	if c.Security.SignatureEnabled && len(c.Security.APIKeys) == 0 {
		return fmt.Errorf("API_KEYS is required when API_SIGNATURE_ENABLED is set")
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}

	return nil
}

// GetDSN returns database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// ParseAPIKeys parses "key:secret;key2:secret2" pairs. Blank items are ignored.
func ParseAPIKeys(raw string) (map[string]string, error) {
	keys := make(map[string]string)
	for _, item := range strings.Split(raw, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		key, secret, ok := strings.Cut(item, ":")
		if !ok || key == "" || secret == "" {
			return nil, fmt.Errorf("invalid API_KEYS entry %q: expected key:secret", item)
		}
		keys[key] = secret
	}
	return keys, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

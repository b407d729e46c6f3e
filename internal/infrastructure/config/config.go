package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"

	BlacklistRedis    = "redis"
	BlacklistDatabase = "database"

	ReportsLocal = "local"
	ReportsS3    = "s3"
)

type Config struct {
	Port          string  `env:"PORT,            default=8080"`
	Env           string  `env:"ENV,             default=development"`
	LogLevel      string  `env:"LOG_LEVEL,       default=info"`
	LogPretty     bool    `env:"LOG_PRETTY,      default=false"`
	PublicBaseURL string  `env:"PUBLIC_BASE_URL, default=http://localhost:8080"`
	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT, default=5"`

	StorageDriver    string `env:"STORAGE_DRIVER,    default=mongo"`
	BlacklistBackend string `env:"BLACKLIST_BACKEND, default=redis"`

	Auth    AuthConfig
	Mongo   MongoConfig
	SQL     SQLConfig
	Redis   RedisConfig
	Weather WeatherConfig
	SMTP    SMTPConfig
	Reports ReportsConfig
	Queue   QueueConfig
}

type AuthConfig struct {
	SecretKey      string        `env:"SECRET_KEY, required"`
	Algorithm      string        `env:"ALGORITHM,  default=HS256"`
	TokenTTL       time.Duration `env:"TOKEN_TTL,  default=30m"`
	AdminSecretKey string        `env:"ADMIN_SECRET_KEY"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=weather_reports"`
}

type SQLConfig struct {
	PostgresDSN string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH, default=weather_reports.db"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

type WeatherConfig struct {
	APIKey  string        `env:"OPENWEATHER_API_KEY"`
	BaseURL string        `env:"WEATHER_BASE_URL, default=https://api.openweathermap.org/data/2.5/weather"`
	Timeout time.Duration `env:"WEATHER_TIMEOUT,  default=10s"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_SERVER"`
	Port     string `env:"SMTP_PORT,   default=587"`
	From     string `env:"EMAIL_FROM"`
	Password string `env:"EMAIL_PASSWORD"`
}

type ReportsConfig struct {
	Backend     string `env:"REPORTS_BACKEND, default=local"`
	Dir         string `env:"REPORTS_DIR,     default=weather_reports"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION,       default=us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Prefix    string `env:"S3_PREFIX,       default=reports/"`
}

type QueueConfig struct {
	Workers    int           `env:"REPORT_WORKERS,     default=4"`
	Size       int           `env:"REPORT_QUEUE_SIZE,  default=64"`
	JobTimeout time.Duration `env:"REPORT_JOB_TIMEOUT, default=2m"`
}

// Load reads configuration from the process environment and panics when it
// is incomplete or inconsistent.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadWith reads configuration through lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the enumerated settings and the settings each selected
// backend depends on.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMongo, StorageSQLite:
	case StoragePostgres:
		if c.SQL.PostgresDSN == "" {
			return fmt.Errorf("config: DATABASE_URL is required for STORAGE_DRIVER=%s", StoragePostgres)
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.BlacklistBackend {
	case BlacklistRedis, BlacklistDatabase:
	default:
		return fmt.Errorf("config: unknown BLACKLIST_BACKEND %q", c.BlacklistBackend)
	}

	switch c.Reports.Backend {
	case ReportsLocal:
	case ReportsS3:
		if c.Reports.S3Bucket == "" {
			return fmt.Errorf("config: S3_BUCKET is required for REPORTS_BACKEND=%s", ReportsS3)
		}
	default:
		return fmt.Errorf("config: unknown REPORTS_BACKEND %q", c.Reports.Backend)
	}

	switch c.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("config: unsupported ALGORITHM %q", c.Auth.Algorithm)
	}

	if c.Queue.Workers < 1 || c.Queue.Size < 1 {
		return fmt.Errorf("config: REPORT_WORKERS and REPORT_QUEUE_SIZE must be positive")
	}
	return nil
}

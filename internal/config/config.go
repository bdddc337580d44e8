package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Auth      AuthConfig
	Email     EmailConfig
	MinIO     MinIOConfig
	Upload    UploadConfig
	Geocoding GeocodingConfig
	Booking   BookingConfig
	Metrics   MetricsConfig
	Jobs      JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	ClientURL   string
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN is the libpq style URL used by the migration runner.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiry     time.Duration
	CookieName string
}

type AuthConfig struct {
	OTPTTL          time.Duration
	TempPasswordTTL time.Duration
	BcryptCost      int
}

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Delivery string // direct, queue
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

type UploadConfig struct {
	MaxImages    int
	MaxImageSize int64
}

type GeocodingConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

type BookingConfig struct {
	PlatformFee     decimal.Decimal
	DepositMonths   int
	DemoMarksRented bool
	MaxLeaseMonths  int
}

type MetricsConfig struct {
	Enabled bool
	Prefix  string
}

type JobConfig struct {
	CredentialCleanupCron string
}

func Load() (*Config, error) {
	jwtExpiry, err := parseExpiry(getEnv("JWT_EXPIRE", "7d"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRE: %w", err)
	}

	fee, err := decimal.NewFromString(getEnv("BOOKING_PLATFORM_FEE", "499"))
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_PLATFORM_FEE: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Homefinder API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			ClientURL:   getEnv("CLIENT_URL", "http://localhost:3000"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "homefinder"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "homefinder"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGO_DB", "homefinder"),
			ConnectTimeout: getEnvDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", defaultJWTSecret),
			Expiry:     jwtExpiry,
			CookieName: getEnv("JWT_COOKIE_NAME", "token"),
		},
		Auth: AuthConfig{
			OTPTTL:          getEnvDuration("OTP_TTL", 10*time.Minute),
			TempPasswordTTL: getEnvDuration("TEMP_PASSWORD_TTL", 10*time.Minute),
			BcryptCost:      getEnvInt("BCRYPT_COST", 10),
		},
		Email: EmailConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvInt("SMTP_PORT", 1025),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("EMAIL_FROM", "noreply@homefinder.app"),
			FromName: getEnv("EMAIL_FROM_NAME", "Homefinder"),
			Delivery: getEnv("EMAIL_DELIVERY", "queue"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "homefinder"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			PublicURL: getEnv("MINIO_PUBLIC_URL", ""),
		},
		Upload: UploadConfig{
			MaxImages:    getEnvInt("UPLOAD_MAX_IMAGES", 10),
			MaxImageSize: int64(getEnvInt("UPLOAD_MAX_IMAGE_MB", 10)) * 1024 * 1024,
		},
		Geocoding: GeocodingConfig{
			BaseURL:   getEnv("GEOCODING_BASE_URL", "https://nominatim.openstreetmap.org"),
			UserAgent: getEnv("GEOCODING_USER_AGENT", "Homefinder-App/1.0"),
			Timeout:   getEnvDuration("GEOCODING_TIMEOUT", 10*time.Second),
		},
		Booking: BookingConfig{
			PlatformFee:     fee,
			DepositMonths:   getEnvInt("BOOKING_DEPOSIT_MONTHS", 2),
			DemoMarksRented: getEnvBool("BOOKING_DEMO_MARKS_RENTED", true),
			MaxLeaseMonths:  getEnvInt("BOOKING_MAX_LEASE_MONTHS", 36),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Prefix:  getEnv("METRICS_PREFIX", "homefinder"),
		},
		Jobs: JobConfig{
			CredentialCleanupCron: getEnv("JOB_CREDENTIAL_CLEANUP_CRON", "0 * * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Upload.MaxImages <= 0 {
		return fmt.Errorf("UPLOAD_MAX_IMAGES must be positive")
	}
	if c.Booking.DepositMonths < 0 {
		return fmt.Errorf("BOOKING_DEPOSIT_MONTHS must not be negative")
	}
	switch c.Email.Delivery {
	case "direct", "queue":
	default:
		return fmt.Errorf("EMAIL_DELIVERY must be direct or queue, got %q", c.Email.Delivery)
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// parseExpiry accepts Go durations plus a day suffix ("7d").
func parseExpiry(v string) (time.Duration, error) {
	if strings.HasSuffix(v, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(v, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(v)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

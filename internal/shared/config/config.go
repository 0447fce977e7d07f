package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// JWT configuration
	JWT JWTConfig

	// Payment gateway configuration
	Payment PaymentConfig

	// Kafka configuration
	Kafka KafkaConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Public base URLs used to build gateway redirect targets
	ClientBaseURL string
	ServerBaseURL string

	// Booking lifecycle
	PendingBookingTTL time.Duration

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	// TTL for the occupied-seats read cache
	SeatCacheTTL time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// PaymentConfig is the single gateway configuration value object. Built
// once at startup and injected into the adapter; nothing re-reads gateway
// environment variables after Load returns.
type PaymentConfig struct {
	AppID      string
	SecretKey  string
	BaseURL    string
	APIVersion string

	// Hosted checkout URL template base, e.g. https://payments.cashfree.com/pay/
	PaymentsBaseURL string

	// Payment links must start with this prefix to be returned to clients.
	AllowedLinkPrefix string

	Currency string

	// Verification polling bounds
	PollInitialInterval time.Duration
	PollMaxInterval     time.Duration
	PollMaxElapsed      time.Duration
}

// KafkaConfig holds Kafka configuration for booking notifications
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	BookingTopic  string
	SupportTopic  string
	ConsumerGroup string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `json:"enabled"`
	WindowDuration  time.Duration `json:"window_duration"`
	DefaultRequests int           `json:"default_requests"`
	PublicRequests  int           `json:"public_requests"`
	BookingRequests int           `json:"booking_requests"`
	WebhookRequests int           `json:"webhook_requests"`
	WhitelistedIPs  []string      `json:"whitelisted_ips"`
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "quickshow_db"),
			User:     getEnv("DB_USER", "quickshow_user"),
			Password: getEnv("DB_PASSWORD", "quickshow_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			SeatCacheTTL: getDurationEnv("REDIS_SEAT_CACHE_TTL", 30*time.Second),
		},

		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
		},

		Payment: PaymentConfig{
			// Credentials must be exact for authentication to work; only
			// trailing whitespace is removed, never truncation.
			AppID:               strings.TrimSpace(getEnv("CASHFREE_APP_ID", "")),
			SecretKey:           strings.TrimSpace(getEnv("CASHFREE_SECRET_KEY", "")),
			BaseURL:             getEnv("CASHFREE_BASE_URL", "https://api.cashfree.com/pg"),
			APIVersion:          getEnv("CASHFREE_API_VERSION", "2023-08-01"),
			PaymentsBaseURL:     getEnv("CASHFREE_PAYMENTS_BASE_URL", "https://payments.cashfree.com/pay/"),
			AllowedLinkPrefix:   getEnv("CASHFREE_ALLOWED_LINK_PREFIX", "https://payments.cashfree.com/"),
			Currency:            getEnv("PAYMENT_CURRENCY", "INR"),
			PollInitialInterval: getDurationEnv("PAYMENT_POLL_INITIAL_INTERVAL", 2*time.Second),
			PollMaxInterval:     getDurationEnv("PAYMENT_POLL_MAX_INTERVAL", 15*time.Second),
			PollMaxElapsed:      getDurationEnv("PAYMENT_POLL_MAX_ELAPSED", 2*time.Minute),
		},

		Kafka: KafkaConfig{
			Enabled:       getBoolEnv("KAFKA_ENABLED", false),
			Brokers:       getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			BookingTopic:  getEnv("KAFKA_BOOKING_TOPIC", "booking-notifications"),
			SupportTopic:  getEnv("KAFKA_SUPPORT_TOPIC", "booking-support-queue"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "quickshow-notifications"),
		},

		RateLimit: RateLimitConfig{
			Enabled:         getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:  getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests: getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:  getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 100),
			BookingRequests: getIntEnv("RATE_LIMIT_BOOKING_REQUESTS", 20),
			WebhookRequests: getIntEnv("RATE_LIMIT_WEBHOOK_REQUESTS", 120),
			WhitelistedIPs:  getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		ClientBaseURL: getEnv("CLIENT_BASE_URL", "http://localhost:5174"),
		ServerBaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),

		PendingBookingTTL: getDurationEnv("PENDING_BOOKING_TTL", 30*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// ReturnURL is the browser redirect target after hosted checkout. The order
// id rides along as a query parameter so the client can resume the booking
// flow after the external redirect.
func (c *Config) ReturnURL(orderID string) string {
	return c.ClientBaseURL + "/my-bookings?orderId=" + orderID
}

// NotifyURL is the server-to-server webhook endpoint the gateway calls.
func (c *Config) NotifyURL() string {
	return c.ServerBaseURL + c.APIPrefix + "/booking/callback"
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix
}

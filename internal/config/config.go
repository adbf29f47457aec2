package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/utafrali/bookshelf/internal/cache"
	pkgconfig "github.com/utafrali/bookshelf/pkg/config"
	"github.com/utafrali/bookshelf/pkg/httpclient"
	"github.com/utafrali/bookshelf/pkg/tracing"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// CLI holds the configuration of the bookshelf command.
type CLI struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"BOOKSHELF_LOG_LEVEL" envDefault:"warn"`
	LogFormat   string `env:"BOOKSHELF_LOG_FORMAT" envDefault:"text"`

	// Backend
	APIURL     string        `env:"BOOKSHELF_API_URL" envDefault:"http://localhost:8000"`
	Timeout    time.Duration `env:"BOOKSHELF_TIMEOUT" envDefault:"15s"`
	MaxRetries int           `env:"BOOKSHELF_MAX_RETRIES" envDefault:"0"`

	// Circuit breaker around the backend
	CBEnabled      bool          `env:"BOOKSHELF_CB_ENABLED" envDefault:"true"`
	CBTimeout      time.Duration `env:"BOOKSHELF_CB_TIMEOUT" envDefault:"30s"`
	CBFailureRatio float64       `env:"BOOKSHELF_CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32        `env:"BOOKSHELF_CB_MIN_REQUESTS" envDefault:"5"`

	// Cart and notifications
	CartStaleTime   time.Duration `env:"BOOKSHELF_CART_STALE_TIME" envDefault:"30s"`
	NotificationTTL time.Duration `env:"BOOKSHELF_NOTIFICATION_TTL" envDefault:"4s"`

	// Session file; empty means the user config directory.
	SessionFile string `env:"BOOKSHELF_SESSION_FILE"`

	// Catalog cache
	CacheBackend   string        `env:"BOOKSHELF_CACHE" envDefault:"memory"`
	BooksTTL       time.Duration `env:"BOOKSHELF_BOOKS_TTL" envDefault:"1m"`
	FeedsTTL       time.Duration `env:"BOOKSHELF_FEEDS_TTL" envDefault:"5m"`
	LikesTTL       time.Duration `env:"BOOKSHELF_LIKES_TTL" envDefault:"30s"`
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass      string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix string        `env:"BOOKSHELF_REDIS_PREFIX" envDefault:"bookshelf:"`

	// OpenTelemetry
	Tracing tracing.Config
}

// LoadCLI reads the CLI configuration from environment variables.
func LoadCLI() (*CLI, error) {
	cfg := &CLI{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load bookshelf config: %w", err)
	}
	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(cfg.CacheBackend))
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "bookshelf-cli"
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *CLI) validate() error {
	u, err := url.ParseRequestURI(c.APIURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid BOOKSHELF_API_URL %q", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("BOOKSHELF_TIMEOUT must be positive, got %s", c.Timeout)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("BOOKSHELF_MAX_RETRIES must be between 0 and 10, got %d", c.MaxRetries)
	}
	if c.CartStaleTime < 0 {
		return fmt.Errorf("BOOKSHELF_CART_STALE_TIME must not be negative, got %s", c.CartStaleTime)
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1.0 {
		return fmt.Errorf("BOOKSHELF_CB_FAILURE_RATIO must be in (0, 1], got %f", c.CBFailureRatio)
	}
	switch c.CacheBackend {
	case CacheMemory:
	case CacheRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis cache")
		}
	default:
		return fmt.Errorf("unknown BOOKSHELF_CACHE %q (want memory or redis)", c.CacheBackend)
	}
	return validateSampleRate(c.Tracing.SampleRate)
}

// HTTPClient returns the transport settings for the API client.
func (c *CLI) HTTPClient() httpclient.Config {
	hc := httpclient.DefaultConfig()
	hc.Timeout = c.Timeout
	hc.MaxRetries = c.MaxRetries
	hc.Tracing = c.Tracing.Enabled
	return hc
}

// CircuitBreaker returns the breaker settings for the API client.
func (c *CLI) CircuitBreaker() httpclient.CircuitBreakerConfig {
	cb := httpclient.DefaultCircuitBreakerConfig(httpclient.DefaultConfig().Name)
	cb.Timeout = c.CBTimeout
	cb.FailureRatio = c.CBFailureRatio
	cb.MinRequests = c.CBMinRequests
	return cb
}

// Redis returns the connection settings for the redis cache.
func (c *CLI) Redis() cache.RedisConfig {
	return cache.RedisConfig{
		Addr:      c.RedisAddr,
		Password:  c.RedisPass,
		DB:        c.RedisDB,
		KeyPrefix: c.RedisKeyPrefix,
	}
}

// MockAPI holds the configuration of the mock backend.
type MockAPI struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"MOCKAPI_LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"MOCKAPI_HTTP_PORT" envDefault:"8000"`

	// Auth
	JWTSecret  string        `env:"MOCKAPI_JWT_SECRET" envDefault:"dev-secret-change-me"`
	TokenTTL   time.Duration `env:"MOCKAPI_TOKEN_TTL" envDefault:"30m"`
	BcryptCost int           `env:"MOCKAPI_BCRYPT_COST" envDefault:"10"`

	Seed        bool     `env:"MOCKAPI_SEED" envDefault:"true"`
	CORSOrigins []string `env:"MOCKAPI_CORS_ORIGINS" envDefault:"http://localhost:3000,http://localhost:5173" envSeparator:","`

	// OpenTelemetry
	Tracing tracing.Config
}

// LoadMockAPI reads the mock backend configuration from environment variables.
func LoadMockAPI() (*MockAPI, error) {
	cfg := &MockAPI{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load mockapi config: %w", err)
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "bookshelf-mockapi"
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *MockAPI) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("MOCKAPI_JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("MOCKAPI_TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("MOCKAPI_BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	return validateSampleRate(c.Tracing.SampleRate)
}

// Addr returns the listen address.
func (c *MockAPI) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func validateSampleRate(rate float64) error {
	if rate < 0 || rate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", rate)
	}
	return nil
}

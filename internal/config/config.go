package config

import (
	"time"
)

// Config is the root configuration of the users API.
type Config struct {
	Server      ServerConfig      `yaml:"server" json:"server"`
	Database    DatabaseConfig    `yaml:"database" json:"database"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Auth        AuthConfig        `yaml:"auth" json:"auth"`
	Password    PasswordConfig    `yaml:"password" json:"password"`
	RateLimit   RateLimitConfig   `yaml:"rateLimit" json:"rateLimit"`
	ContentType ContentTypeConfig `yaml:"contentType" json:"contentType"`
	ClientIP    ClientIPConfig    `yaml:"clientIP" json:"clientIP"`
	Logging     LoggingConfig     `yaml:"logging" json:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics" json:"metrics"`
	Tracing     TracingConfig     `yaml:"tracing" json:"tracing"`
}

// ServerConfig configures the public HTTP listener.
type ServerConfig struct {
	Address           string   `yaml:"address" json:"address"`
	ReadTimeout       Duration `yaml:"readTimeout" json:"readTimeout"`
	ReadHeaderTimeout Duration `yaml:"readHeaderTimeout" json:"readHeaderTimeout"`
	WriteTimeout      Duration `yaml:"writeTimeout" json:"writeTimeout"`
	IdleTimeout       Duration `yaml:"idleTimeout" json:"idleTimeout"`
	ShutdownTimeout   Duration `yaml:"shutdownTimeout" json:"shutdownTimeout"`

	// MaxBodyBytes caps request bodies. Zero disables the cap.
	MaxBodyBytes int64 `yaml:"maxBodyBytes" json:"maxBodyBytes"`

	// SecurityHeaders are set on every response. An empty value removes
	// a default header.
	SecurityHeaders map[string]string `yaml:"securityHeaders" json:"securityHeaders"`
}

// DatabaseConfig configures the PostgreSQL connection pool.
type DatabaseConfig struct {
	DSN             string   `yaml:"dsn" json:"-"`
	MaxOpenConns    int      `yaml:"maxOpenConns" json:"maxOpenConns"`
	MaxIdleConns    int      `yaml:"maxIdleConns" json:"maxIdleConns"`
	ConnMaxLifetime Duration `yaml:"connMaxLifetime" json:"connMaxLifetime"`
	QueryTimeout    Duration `yaml:"queryTimeout" json:"queryTimeout"`
	Migrate         bool     `yaml:"migrate" json:"migrate"`

	// ConnectRetries is how many more times the initial ping is tried
	// before startup fails. ConnectBackoff is the first wait; it doubles
	// on every retry.
	ConnectRetries int      `yaml:"connectRetries" json:"connectRetries"`
	ConnectBackoff Duration `yaml:"connectBackoff" json:"connectBackoff"`
}

// Cache backend types.
const (
	CacheTypeRedis  = "redis"
	CacheTypeMemory = "memory"
)

// CacheConfig configures the cache store shared by the repository and
// the rate limiter.
type CacheConfig struct {
	Enabled          bool          `yaml:"enabled" json:"enabled"`
	Type             string        `yaml:"type" json:"type"`
	Addr             string        `yaml:"addr" json:"addr"`
	Password         string        `yaml:"password" json:"-"`
	DB               int           `yaml:"db" json:"db"`
	KeyPrefix        string        `yaml:"keyPrefix" json:"keyPrefix"`
	TTL              Duration      `yaml:"ttl" json:"ttl"`
	OperationTimeout Duration      `yaml:"operationTimeout" json:"operationTimeout"`
	DialTimeout      Duration      `yaml:"dialTimeout" json:"dialTimeout"`
	PoolSize         int           `yaml:"poolSize" json:"poolSize"`
	Breaker          BreakerConfig `yaml:"breaker" json:"breaker"`
}

// BreakerConfig configures the circuit breaker guarding the cache.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures      uint32   `yaml:"maxFailures" json:"maxFailures"`
	OpenTimeout      Duration `yaml:"openTimeout" json:"openTimeout"`
	HalfOpenRequests uint32   `yaml:"halfOpenRequests" json:"halfOpenRequests"`
}

// AuthConfig configures bearer token issuing and verification.
type AuthConfig struct {
	Secret string   `yaml:"secret" json:"-"`
	Issuer string   `yaml:"issuer" json:"issuer"`
	TTL    Duration `yaml:"ttl" json:"ttl"`
}

// PasswordConfig configures password hashing.
type PasswordConfig struct {
	Pepper      string `yaml:"pepper" json:"-"`
	Iterations  uint32 `yaml:"iterations" json:"iterations"`
	MemoryKiB   uint32 `yaml:"memoryKiB" json:"memoryKiB"`
	Parallelism uint8  `yaml:"parallelism" json:"parallelism"`
}

// RateLimitConfig configures the fixed window rate limiter.
type RateLimitConfig struct {
	Enabled   bool     `yaml:"enabled" json:"enabled"`
	Requests  int      `yaml:"requests" json:"requests"`
	Window    Duration `yaml:"window" json:"window"`
	KeyPrefix string   `yaml:"keyPrefix" json:"keyPrefix"`
}

// ContentTypeConfig configures Content-Type enforcement.
type ContentTypeConfig struct {
	Methods []string `yaml:"methods" json:"methods"`
	Types   []string `yaml:"types" json:"types"`
}

// ClientIPConfig configures client address extraction.
type ClientIPConfig struct {
	// TrustedProxies lists CIDRs whose X-Forwarded-For header is honoured.
	TrustedProxies []string `yaml:"trustedProxies" json:"trustedProxies"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// MetricsConfig configures the Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address"`
	Path    string `yaml:"path" json:"path"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	ServiceName  string  `yaml:"serviceName" json:"serviceName"`
	OTLPEndpoint string  `yaml:"otlpEndpoint" json:"otlpEndpoint"`
	SamplingRate float64 `yaml:"samplingRate" json:"samplingRate"`
	Insecure     bool    `yaml:"insecure" json:"insecure"`
}

// Default values.
const (
	DefaultServerAddress    = ":8080"
	DefaultMetricsAddress   = ":9090"
	DefaultMetricsPath      = "/metrics"
	DefaultCacheKeyPrefix   = "app:users"
	DefaultCacheTTL         = 60 * time.Second
	DefaultCacheOpTimeout   = 200 * time.Millisecond
	DefaultRateLimitPrefix  = "ratelimit"
	DefaultRateLimitRequest = 100
	DefaultRateLimitWindow  = time.Minute
	DefaultTokenTTL         = time.Hour
	DefaultServiceName      = "userapi"
	DefaultMaxBodyBytes     = 1 << 20
)

// DefaultSecurityHeaders returns the response headers set unless
// overridden by server.securityHeaders.
func DefaultSecurityHeaders() map[string]string {
	return map[string]string{
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "DENY",
		"X-XSS-Protection":          "1; mode=block",
		"Referrer-Policy":           "no-referrer",
		"Content-Security-Policy":   "default-src 'self'",
		"Strict-Transport-Security": "max-age=31536000; includeSubDomains; preload",
	}
}

// DefaultConfig returns a configuration with every optional value set.
// Secrets and the database DSN have no defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:           DefaultServerAddress,
			ReadTimeout:       Duration(10 * time.Second),
			ReadHeaderTimeout: Duration(5 * time.Second),
			WriteTimeout:      Duration(10 * time.Second),
			IdleTimeout:       Duration(60 * time.Second),
			ShutdownTimeout:   Duration(30 * time.Second),
			MaxBodyBytes:      DefaultMaxBodyBytes,
			SecurityHeaders:   DefaultSecurityHeaders(),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: Duration(30 * time.Minute),
			QueryTimeout:    Duration(5 * time.Second),
			Migrate:         true,
			ConnectRetries:  5,
			ConnectBackoff:  Duration(500 * time.Millisecond),
		},
		Cache: CacheConfig{
			Enabled:          true,
			Type:             CacheTypeRedis,
			Addr:             "localhost:6379",
			KeyPrefix:        DefaultCacheKeyPrefix,
			TTL:              Duration(DefaultCacheTTL),
			OperationTimeout: Duration(DefaultCacheOpTimeout),
			DialTimeout:      Duration(2 * time.Second),
			PoolSize:         10,
			Breaker: BreakerConfig{
				MaxFailures:      5,
				OpenTimeout:      Duration(30 * time.Second),
				HalfOpenRequests: 1,
			},
		},
		Auth: AuthConfig{
			Issuer: DefaultServiceName,
			TTL:    Duration(DefaultTokenTTL),
		},
		Password: PasswordConfig{
			Iterations:  1,
			MemoryKiB:   64 * 1024,
			Parallelism: 2,
		},
		RateLimit: RateLimitConfig{
			Enabled:   true,
			Requests:  DefaultRateLimitRequest,
			Window:    Duration(DefaultRateLimitWindow),
			KeyPrefix: DefaultRateLimitPrefix,
		},
		ContentType: ContentTypeConfig{
			Methods: []string{"POST", "PUT"},
			Types:   []string{"application/json"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Address: DefaultMetricsAddress,
			Path:    DefaultMetricsPath,
		},
		Tracing: TracingConfig{
			ServiceName:  DefaultServiceName,
			SamplingRate: 1.0,
			Insecure:     true,
		},
	}
}

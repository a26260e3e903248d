package config

import (
	"errors"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/vyrodovalexey/userapi/internal/util"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks the configuration and returns every problem found,
// joined. Each problem is a *util.ConfigError.
func (c *Config) Validate() error {
	v := &validator{}

	v.require(c.Server.Address != "", "server.address", "is required")
	v.require(c.Server.ShutdownTimeout > 0, "server.shutdownTimeout", "must be positive")
	v.require(c.Server.MaxBodyBytes >= 0, "server.maxBodyBytes", "must not be negative")

	v.require(c.Database.DSN != "", "database.dsn", "is required")
	v.require(c.Database.MaxOpenConns >= 0, "database.maxOpenConns", "must not be negative")
	v.require(c.Database.ConnectRetries >= 0, "database.connectRetries", "must not be negative")

	c.validateCache(v)

	v.require(c.Auth.Secret != "", "auth.secret", "is required")
	v.require(c.Auth.TTL > 0, "auth.ttl", "must be positive")

	v.require(c.Password.Pepper != "", "password.pepper", "is required")
	v.require(c.Password.Iterations > 0, "password.iterations", "must be positive")
	v.require(c.Password.MemoryKiB > 0, "password.memoryKiB", "must be positive")
	v.require(c.Password.Parallelism > 0, "password.parallelism", "must be positive")

	if c.RateLimit.Enabled {
		v.require(c.RateLimit.Requests > 0, "rateLimit.requests", "must be positive")
		v.require(c.RateLimit.Window.Duration() >= time.Second, "rateLimit.window", "must be at least 1s")
		v.require(c.RateLimit.KeyPrefix != "", "rateLimit.keyPrefix", "is required")
	}

	for _, m := range c.ContentType.Methods {
		v.require(isHTTPMethod(m), "contentType.methods", "unknown method "+m)
	}

	for _, proxy := range c.ClientIP.TrustedProxies {
		v.requireNoErr(parseProxy(proxy), "clientIP.trustedProxies", "invalid CIDR or address "+proxy)
	}

	v.require(validLogLevels[strings.ToLower(c.Logging.Level)], "logging.level",
		"must be one of debug, info, warn, error")
	v.require(validLogFormats[c.Logging.Format], "logging.format", "must be json or console")

	if c.Metrics.Enabled {
		v.require(c.Metrics.Address != "", "metrics.address", "is required")
		v.require(strings.HasPrefix(c.Metrics.Path, "/"), "metrics.path", "must start with /")
	}

	if c.Tracing.Enabled {
		v.require(c.Tracing.ServiceName != "", "tracing.serviceName", "is required")
		v.require(c.Tracing.SamplingRate >= 0 && c.Tracing.SamplingRate <= 1,
			"tracing.samplingRate", "must be between 0 and 1")
	}

	return v.err()
}

func (c *Config) validateCache(v *validator) {
	v.require(c.Cache.KeyPrefix != "", "cache.keyPrefix", "is required")
	v.require(c.Cache.TTL > 0, "cache.ttl", "must be positive")

	if !c.Cache.Enabled {
		return
	}

	v.require(c.Cache.Type == CacheTypeRedis || c.Cache.Type == CacheTypeMemory,
		"cache.type", "must be redis or memory")
	v.require(c.Cache.OperationTimeout > 0, "cache.operationTimeout", "must be positive")

	if c.Cache.Type == CacheTypeRedis {
		v.require(c.Cache.Addr != "", "cache.addr", "is required")
		v.require(c.Cache.Breaker.MaxFailures > 0, "cache.breaker.maxFailures", "must be positive")
		v.require(c.Cache.Breaker.OpenTimeout > 0, "cache.breaker.openTimeout", "must be positive")
	}
}

func isHTTPMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

// parseProxy accepts a CIDR or a single address.
func parseProxy(s string) error {
	if strings.Contains(s, "/") {
		_, err := netip.ParsePrefix(s)
		return err
	}
	_, err := netip.ParseAddr(s)
	return err
}

type validator struct {
	errs []error
}

func (v *validator) require(ok bool, field, message string) {
	if !ok {
		v.errs = append(v.errs, util.NewConfigError(field, message))
	}
}

func (v *validator) requireNoErr(err error, field, message string) {
	if err != nil {
		v.errs = append(v.errs, util.NewConfigErrorWithCause(field, message, err))
	}
}

func (v *validator) err() error {
	return errors.Join(v.errs...)
}

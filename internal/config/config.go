package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Collection storage
	DataFile string // path to the JSON collection file (required)

	// Metadata fetching
	FetchTimeout     time.Duration // upper bound for a single metadata fetch (default: 5s)
	FetchUserAgent   string        // User-Agent header sent when fetching pages
	FetchMaxBody     int64         // max bytes read from a fetched body (default: 1MiB)
	RefreshInterval  time.Duration // interval between status refresh passes (0 = disabled)
	RefreshWorkers   int           // concurrent fetches during a status refresh
	ImportFile       string        // optional Homepage bookmarks.yaml imported on start and on demand
	ImportServices   string        // optional Homepage services.yaml imported the same way
	ImportInterval   time.Duration // interval between imports (0 = start and manual trigger only)
	FetchCacheTTL    time.Duration // TTL of cached fetch outcomes in Redis
	FlushFetchCache  bool          // drop every cached outcome on start
	SkipTLSVerify    bool          // skip TLS certificate verification when fetching (dev only)
	MaxRedirects     int           // max redirects followed by the fetcher
	RequestTimeout   time.Duration // per-request timeout for the HTTP API
	WriteRateBurst   int           // burst for write endpoints per client IP
	WriteRatePerMin  int           // refill per minute for write endpoints per client IP
	MaxRequestBodyKB int64         // max body size accepted by the HTTP API

	// Redis (optional fetch cache)
	RedisAddr           string        // ex: "localhost:6379", empty disables the cache
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisPoolSize       int           // connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries (grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LINKSTASH_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LINKSTASH_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LINKSTASH_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LINKSTASH_PRETTY_LOG", false),

		// Storage
		DataFile: requireEnv("LINKSTASH_DATA_FILE"),

		// Fetching
		FetchTimeout:     mustDuration("LINKSTASH_FETCH_TIMEOUT", 5*time.Second),
		FetchUserAgent:   getenv("LINKSTASH_FETCH_USER_AGENT", "linkstash/1.0 (+metadata fetcher)"),
		FetchMaxBody:     int64(getenvInt("LINKSTASH_FETCH_MAX_BODY", 1<<20)),
		RefreshInterval:  mustDuration("LINKSTASH_REFRESH_INTERVAL", 0),
		RefreshWorkers:   getenvInt("LINKSTASH_REFRESH_WORKERS", 4),
		ImportFile:       getenv("LINKSTASH_IMPORT_FILE", ""),
		ImportServices:   getenv("LINKSTASH_IMPORT_SERVICES_FILE", ""),
		ImportInterval:   mustDuration("LINKSTASH_IMPORT_INTERVAL", 0),
		FetchCacheTTL:    mustDuration("LINKSTASH_FETCH_CACHE_TTL", 6*time.Hour),
		FlushFetchCache:  mustBool("LINKSTASH_FLUSH_FETCH_CACHE", false),
		SkipTLSVerify:    mustBool("LINKSTASH_SKIP_TLS_VERIFY", false),
		MaxRedirects:     getenvInt("LINKSTASH_MAX_REDIRECTS", 10),
		RequestTimeout:   mustDuration("LINKSTASH_REQUEST_TIMEOUT", 15*time.Second),
		WriteRateBurst:   getenvInt("LINKSTASH_WRITE_RATE_BURST", 20),
		WriteRatePerMin:  getenvInt("LINKSTASH_WRITE_RATE_PER_MIN", 60),
		MaxRequestBodyKB: int64(getenvInt("LINKSTASH_MAX_BODY_KB", 4096)),

		// Redis settings
		RedisAddr:           getenv("LINKSTASH_REDIS_ADDR", ""),
		RedisUser:           getenv("LINKSTASH_REDIS_USERNAME", ""),
		RedisPassword:       getenv("LINKSTASH_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("LINKSTASH_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("LINKSTASH_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("LINKSTASH_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("LINKSTASH_TRUST_PROXY", false),
	}

	if cfg.FetchTimeout <= 0 {
		panic("❌ FATAL: LINKSTASH_FETCH_TIMEOUT must be > 0")
	}
	if cfg.RefreshWorkers < 1 {
		cfg.RefreshWorkers = 1
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfgCopy.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// RedisEnabled reports whether a fetch cache should be connected.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/volumedex/volumedex/internal/hasher"
	"github.com/volumedex/volumedex/internal/notifier"
	"github.com/volumedex/volumedex/internal/orchestrator"
	"github.com/volumedex/volumedex/internal/scanner"
	"github.com/volumedex/volumedex/internal/store"
	"github.com/volumedex/volumedex/internal/thumbnails"
	"github.com/volumedex/volumedex/internal/volumes"
)

// Config holds application configuration. Each domain component owns its
// own Config type (internal/store, internal/scanner, ...); this struct is
// the single place environment variables are read and fanned out to them.
type Config struct {
	Server        ServerConfig
	Store         store.Config
	Scan          scanner.Config
	Orchestrator  orchestrator.Config
	Hasher        hasher.Config
	Thumbnail     thumbnails.Config
	Watcher       volumes.Config
	Notifier      notifier.Config
	NotifierRules notifier.Filters
	Notifications NotificationsConfig
	CORS          CORSConfig
	Security      SecurityConfig
	RateLimit     RateLimitConfig
	TLS           TLSConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host string
	Port string
	Mode string
}

// NotificationsConfig controls the desktop-notification collaborator
// (spec.md §4.3's "notify the user" outcome).
type NotificationsConfig struct {
	Enabled      bool
	MinInterval  time.Duration // per-volume rate limit between notifications
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig holds security headers configuration
type SecurityConfig struct {
	HideServerHeader      bool
	EnableHSTS            bool
	HSSTMaxAge            int
	ContentTypeOptions    string
	FrameOptions          string
	ReferrerPolicy        string
	ContentSecurityPolicy string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	RPM     int
	Burst   int
}

// TLSConfig holds TLS/HTTPS configuration
type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

// Load loads configuration from environment variables with defaults. The
// excluded-directories/extensions and duplicate-size-floor settings come
// from the environment or the package defaults only; Load neither seeds
// nor reads the store's settings table.
func Load() *Config {
	scanCfg := scanner.DefaultConfig()
	if dirs := getStringSliceEnv("SCAN_EXCLUDED_DIRECTORIES", nil); dirs != nil {
		scanCfg.ExcludedDirectories = toSet(dirs)
	}
	if exts := getStringSliceEnv("SCAN_EXCLUDED_EXTENSIONS", nil); exts != nil {
		scanCfg.ExcludedExtensions = toSet(exts)
	}
	scanCfg.ModifiedTolerance = getDurationEnv("SCAN_MODIFIED_TOLERANCE", scanCfg.ModifiedTolerance)

	hasherCfg := hasher.DefaultConfig()
	hasherCfg.SizeThresholdBytes = getInt64Env("HASHER_MIN_DUPLICATE_FILE_SIZE", hasherCfg.SizeThresholdBytes)
	hasherCfg.Concurrency = getIntEnv("HASHER_CONCURRENCY", hasherCfg.Concurrency)
	hasherCfg.BatchSize = getIntEnv("HASHER_BATCH_SIZE", hasherCfg.BatchSize)

	thumbCfg := thumbnails.DefaultConfig()
	thumbCfg.Root = getEnv("THUMBNAIL_CACHE_ROOT", "./thumbcache")
	thumbCfg.BudgetBytes = getInt64Env("THUMBNAIL_CACHE_BUDGET_BYTES", thumbCfg.BudgetBytes)
	thumbCfg.RenderConcurrency = getIntEnv("THUMBNAIL_RENDER_CONCURRENCY", thumbCfg.RenderConcurrency)

	notifierFilters := notifier.DefaultFilters()
	if dirs := getStringSliceEnv("NOTIFIER_EXCLUDED_DIRECTORIES", nil); dirs != nil {
		notifierFilters.ExcludedDirectories = toSet(dirs)
	}
	if suffixes := getStringSliceEnv("NOTIFIER_EXCLUDED_SUFFIXES", nil); suffixes != nil {
		notifierFilters.ExcludedSuffixes = toSet(suffixes)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "127.0.0.1"),
			Port: getEnv("SERVER_PORT", "8787"),
			Mode: getEnv("GIN_MODE", "release"),
		},
		Store: store.Config{
			Path:         getEnv("STORE_PATH", "./volumedex.db"),
			BusyTimeout:  getDurationEnv("STORE_BUSY_TIMEOUT", 5*time.Second),
			CacheSizeKiB: getIntEnv("STORE_CACHE_SIZE_KIB", 10000),
		},
		Scan: scanCfg,
		Orchestrator: orchestrator.Config{
			OptimizeThreshold: getIntEnv("ORCHESTRATOR_OPTIMIZE_THRESHOLD", orchestrator.DefaultConfig().OptimizeThreshold),
		},
		Hasher:    hasherCfg,
		Thumbnail: thumbCfg,
		Watcher: volumes.Config{
			PollInterval: getDurationEnv("WATCHER_POLL_INTERVAL", volumes.DefaultConfig().PollInterval),
		},
		Notifier: notifier.Config{
			DebounceDelay: getDurationEnv("NOTIFIER_DEBOUNCE_DELAY", notifier.DefaultConfig().DebounceDelay),
		},
		NotifierRules: notifierFilters,
		Notifications: NotificationsConfig{
			Enabled:     getBoolEnv("NOTIFICATIONS_ENABLED", true),
			MinInterval: getDurationEnv("NOTIFICATIONS_MIN_INTERVAL", 30*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: getStringSliceEnv("ALLOW_ORIGINS", []string{"http://localhost:3000"}),
		},
		Security: SecurityConfig{
			HideServerHeader:      getBoolEnv("SECURITY_HIDE_SERVER", true),
			EnableHSTS:            getBoolEnv("SECURITY_ENABLE_HSTS", false),
			HSSTMaxAge:            getIntEnv("SECURITY_HSTS_MAX_AGE", 31536000), // 1 year
			ContentTypeOptions:    getEnv("SECURITY_CONTENT_TYPE_OPTIONS", "nosniff"),
			FrameOptions:          getEnv("SECURITY_FRAME_OPTIONS", "SAMEORIGIN"),
			ReferrerPolicy:        getEnv("SECURITY_REFERRER_POLICY", "no-referrer"),
			ContentSecurityPolicy: getEnv("SECURITY_CSP", "default-src 'none'; frame-ancestors 'self';"),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("RATE_LIMIT_ENABLED", true),
			RPM:     getIntEnv("RATE_LIMIT_RPM", 60),
			Burst:   getIntEnv("RATE_LIMIT_BURST", 30),
		},
		TLS: func() TLSConfig {
			certFile := getEnv("TLS_CERT_FILE", "")
			keyFile := getEnv("TLS_KEY_FILE", "")
			enabled := certFile != "" && keyFile != ""
			return TLSConfig{
				Enabled:  enabled,
				CertFile: certFile,
				KeyFile:  keyFile,
			}
		}(),
	}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets duration environment variable with default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if duration parsing fails
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

// getStringSliceEnv gets comma-separated string environment variable as slice.
// Returns defaultValue (which may be nil) when the variable is unset, so
// callers can distinguish "not set" from "set to empty".
func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// getBoolEnv gets boolean environment variable with default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getIntEnv gets integer environment variable with default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getInt64Env gets int64 environment variable with default value
func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

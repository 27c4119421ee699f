package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Douban    DoubanConfig
	Scanner   ScannerConfig
	Library   LibraryConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// DoubanConfig controls the site session and the challenge bypass loop.
type DoubanConfig struct {
	// SearchBaseURL is the host serving the search endpoint.
	SearchBaseURL string // default: "https://www.douban.com"

	// MovieBaseURL is the host serving subject detail pages.
	MovieBaseURL string // default: "https://movie.douban.com"

	// UserAgent is the fabricated browser identity, fixed per session.
	UserAgent string

	// RequestTimeout is the per-request deadline. The caller's context
	// additionally bounds the whole query.
	RequestTimeout time.Duration // default: 10s

	// MaxChallengeCycles bounds how many times a proof is computed and
	// resubmitted before the query gives up.
	MaxChallengeCycles int // default: 3

	// MinChallengeDelay / MaxChallengeDelay bound the random pause before
	// each proof resubmission.
	MinChallengeDelay time.Duration // default: 500ms
	MaxChallengeDelay time.Duration // default: 1500ms
}

// ScannerConfig controls the local video filename scanner.
type ScannerConfig struct {
	// Extensions lists the video file extensions to pick up.
	Extensions []string

	// CleanupPatterns are regexes removed from filenames before the movie
	// name is derived. Combined into one master pattern at build time.
	CleanupPatterns []string
}

// LibraryConfig controls the folder sort worker pool.
type LibraryConfig struct {
	// Workers is the max number of concurrent lookups per sort job.
	Workers int // default: 3

	// RequestsPerSecond / Burst bound the overall request rate against the
	// site across all workers.
	RequestsPerSecond float64 // default: 1
	Burst             int     // default: 1
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the search-record cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached records.
	MaxEntries int // default: 1000
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// defaultUserAgent matches a plain desktop Chrome; stable across requests of
// one session by construction since it is process-wide configuration.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// defaultExtensions are the video containers worth scanning.
var defaultExtensions = []string{
	".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".m4v", ".ts", ".webm", ".rmvb",
}

// defaultCleanupPatterns strip release-scene noise from filenames: bracketed
// tags, resolutions, sources, codecs, audio specs and language markers.
var defaultCleanupPatterns = []string{
	`\[[^\]]*\]`,
	`【[^】]*】`,
	`\([^)]*\)`,
	`(?i)\bwww\.[a-z0-9-]+\.[a-z]{2,6}\b`,
	`(?i)\b(2160p|1080p|720p|480p|4k|8k)\b`,
	`(?i)\bhd\d{3,4}p?\b`,
	`(?i)\b(blu-?ray|bdrip|brrip|web-?dl|webrip|hdtv|dvdrip|dvdscr|hdrip|remux|uhd)\b`,
	`(?i)\b(x264|x265|h\.?264|h\.?265|hevc|avc|xvid|divx|av1)\b`,
	`(?i)\b(aac|ac3|dts(-hd)?|dd[p+]?5\.1|truehd|atmos|flac)\b`,
	`(?i)\b(proper|repack|extended|unrated|remastered|limited|imax|hdr10?|dovi|10bit)\b`,
	`(?i)\b(chs|cht|chi|eng|jpn|kor)\b`,
	`中英双字|中字|国语|粤语|双语`,
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("CINESORT_HOST", "0.0.0.0"),
			Port: envIntOr("CINESORT_PORT", 8080),
			Mode: envOr("CINESORT_MODE", "release"),
		},
		Douban: DoubanConfig{
			SearchBaseURL:      envOr("CINESORT_SEARCH_BASE_URL", "https://www.douban.com"),
			MovieBaseURL:       envOr("CINESORT_MOVIE_BASE_URL", "https://movie.douban.com"),
			UserAgent:          envOr("CINESORT_USER_AGENT", defaultUserAgent),
			RequestTimeout:     envDurationOr("CINESORT_REQUEST_TIMEOUT", 10*time.Second),
			MaxChallengeCycles: envIntOr("CINESORT_MAX_CHALLENGE_CYCLES", 3),
			MinChallengeDelay:  envDurationOr("CINESORT_MIN_CHALLENGE_DELAY", 500*time.Millisecond),
			MaxChallengeDelay:  envDurationOr("CINESORT_MAX_CHALLENGE_DELAY", 1500*time.Millisecond),
		},
		Scanner: ScannerConfig{
			Extensions:      envSliceOr("CINESORT_EXTENSIONS", defaultExtensions),
			CleanupPatterns: defaultCleanupPatterns,
		},
		Library: LibraryConfig{
			Workers:           envIntOr("CINESORT_SORT_WORKERS", 3),
			RequestsPerSecond: envFloatOr("CINESORT_SITE_RPS", 1.0),
			Burst:             envIntOr("CINESORT_SITE_BURST", 1),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("CINESORT_AUTH_ENABLED", true),
			APIKeys: envSliceOr("CINESORT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("CINESORT_RATE_RPS", 5.0),
			Burst:             envIntOr("CINESORT_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("CINESORT_CACHE_MAX_ENTRIES", 1000),
		},
		Log: LogConfig{
			Level:  envOr("CINESORT_LOG_LEVEL", "info"),
			Format: envOr("CINESORT_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}

// Package config loads the environment-variable surface (§6) the matching
// core and its CLI are driven by, in the same struct-per-concern shape the
// teacher's internal/config/providers.go uses for its YAML-sourced config.
package config

import (
	"os"
	"strconv"
	"strings"
)

// KalshiConfig bounds the exchange-venue adapter's ingestion behavior.
type KalshiConfig struct {
	BaseURL             string
	UseDemo             bool
	MarketsLimit        int
	MaxPages            int
	Mode                string
	SeriesTickers       []string
	SeriesCategories    []string
	EventsStatus        []string
	WithNestedMarkets   bool
	GlobalCapMarkets    int
	StuckThresholdMin   int
	MaxFailuresInRow    int
}

// EligibilityConfig bounds the eligibility predicate's window (§4.9).
type EligibilityConfig struct {
	GraceMinutes               int
	ForwardHoursCryptoDaily    int
	LookbackHoursCryptoDaily   int
	LookbackHoursMacro         int
}

// InfraConfig bounds the ambient adapters cmd/matchengine wires up: the
// postgres DSN, the redis watchlist cache, and the read-only HTTP surface.
// Not part of §6's env var table (that table only covers the domain
// surface); these are the connection strings a deployed process needs.
type InfraConfig struct {
	DatabaseURL         string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	WatchlistTTL        int // seconds
	HTTPHost            string
	HTTPPort            int
	LogLevel            string
	ProvidersConfigPath string // optional YAML path, see ProvidersConfig
	TaxonomyMaintenanceURL string // optional external collaborator endpoint, see ops step 2
}

// Config is the complete environment-derived configuration for one process.
type Config struct {
	Kalshi      KalshiConfig
	Eligibility EligibilityConfig
	Infra       InfraConfig
}

// Load reads every recognized environment variable (§6), applying the
// documented defaults for anything unset or unparsable.
func Load() Config {
	return Config{
		Kalshi: KalshiConfig{
			BaseURL:           getString("KALSHI_BASE_URL", "https://trading-api.kalshi.com"),
			UseDemo:           getBool("KALSHI_USE_DEMO", false),
			MarketsLimit:      clampInt(getInt("KALSHI_MARKETS_LIMIT", 100), 1, 1000),
			MaxPages:          getInt("KALSHI_MAX_PAGES", 0),
			Mode:              getString("KALSHI_MODE", "markets"),
			SeriesTickers:     getList("KALSHI_SERIES_TICKERS"),
			SeriesCategories:  lower(getList("KALSHI_SERIES_CATEGORIES")),
			EventsStatus:      getList("KALSHI_EVENTS_STATUS"),
			WithNestedMarkets: getBool("KALSHI_WITH_NESTED_MARKETS", false),
			GlobalCapMarkets:  getInt("KALSHI_GLOBAL_CAP_MARKETS", 0),
			StuckThresholdMin: getInt("KALSHI_STUCK_THRESHOLD_MIN", 30),
			MaxFailuresInRow:  getInt("KALSHI_MAX_FAILURES_IN_ROW", 5),
		},
		Eligibility: EligibilityConfig{
			GraceMinutes:             getInt("ELIGIBILITY_GRACE_MINUTES", 60),
			ForwardHoursCryptoDaily:  getInt("ELIGIBILITY_FORWARD_HOURS_CRYPTO_DAILY", 72),
			LookbackHoursCryptoDaily: getInt("ELIGIBILITY_LOOKBACK_HOURS_CRYPTO_DAILY", 168),
			LookbackHoursMacro:       getInt("ELIGIBILITY_LOOKBACK_HOURS_MACRO", 720),
		},
		Infra: InfraConfig{
			DatabaseURL:         getString("DATABASE_URL", "postgres://localhost:5432/venuematch?sslmode=disable"),
			RedisAddr:           getString("REDIS_ADDR", "localhost:6379"),
			RedisPassword:       getString("REDIS_PASSWORD", ""),
			RedisDB:             getInt("REDIS_DB", 0),
			WatchlistTTL:        getInt("WATCHLIST_TTL_SECONDS", 300),
			HTTPHost:            getString("HTTP_HOST", "127.0.0.1"),
			HTTPPort:            getInt("HTTP_PORT", 9090),
			LogLevel:            getString("LOG_LEVEL", "info"),
			ProvidersConfigPath: getString("PROVIDERS_CONFIG_PATH", ""),
			TaxonomyMaintenanceURL: getString("TAXONOMY_MAINTENANCE_URL", ""),
		},
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lower(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = strings.ToLower(s)
	}
	return out
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

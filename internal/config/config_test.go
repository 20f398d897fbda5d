package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("KALSHI_MARKETS_LIMIT")
	os.Unsetenv("ELIGIBILITY_GRACE_MINUTES")
	cfg := Load()
	assert.Equal(t, 100, cfg.Kalshi.MarketsLimit)
	assert.Equal(t, 60, cfg.Eligibility.GraceMinutes)
	assert.Equal(t, 72, cfg.Eligibility.ForwardHoursCryptoDaily)
}

func TestLoad_MarketsLimitCapped(t *testing.T) {
	os.Setenv("KALSHI_MARKETS_LIMIT", "5000")
	defer os.Unsetenv("KALSHI_MARKETS_LIMIT")
	cfg := Load()
	assert.Equal(t, 1000, cfg.Kalshi.MarketsLimit)
}

func TestLoad_SeriesCategoriesLowered(t *testing.T) {
	os.Setenv("KALSHI_SERIES_CATEGORIES", "Crypto, POLITICS")
	defer os.Unsetenv("KALSHI_SERIES_CATEGORIES")
	cfg := Load()
	assert.Equal(t, []string{"crypto", "politics"}, cfg.Kalshi.SeriesCategories)
}

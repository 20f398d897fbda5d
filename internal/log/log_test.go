package log

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetup_ParsesValidLevel(t *testing.T) {
	logger := Setup("debug")
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %v", logger.GetLevel())
	}
}

func TestSetup_FallsBackToInfoOnInvalidLevel(t *testing.T) {
	logger := Setup("not-a-level")
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level fallback, got %v", logger.GetLevel())
	}
}

func TestSetup_SetsRFC3339TimeFormat(t *testing.T) {
	Setup("info")
	if zerolog.TimeFieldFormat != "2006-01-02T15:04:05Z07:00" {
		t.Fatalf("expected RFC3339 time format, got %q", zerolog.TimeFieldFormat)
	}
}

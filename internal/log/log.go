// Package log configures the process-wide zerolog logger, in the teacher's
// cmd/cryptorun/main.go idiom: a human-readable console writer on a TTY,
// structured JSON otherwise.
package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup configures zerolog.TimeFieldFormat and returns a logger at level,
// writing ConsoleWriter output to stderr when stderr is a terminal and
// plain JSON lines otherwise.
func Setup(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var out zerolog.ConsoleWriter
	var logger zerolog.Logger
	if isTerminal(os.Stderr) {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

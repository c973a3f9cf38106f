// Package logging sets up the kiosk's structured logger. Output goes to
// stderr through tint; color is enabled only on an interactive terminal so
// journald captures stay clean.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Setup installs the process-wide logger. level is debug, info, warn or
// error; unknown values mean info. station tags every record so aggregated
// logs from a multi-kiosk store stay attributable.
func Setup(level, station string) {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      ParseLevel(level),
		TimeFormat: time.Kitchen,
		AddSource:  true,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	logger := slog.New(handler)
	if station != "" {
		logger = logger.With("station", station)
	}
	slog.SetDefault(logger)
}

// ParseLevel maps a configured level name to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

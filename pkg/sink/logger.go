// Package sink holds the host side consumers of sensor events: logging and metrics.
package sink

import (
	"io"
	"os"
	"time"

	"github.com/Krajiyah/ble-sensors/pkg/config"
	"github.com/Krajiyah/ble-sensors/pkg/models"
	"github.com/rs/zerolog"
)

// NewLogger builds a console or json logger at the configured level
func NewLogger(cfg config.Config) zerolog.Logger {
	return newLogger(os.Stderr, cfg)
}

func newLogger(w io.Writer, cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.LogFormat != config.FormatJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// LogListeners writes every event as one "<Kind> = <event>" line
func LogListeners(logger zerolog.Logger) models.Listeners {
	h := func(e models.Event) {
		logger.Info().Msgf("%s = %s", e.Kind(), e)
	}
	return models.Listeners{StatusCallback: h, ScanningCallback: h, DataCallback: h}
}

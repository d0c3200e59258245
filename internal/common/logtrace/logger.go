// Package logtrace provides logging and call tracing utilities for spore.
// It integrates with zerolog for structured logging and attaches a call id
// to every client invocation.
package logtrace

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes the global logger with Unix timestamp format.
// level is a zerolog level name ("debug", "info", ...); an unknown or empty
// level falls back to info. When console is set the output is rendered for
// humans instead of JSON.
func InitLogger(level string, console bool) {
	initLogger(os.Stderr, level, console)
}

func initLogger(w io.Writer, level string, console bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if console {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

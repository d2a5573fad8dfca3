// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
)

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "DISABLED", "OFF":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Setup replaces the root logger. json selects line-delimited JSON output
// instead of the console format.
func Setup(level string, out io.Writer, json bool) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	w := out
	if !json {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()

	mu.Lock()
	logger = l
	mu.Unlock()
	return l
}

// Logger returns the root logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// For returns a child logger tagged with a component name.
func For(component string) zerolog.Logger {
	return Logger().With().Str("component", component).Logger()
}

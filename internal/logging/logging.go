// Package logging builds the zerolog loggers used across guildcore.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger construction. The zero value logs info and above
// as JSON to stderr.
type Options struct {
	// Debug forces debug level regardless of Level.
	Debug bool
	// Level is one of debug|info|warn|error|off. Empty means info.
	Level string
	// Pretty switches to the human-readable console writer.
	Pretty bool
	Writer io.Writer
}

// ParseLevel maps a textual level to zerolog. Unknown values map to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error", "err":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New returns a logger configured from opts.
func New(opts Options) zerolog.Logger {
	lvl := ParseLevel(opts.Level)
	if opts.Debug {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(writer(opts)).Level(lvl).With().Timestamp().Logger()
}

func writer(opts Options) io.Writer {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return w
}

// Component returns a child logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

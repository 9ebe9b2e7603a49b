package logging

import (
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Switch gates log output at a level that can be changed while running.
type Switch struct {
	base  zerolog.Level
	level atomic.Int32
}

// NewSwitch returns a Switch at base.
func NewSwitch(base zerolog.Level) *Switch {
	s := &Switch{base: base}
	s.level.Store(int32(base))
	return s
}

func (s *Switch) Level() zerolog.Level { return zerolog.Level(s.level.Load()) }

// SetDebug lowers the gate to debug, or restores the base level.
func (s *Switch) SetDebug(on bool) {
	if on {
		s.level.Store(int32(zerolog.DebugLevel))
		return
	}
	s.level.Store(int32(s.base))
}

// Debug reports whether debug lines currently pass.
func (s *Switch) Debug() bool { return s.enabled(zerolog.DebugLevel) }

func (s *Switch) enabled(l zerolog.Level) bool {
	cur := s.Level()
	if cur == zerolog.Disabled {
		return false
	}
	return l == zerolog.NoLevel || l >= cur
}

type gateWriter struct {
	w io.Writer
	s *Switch
}

func (g gateWriter) Write(p []byte) (int, error) { return g.w.Write(p) }

func (g gateWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if !g.s.enabled(l) {
		return len(p), nil
	}
	return g.w.Write(p)
}

// NewSwitched is New with the level held by the returned Switch instead of
// the logger, so SetDebug affects every child logger.
func NewSwitched(opts Options) (zerolog.Logger, *Switch) {
	base := ParseLevel(opts.Level)
	if opts.Debug {
		base = zerolog.DebugLevel
	}
	sw := NewSwitch(base)
	w := writer(opts)
	return zerolog.New(gateWriter{w: w, s: sw}).Level(zerolog.DebugLevel).With().Timestamp().Logger(), sw
}

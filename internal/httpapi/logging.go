package httpapi

import (
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is nil until SetLogger; AccessLog then falls back to the std logger.
var zlog *zerolog.Logger

// SetLogger installs the structured logger for the admin HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// LogLevel selects how much AccessLog records for a request.
type LogLevel int32

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

var levelNames = map[string]LogLevel{
	"":      LevelOff,
	"off":   LevelOff,
	"error": LevelError,
	"info":  LevelInfo,
	"debug": LevelDebug,
	"1":     LevelDebug,
}

// parseLevel maps a level name to a LogLevel. Unknown names mean info.
func parseLevel(s string) LogLevel {
	if lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return lvl
	}
	return LevelInfo
}

// accessLevel is the level for requests without an override. It starts at
// LevelError and may be changed while requests are being served.
var accessLevel atomic.Int32

func init() { accessLevel.Store(int32(LevelError)) }

// SetAccessLogLevel sets the level used when a request carries no
// ?log= or X-Log-Level override.
func SetAccessLogLevel(s string) { accessLevel.Store(int32(parseLevel(s))) }

func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return LogLevel(accessLevel.Load())
}

// AccessLog logs each request at the level chosen by requestLogLevel.
// LevelError logs 5xx responses only.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lvl := requestLogLevel(r)
		if lvl == LevelOff {
			next.ServeHTTP(w, r)
			return
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if lvl == LevelError && status < 500 {
			return
		}
		dur := time.Since(start)
		if zlog == nil {
			log.Printf("%s %s status=%d dur=%s", r.Method, r.URL.Path, status, dur)
			return
		}
		z := zlog.Info()
		if status >= 500 {
			z = zlog.Error()
		}
		z = z.Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Dur("dur", dur)
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		if lvl >= LevelDebug {
			z = z.Str("remote", r.RemoteAddr).Int("bytes", ww.BytesWritten())
		}
		z.Msg("request")
	})
}

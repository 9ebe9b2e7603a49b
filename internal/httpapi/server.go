package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"guildcore/pkg/types"
)

// Service defines the methods required by the admin API.
type Service interface {
	Status() types.StatusResponse
	Ready() bool
	// CloseSession closes user's open panel. It may complete after return.
	CloseSession(ctx context.Context, user types.UserID) error
	CloseAllSessions(ctx context.Context)
	SetDebug(enabled bool)
}

// DebugRequest toggles debug logging.
type DebugRequest struct {
	// example: true
	Enabled *bool `json:"enabled" example:"true"`
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	r.Use(MetricsMiddleware)
	r.Use(AccessLog)
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	h := &handlers{svc: svc}
	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)
	r.Get("/status", h.status)
	r.Get("/sessions", h.sessions)
	r.Post("/sessions/close", h.closeAll)
	r.Post("/sessions/{user}/close", h.closeSession)
	r.Put("/debug", h.setDebug)

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)
	return r
}

type handlers struct {
	svc Service
}

// healthz godoc
// @Summary  Liveness probe
// @Tags     health
// @Produce  plain
// @Success  200  {string}  string  "ok"
// @Router   /healthz [get]
func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readyz godoc
// @Summary  Readiness probe
// @Tags     health
// @Produce  plain
// @Success  200  {string}  string  "ready"
// @Failure  503  {string}  string  "starting"
// @Router   /readyz [get]
func (h *handlers) readyz(w http.ResponseWriter, r *http.Request) {
	if h.svc.Ready() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("starting"))
}

// status godoc
// @Summary  Runtime status
// @Tags     status
// @Produce  json
// @Success  200  {object}  types.StatusResponse
// @Router   /status [get]
func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// sessions godoc
// @Summary  Live panel sessions
// @Tags     sessions
// @Produce  json
// @Success  200  {array}  types.SessionStatus
// @Router   /sessions [get]
func (h *handlers) sessions(w http.ResponseWriter, r *http.Request) {
	s := h.svc.Status().Sessions
	if s == nil {
		s = []types.SessionStatus{}
	}
	writeJSON(w, http.StatusOK, s)
}

// closeSession godoc
// @Summary  Close a user's panel
// @Tags     sessions
// @Produce  json
// @Param    user  path  string  true  "user id"
// @Success  202
// @Failure  400  {object}  types.ErrorResponse
// @Failure  404  {object}  types.ErrorResponse
// @Router   /sessions/{user}/close [post]
func (h *handlers) closeSession(w http.ResponseWriter, r *http.Request) {
	user, err := types.ParseUserID(chi.URLParam(r, "user"))
	if err != nil {
		incRejected("bad_user")
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Join server base context with request context so shutdown cancels work too.
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	if err := h.svc.CloseSession(ctx, user); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// closeAll godoc
// @Summary  Close every panel session
// @Tags     sessions
// @Success  204
// @Router   /sessions/close [post]
func (h *handlers) closeAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	h.svc.CloseAllSessions(ctx)
	w.WriteHeader(http.StatusNoContent)
}

// setDebug godoc
// @Summary  Toggle debug logging
// @Tags     logging
// @Accept   json
// @Param    body  body  DebugRequest  true  "toggle"
// @Success  204
// @Failure  400  {object}  types.ErrorResponse
// @Failure  415  {object}  types.ErrorResponse
// @Router   /debug [put]
func (h *handlers) setDebug(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		incRejected("content_type")
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req DebugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		incRejected("invalid_json")
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Enabled == nil {
		incRejected("missing_field")
		writeJSONError(w, http.StatusBadRequest, "enabled is required")
		return
	}
	h.svc.SetDebug(*req.Enabled)
	if zlog != nil {
		zlog.Info().Bool("debug", *req.Enabled).Msg("debug logging toggled")
	}
	w.WriteHeader(http.StatusNoContent)
}

// Package app assembles the guildcore runtime: the scheduler, event bus,
// session manager and service registry, plus the admin HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"guildcore/internal/config"
	"guildcore/internal/eventbus"
	"guildcore/internal/host"
	"guildcore/internal/httpapi"
	"guildcore/internal/logging"
	"guildcore/internal/registry"
	"guildcore/internal/scheduler"
	"guildcore/internal/session"
	"guildcore/pkg/types"
)

// Service ids in the registry.
const (
	ServiceConfig    = "config"
	ServiceHost      = "host"
	ServiceScheduler = "scheduler"
	ServiceEventBus  = "eventbus"
	ServiceSessions  = "sessions"
)

// Options configures New.
type Options struct {
	Config config.Config
	Host   session.Host
	Logger zerolog.Logger
	// Levels backs SetDebug. Without it the debug toggle only affects the
	// access log.
	Levels *logging.Switch
	// Listener serves the admin API instead of listening on Config.AdminAddr.
	Listener net.Listener
	// DisableAdmin skips the admin HTTP server entirely.
	DisableAdmin bool
}

// App owns every runtime component. The exported fields are safe to use
// after New returns.
type App struct {
	Scheduler *scheduler.Scheduler
	Bus       *eventbus.Bus
	Sessions  *session.Manager
	Registry  *registry.Registry

	cfg    config.Config
	log    zerolog.Logger
	levels *logging.Switch
	hostSt types.HostStatus

	admin *http.Server
	ln    net.Listener

	ready    atomic.Bool
	stopOnce sync.Once
	stopErr  error
}

// New builds the runtime without starting it.
func New(opts Options) (*App, error) {
	if opts.Host == nil {
		return nil, errors.New("app: host is required")
	}
	cfg := opts.Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	root := opts.Logger
	a := &App{
		cfg:    cfg,
		log:    logging.Component(root, "app"),
		levels: opts.Levels,
		ln:     opts.Listener,
	}
	a.Scheduler = scheduler.New(scheduler.Config{
		Tick:        cfg.Tick(),
		RegionShift: cfg.RegionShift,
		Logger:      logging.Component(root, ServiceScheduler),
	})
	a.Bus = eventbus.New(eventbus.Config{Logger: logging.Component(root, ServiceEventBus)})
	a.Sessions = session.New(session.Config{
		Host:           opts.Host,
		Scheduler:      a.Scheduler,
		Bus:            a.Bus,
		Logger:         logging.Component(root, "session"),
		Debounce:       cfg.Debounce(),
		CancelKeywords: cfg.CancelKeywords,
	})
	a.Registry = registry.New(registry.Config{Logger: logging.Component(root, "registry")})

	// Stopped in reverse: sessions close first, while the bus and the
	// scheduler still deliver.
	a.Registry.Register(ServiceConfig, cfg)
	a.Registry.Register(ServiceHost, opts.Host)
	a.Registry.RegisterWithLifecycle(ServiceScheduler, a.Scheduler, a.Scheduler)
	a.Registry.RegisterWithLifecycle(ServiceEventBus, a.Bus, registry.LifecycleFuncs{
		StopFunc: a.Bus.Close,
	})
	a.Registry.RegisterWithLifecycle(ServiceSessions, a.Sessions, a.Sessions)

	info := host.Describe(opts.Host)
	a.hostSt = types.HostStatus{
		Type:      info.Type,
		Version:   info.Version,
		Supported: host.SupportsAPIVersion(info.Version, cfg.MinHostVersion),
	}

	if !opts.DisableAdmin {
		httpapi.SetLogger(logging.Component(root, "httpapi"))
		httpapi.SetCORSOptions(len(cfg.CORSOrigins) > 0, cfg.CORSOrigins,
			[]string{http.MethodGet, http.MethodPost, http.MethodPut},
			[]string{"Content-Type", "X-Log-Level"})
		if cfg.Debug {
			httpapi.SetAccessLogLevel("info")
		}
		a.admin = &http.Server{
			Addr:              cfg.AdminAddr,
			Handler:           httpapi.NewMux(a),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return a, nil
}

// Config returns the effective configuration.
func (a *App) Config() config.Config { return a.cfg }

// Start starts every registered service and marks the app ready. Service
// failures are logged by the registry and visible in Status; Start only
// fails when ctx ends first.
func (a *App) Start(ctx context.Context) error {
	select {
	case <-a.Registry.StartAll(ctx):
	case <-ctx.Done():
		return fmt.Errorf("start services: %w", ctx.Err())
	}
	if !a.hostSt.Supported {
		a.log.Warn().
			Str("host_type", a.hostSt.Type).
			Str("host_version", a.hostSt.Version).
			Str("required", a.cfg.MinHostVersion).
			Msg("host is older than the minimum supported version")
	}
	a.ready.Store(true)
	a.log.Info().Msg("guildcore ready")
	return nil
}

// Run starts the services, serves the admin API and blocks until ctx is
// done or the server fails, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	if a.admin != nil {
		ln := a.ln
		if ln == nil {
			var err error
			if ln, err = net.Listen("tcp", a.cfg.AdminAddr); err != nil {
				_ = a.Shutdown()
				return fmt.Errorf("admin listen: %w", err)
			}
		}
		httpapi.SetBaseContext(gctx)
		g.Go(func() error {
			a.log.Info().Str("addr", ln.Addr().String()).Msg("admin API listening")
			if err := a.admin.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return a.Shutdown()
	})
	return g.Wait()
}

// Shutdown stops the admin server and every service within the configured
// shutdown timeout. It is safe to call more than once.
func (a *App) Shutdown() error {
	a.stopOnce.Do(func() {
		a.ready.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
		defer cancel()
		if a.admin != nil {
			if err := a.admin.Shutdown(ctx); err != nil {
				a.stopErr = fmt.Errorf("admin shutdown: %w", err)
			}
		}
		a.Registry.Shutdown(ctx)
		a.log.Info().Msg("guildcore stopped")
	})
	return a.stopErr
}

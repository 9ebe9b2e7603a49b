// Package registry is the process-wide service registry. Services are stored
// by id, optionally with a Lifecycle that StartAll and StopAll drive as an
// ordered batch.
package registry

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"

	"guildcore/pkg/types"
)

// Lifecycle is implemented by long-lived subsystems.
type Lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// LifecycleFuncs adapts a pair of functions to Lifecycle. Nil funcs are no-ops.
type LifecycleFuncs struct {
	StartFunc func(ctx context.Context) error
	StopFunc  func(ctx context.Context) error
}

func (f LifecycleFuncs) Start(ctx context.Context) error {
	if f.StartFunc == nil {
		return nil
	}
	return f.StartFunc(ctx)
}

func (f LifecycleFuncs) Stop(ctx context.Context) error {
	if f.StopFunc == nil {
		return nil
	}
	return f.StopFunc(ctx)
}

// State is the last lifecycle outcome of a service.
type State string

const (
	StateRegistered  State = "registered"
	StateStarted     State = "started"
	StateStartFailed State = "start_failed"
	StateStopped     State = "stopped"
	StateStopFailed  State = "stop_failed"
)

// Config holds Registry dependencies.
type Config struct {
	Logger zerolog.Logger
}

type entry struct {
	id        string
	instance  any
	lifecycle Lifecycle
	state     State
	err       error
}

// Registry is safe for concurrent use.
type Registry struct {
	log zerolog.Logger

	mu      sync.RWMutex
	order   []string
	entries map[string]*entry
}

// New constructs an empty Registry.
func New(cfg Config) *Registry {
	return &Registry{log: cfg.Logger, entries: make(map[string]*entry)}
}

// Register stores instance under id, replacing any previous registration
// including its lifecycle. Replacement keeps the original position in the
// start order.
func (r *Registry) Register(id string, instance any) {
	r.put(id, instance, nil)
	r.log.Info().Str("service", id).Msg("service registered")
}

// RegisterWithLifecycle is Register plus a lifecycle driven by StartAll/StopAll.
func (r *Registry) RegisterWithLifecycle(id string, instance any, lc Lifecycle) {
	r.put(id, instance, lc)
	r.log.Info().Str("service", id).Bool("lifecycle", lc != nil).Msg("service registered")
}

func (r *Registry) put(id string, instance any, lc Lifecycle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		r.order = append(r.order, id)
	}
	r.entries[id] = &entry{id: id, instance: instance, lifecycle: lc, state: StateRegistered}
}

// Get returns the instance registered under id.
func (r *Registry) Get(id string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, ErrServiceNotFound(id)
	}
	return e.instance, nil
}

// Get returns the instance registered under id as a T. A registration of a
// different type is reported as not found.
func Get[T any](r *Registry, id string) (T, error) {
	var zero T
	v, err := r.Get(id)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, serviceNotFoundError{id: id, reason: fmt.Sprintf("registered as %T", v)}
	}
	return t, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// IDs returns registered ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// StartAll starts every lifecycle in registration order on a background
// goroutine. A failing service is logged and marked start_failed; the rest
// still start. The returned channel closes when the batch is done.
func (r *Registry) StartAll(ctx context.Context) <-chan struct{} {
	batch := r.lifecycles(false)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.log.Info().Int("count", len(batch)).Msg("starting services")
		for _, e := range batch {
			err := safeCall(func() error { return e.lifecycle.Start(ctx) })
			r.record(e, err, StateStarted, StateStartFailed, "start")
		}
	}()
	return done
}

// StopAll stops every lifecycle in reverse registration order on a
// background goroutine, with the same failure containment as StartAll.
func (r *Registry) StopAll(ctx context.Context) <-chan struct{} {
	batch := r.lifecycles(true)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.log.Info().Int("count", len(batch)).Msg("stopping services")
		for _, e := range batch {
			err := safeCall(func() error { return e.lifecycle.Stop(ctx) })
			r.record(e, err, StateStopped, StateStopFailed, "stop")
		}
	}()
	return done
}

// Shutdown waits for StopAll, bounded by ctx, then clears the registry.
// Failures are logged, never returned.
func (r *Registry) Shutdown(ctx context.Context) {
	select {
	case <-r.StopAll(ctx):
	case <-ctx.Done():
		r.log.Error().Err(ctx.Err()).Msg("service shutdown did not finish in time")
	}
	r.mu.Lock()
	r.order = nil
	r.entries = make(map[string]*entry)
	r.mu.Unlock()
	r.log.Info().Msg("service registry shut down")
}

// Status reports every service in registration order.
func (r *Registry) Status() []types.ServiceStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.ServiceStatus, 0, len(r.order))
	for _, id := range r.order {
		e := r.entries[id]
		st := types.ServiceStatus{ID: id, Lifecycle: e.lifecycle != nil, State: string(e.state)}
		if e.err != nil {
			st.Error = e.err.Error()
		}
		out = append(out, st)
	}
	return out
}

func (r *Registry) lifecycles(reverse bool) []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entry, 0, len(r.order))
	for _, id := range r.order {
		if e := r.entries[id]; e.lifecycle != nil {
			out = append(out, e)
		}
	}
	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func (r *Registry) record(e *entry, err error, ok, failed State, op string) {
	r.mu.Lock()
	if err != nil {
		e.state, e.err = failed, err
	} else {
		e.state, e.err = ok, nil
	}
	r.mu.Unlock()
	if err != nil {
		lifecycleTotal.WithLabelValues(op, "error").Inc()
		r.log.Error().Err(err).Str("service", e.id).Msgf("service %s failed", op)
		return
	}
	lifecycleTotal.WithLabelValues(op, "ok").Inc()
	r.log.Info().Str("service", e.id).Msgf("service %s ok", op)
}

// safeCall converts a panic in fn into an error.
func safeCall(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
		}
	}()
	return fn()
}

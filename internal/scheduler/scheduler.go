package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"guildcore/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultTick        = 50 * time.Millisecond
	defaultRegionShift = 3
)

// Task is a unit of work run on a scope owner. ctx carries the ownership
// marker for the scope the task was submitted to.
type Task func(ctx context.Context)

// Dispatcher is the subset of Scheduler that owner-guarded components use.
type Dispatcher interface {
	RunOnOwner(scope Scope, task Task)
	IsOwner(ctx context.Context, scope Scope) bool
}

// Config holds Scheduler tunables.
type Config struct {
	// Tick is the length of one game tick; delays and periods are in ticks.
	Tick time.Duration
	// RegionShift is the log2 edge length, in chunks, of a region.
	RegionShift int
	Logger      zerolog.Logger
}

// Scheduler serializes tasks per scope. See the package documentation.
type Scheduler struct {
	tick        time.Duration
	regionShift int
	log         zerolog.Logger

	mu      sync.Mutex
	loops   map[Scope]*loop
	running bool
	stopped bool
	stopCh  chan struct{}

	wg sync.WaitGroup
}

type loop struct {
	scope Scope
	queue []Task // guarded by Scheduler.mu
}

// ownership marks a context as belonging to the task currently running for
// scope. active is cleared when the task returns.
type ownership struct {
	scope  Scope
	active atomic.Bool
}

type ownerKey struct{}

// ErrStopped is returned by Start after Stop.
var ErrStopped = errors.New("scheduler: stopped")

// New constructs a Scheduler. It does not run queued work until Start.
func New(cfg Config) *Scheduler {
	s := &Scheduler{
		tick:        cfg.Tick,
		regionShift: cfg.RegionShift,
		log:         cfg.Logger,
		loops:       make(map[Scope]*loop),
		stopCh:      make(chan struct{}),
	}
	if s.tick <= 0 {
		s.tick = defaultTick
	}
	if cfg.RegionShift <= 0 {
		s.regionShift = defaultRegionShift
	}
	return s
}

// Start begins queued execution. Until Start, submissions run inline.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	s.running = true
	s.log.Debug().Dur("tick", s.tick).Int("region_shift", s.regionShift).Msg("scheduler started")
	return nil
}

// Stop switches the scheduler to inline execution, ends periodic tasks and
// waits for already queued and async work to finish or ctx to expire.
// Queued tasks are still executed; nothing is dropped.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.log.Debug().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// Running reports whether submissions are currently queued rather than run inline.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Region returns the scope of the region containing loc using the configured shift.
func (s *Scheduler) Region(loc types.Location) Scope { return RegionOf(loc, s.regionShift) }

// TickDuration returns the configured tick length.
func (s *Scheduler) TickDuration() time.Duration { return s.tick }

// ActiveLoops returns the number of scopes with a goroutine draining their queue.
func (s *Scheduler) ActiveLoops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loops)
}

// RunOnOwner schedules task to run exactly once on the owner of scope.
func (s *Scheduler) RunOnOwner(scope Scope, task Task) {
	s.submit(scope, task, "queued")
}

// IsOwner reports whether ctx belongs to a task currently running for scope.
// When the scheduler is not running every caller is the owner, except of a
// scope whose loop is still draining after Stop.
func (s *Scheduler) IsOwner(ctx context.Context, scope Scope) bool {
	if ctx != nil {
		if o, ok := ctx.Value(ownerKey{}).(*ownership); ok && o.active.Load() && o.scope == scope {
			return true
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	_, draining := s.loops[scope]
	return !draining
}

// IsOnOwnerThread is IsOwner for the global scope.
func (s *Scheduler) IsOnOwnerThread(ctx context.Context) bool {
	return s.IsOwner(ctx, Global())
}

// Flush blocks until every task submitted to scope before the call has run.
// Calling it from the owner of scope returns immediately.
func (s *Scheduler) Flush(ctx context.Context, scope Scope) error {
	if s.IsOwner(ctx, scope) {
		return nil
	}
	done := make(chan struct{})
	s.RunOnOwner(scope, func(context.Context) { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) submit(scope Scope, task Task, mode string) {
	if task == nil {
		return
	}
	s.mu.Lock()
	l := s.loops[scope]
	if !s.running && l == nil {
		s.mu.Unlock()
		inlineTotal.Inc()
		s.execute(context.Background(), scope, task)
		return
	}
	// A loop still draining after Stop keeps the scope FIFO.
	tasksTotal.WithLabelValues(scope.kind.String(), mode).Inc()
	if l == nil {
		l = &loop{scope: scope}
		s.loops[scope] = l
		s.wg.Add(1)
		activeLoops.Inc()
		go s.drain(l)
	}
	l.queue = append(l.queue, task)
	s.mu.Unlock()
}

// drain runs l's queue until it is empty, then retires the loop. A later
// submission starts a fresh goroutine; the map entry is removed under the
// same lock that appends, so FIFO order holds across restarts.
func (s *Scheduler) drain(l *loop) {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		if len(l.queue) == 0 {
			delete(s.loops, l.scope)
			s.mu.Unlock()
			activeLoops.Dec()
			return
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		s.mu.Unlock()
		s.execute(context.Background(), l.scope, task)
	}
}

func (s *Scheduler) execute(parent context.Context, scope Scope, task Task) {
	o := &ownership{scope: scope}
	o.active.Store(true)
	ctx := context.WithValue(parent, ownerKey{}, o)
	defer func() {
		o.active.Store(false)
		if r := recover(); r != nil {
			taskPanics.WithLabelValues(scope.kind.String()).Inc()
			s.log.Error().
				Str("scope", scope.String()).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("scheduled task panicked")
		}
	}()
	task(ctx)
}

package scheduler

import (
	"context"
	"runtime/debug"
	"time"
)

// RunOnOwnerDelayed schedules task on the owner of scope after delayTicks
// ticks. A non-positive delay behaves like RunOnOwner.
func (s *Scheduler) RunOnOwnerDelayed(scope Scope, task Task, delayTicks int64) {
	if task == nil {
		return
	}
	if delayTicks <= 0 {
		s.submit(scope, task, "delayed")
		return
	}
	time.AfterFunc(s.ticks(delayTicks), func() { s.submit(scope, task, "delayed") })
}

// RunOnOwnerPeriodic schedules task on the owner of scope after delayTicks
// and then every periodTicks until the scheduler stops. A period below one
// tick is raised to one tick.
func (s *Scheduler) RunOnOwnerPeriodic(scope Scope, task Task, delayTicks, periodTicks int64) {
	if task == nil {
		return
	}
	if periodTicks < 1 {
		periodTicks = 1
	}
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		s.log.Warn().Str("scope", scope.String()).Msg("periodic task submitted after stop; running once inline")
		s.submit(scope, task, "periodic")
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		if delayTicks > 0 {
			t := time.NewTimer(s.ticks(delayTicks))
			select {
			case <-t.C:
			case <-s.stopCh:
				t.Stop()
				return
			}
		}
		s.submit(scope, task, "periodic")
		ticker := time.NewTicker(s.ticks(periodTicks))
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.submit(scope, task, "periodic")
			case <-s.stopCh:
				return
			}
		}
	}()
}

// RunAsync runs task on a fresh goroutine that owns no scope. Use it only for
// work that touches no scope-affined state.
func (s *Scheduler) RunAsync(task Task) {
	if task == nil {
		return
	}
	tasksTotal.WithLabelValues("none", "async").Inc()
	s.mu.Lock()
	tracked := !s.stopped
	if tracked {
		s.wg.Add(1)
	}
	s.mu.Unlock()
	go func() {
		if tracked {
			defer s.wg.Done()
		}
		defer func() {
			if r := recover(); r != nil {
				taskPanics.WithLabelValues("none").Inc()
				s.log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("async task panicked")
			}
		}()
		task(context.Background())
	}()
}

func (s *Scheduler) ticks(n int64) time.Duration { return time.Duration(n) * s.tick }

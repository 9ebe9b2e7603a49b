// Package scheduler runs callbacks on the single logical owner of a piece of
// mutable game state.
//
// The embedding game server assigns ownership per scope rather than per data
// structure: the global context, a region of the world, or a live entity each
// have exactly one legitimate mutator at any instant. The Scheduler models
// each scope as a single-consumer FIFO queue drained by one goroutine at a
// time:
//
//   - scope.go: Scope and its constructors (Global, Region, Entity).
//   - scheduler.go: Scheduler type, Start/Stop, queueing and ownership checks.
//   - timing.go: delayed, periodic and async variants.
//   - metrics.go: Prometheus collectors.
//
// Ownership travels in the context.Context handed to each callback. A
// callback for scope S sees IsOwner(ctx, S) == true for as long as it runs;
// the context must not be used to claim ownership after the callback returns
// or from goroutines it spawns.
//
// Callbacks for the same scope run in submission order. There is no ordering
// across scopes. A Scheduler that is not running (never started, or stopped)
// executes submissions synchronously on the caller so that nothing is ever
// dropped, and reports every caller as owner.
package scheduler

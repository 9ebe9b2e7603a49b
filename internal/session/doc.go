// Package session tracks which interactive panel each connected user has
// open and routes their input to it.
//
// A session holds at most one open Panel and at most one active text input
// handler. Every mutation runs on the scheduler owner of the user's scope:
// public operations called from elsewhere re-dispatch themselves and return
// immediately, so callers must not assume synchronous completion.
//
// Files by concern:
//
//   - manager.go: Manager type, constructor, read-only accessors.
//   - config.go: Config and defaults.
//   - panel.go: Panel capability interface, Surface, Click.
//   - host.go: the outbound Host contract.
//   - open.go: Open, Close, Refresh, CloseAll.
//   - input.go: input modes and HandleInput.
//   - interaction.go: inbound host events (clicks, closes, chat lines).
//   - events.go: events published on the bus.
//   - errors.go: contained failure type.
//   - metrics.go: Prometheus collectors.
//
// Failures inside panel callbacks and input handlers never propagate: they
// are logged, counted and turned into a local fallback (the panel is closed,
// the input mode is cleared).
package session

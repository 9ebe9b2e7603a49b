package session

import (
	"time"

	"github.com/rs/zerolog"

	"guildcore/internal/eventbus"
	"guildcore/internal/scheduler"
	"guildcore/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultDebounce = 200 * time.Millisecond
)

// DefaultCancelKeywords are the lines that abort a guild_name_input prompt.
var DefaultCancelKeywords = []string{"cancel"}

// Config holds Manager dependencies and tunables.
type Config struct {
	Host Host
	// Scheduler guards every mutation. Nil means a scheduler that is never
	// started, so every operation runs inline on the caller.
	Scheduler scheduler.Dispatcher
	// Bus receives session lifecycle events. Optional.
	Bus    *eventbus.Bus
	Logger zerolog.Logger

	// Debounce is the minimum spacing between two delivered clicks per user.
	Debounce time.Duration
	// CancelKeywords are matched case-insensitively after trimming.
	CancelKeywords []string
	// ScopeOf maps a user to the scheduler scope owning their session.
	// Defaults to the global scope.
	ScopeOf func(user types.UserID) scheduler.Scope
	// OnFailure is called, in addition to logging, for every contained
	// panel or input handler failure. Optional.
	OnFailure func(user types.UserID, err error)
}

func (c *Config) applyDefaults() {
	if c.Scheduler == nil {
		c.Scheduler = scheduler.New(scheduler.Config{Logger: c.Logger})
	}
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if len(c.CancelKeywords) == 0 {
		c.CancelKeywords = DefaultCancelKeywords
	}
	if c.ScopeOf == nil {
		c.ScopeOf = func(types.UserID) scheduler.Scope { return scheduler.Global() }
	}
}

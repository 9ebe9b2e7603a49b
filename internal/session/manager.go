package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"guildcore/internal/eventbus"
	"guildcore/internal/scheduler"
	"guildcore/pkg/types"
)

// Manager owns the per-user session map.
type Manager struct {
	host     Host
	sched    scheduler.Dispatcher
	bus      *eventbus.Bus
	log      zerolog.Logger
	debounce time.Duration
	cancel   []string
	scopeOf  func(types.UserID) scheduler.Scope
	onFail   func(types.UserID, error)

	mu       sync.RWMutex
	sessions map[types.UserID]*session
	// clicks holds the last delivered click per user. It outlives panels so
	// a click landing on a just-opened panel is still debounced.
	clicks map[types.UserID]time.Time
	modes  map[string]InputModeFactory
	gen    uint64
}

// session is one user's state. A session with neither panel nor input is
// removed from the map.
type session struct {
	panel Panel
	// gen identifies the current panel open; clicks and input bindings
	// captured under an older gen are stale.
	gen   uint64
	title string
	input *inputState
}

func (s *session) empty() bool { return s.panel == nil && s.input == nil }

// New constructs a Manager. cfg.Host is required.
func New(cfg Config) *Manager {
	cfg.applyDefaults()
	m := &Manager{
		host:     cfg.Host,
		sched:    cfg.Scheduler,
		bus:      cfg.Bus,
		log:      cfg.Logger,
		debounce: cfg.Debounce,
		cancel:   cfg.CancelKeywords,
		scopeOf:  cfg.ScopeOf,
		onFail:   cfg.OnFailure,
		sessions: make(map[types.UserID]*session),
		clicks:   make(map[types.UserID]time.Time),
		modes:    make(map[string]InputModeFactory),
	}
	m.modes[ModeGuildNameInput] = guildNameInput
	return m
}

// Start satisfies registry.Lifecycle.
func (m *Manager) Start(ctx context.Context) error {
	m.log.Debug().Dur("debounce", m.debounce).Msg("session manager started")
	return nil
}

// Stop closes every session.
func (m *Manager) Stop(ctx context.Context) error {
	m.CloseAll(ctx)
	return nil
}

// OpenPanel returns the panel open for user.
func (m *Manager) OpenPanel(user types.UserID) (Panel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s := m.sessions[user]; s != nil && s.panel != nil {
		return s.panel, true
	}
	return nil, false
}

func (m *Manager) HasOpenPanel(user types.UserID) bool {
	_, ok := m.OpenPanel(user)
	return ok
}

func (m *Manager) IsInInputMode(user types.UserID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.sessions[user]
	return s != nil && s.input != nil
}

// OpenCount returns the number of users with an open panel.
func (m *Manager) OpenCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.sessions {
		if s.panel != nil {
			n++
		}
	}
	return n
}

// Snapshot returns every live session ordered by user id.
func (m *Manager) Snapshot() []types.SessionStatus {
	m.mu.RLock()
	out := make([]types.SessionStatus, 0, len(m.sessions))
	for u, s := range m.sessions {
		st := types.SessionStatus{User: u.String(), InputMode: s.input != nil}
		if s.panel != nil {
			st.Panel = s.title
		}
		if t, ok := m.clicks[u]; ok {
			st.LastInteraction = t.UnixMilli()
		}
		out = append(out, st)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].User < out[j].User })
	return out
}

// guard runs fn on the owner of user's scope: inline when ctx already owns
// it, otherwise queued.
func (m *Manager) guard(ctx context.Context, user types.UserID, fn scheduler.Task) {
	scope := m.scopeOf(user)
	if m.sched.IsOwner(ctx, scope) {
		fn(ctx)
		return
	}
	m.sched.RunOnOwner(scope, fn)
}

// prune drops user's session if it is empty. Caller holds mu.
func (m *Manager) prune(user types.UserID) {
	if s := m.sessions[user]; s != nil && s.empty() {
		delete(m.sessions, user)
	}
}

func (m *Manager) fail(user types.UserID, err error) {
	stage, _ := IsPanelFailure(err)
	failuresTotal.WithLabelValues(stage).Inc()
	ev := m.log.Error().Err(err).Str("user", user.String()).Str("stage", stage)
	if pf, ok := err.(*panelFailure); ok && pf.stack != nil {
		ev = ev.Bytes("stack", pf.stack)
	}
	ev.Msg("contained session failure")
	if m.onFail != nil {
		m.onFail(user, err)
	}
}

func panelName(p Panel) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", p), "*")
}

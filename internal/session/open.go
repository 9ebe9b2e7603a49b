package session

import (
	"context"
	"time"

	"guildcore/pkg/types"
)

// detached is a panel removed from its session whose close callback has
// not run yet.
type detached struct {
	panel Panel
	title string
	gen   uint64
	input *inputState // cleared along with the panel, if any
}

// inputPolicy decides whether the input handler goes away with the panel.
type inputPolicy func(in *inputState, gen uint64) bool

func clearOwned(in *inputState, gen uint64) bool { return in.owner == gen }

func keepAll(*inputState, uint64) bool { return false }

func clearUnlessKept(in *inputState, _ uint64) bool { return !in.keepOnClose }

// Open shows p to user, closing the panel they currently have open first.
// Off the owner it is queued and returns immediately.
func (m *Manager) Open(ctx context.Context, user types.UserID, p Panel) {
	if p == nil {
		return
	}
	m.guard(ctx, user, func(ctx context.Context) {
		m.open(ctx, user, p, ReasonReplaced, false)
	})
}

// Close hides user's panel and runs its close callback. It is a no-op when
// no panel is open.
func (m *Manager) Close(ctx context.Context, user types.UserID) {
	m.guard(ctx, user, func(ctx context.Context) {
		m.close(ctx, user, ReasonClosed, 0)
	})
}

// Refresh re-renders the open panel. The input handler survives.
func (m *Manager) Refresh(ctx context.Context, user types.UserID) {
	m.guard(ctx, user, func(ctx context.Context) {
		p, ok := m.OpenPanel(user)
		if !ok {
			return
		}
		m.open(ctx, user, p, ReasonRefreshed, true)
	})
}

// CloseAll dismisses every open panel and forgets every session, input
// handlers included. It runs on the caller and tolerates per-user failures.
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[types.UserID]*session)
	m.clicks = make(map[types.UserID]time.Time)
	m.mu.Unlock()

	for user, s := range sessions {
		m.shutdownSession(ctx, user, s)
	}
	if len(sessions) > 0 {
		m.log.Debug().Int("sessions", len(sessions)).Msg("closed all sessions")
	}
}

func (m *Manager) shutdownSession(ctx context.Context, user types.UserID, s *session) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Str("user", user.String()).Interface("panic", r).Msg("close all: skipping user")
		}
	}()
	if s.input != nil {
		m.publish(InputModeCleared{User: user, Tag: s.input.tag, Reason: ReasonShutdown})
	}
	if s.panel == nil {
		return
	}
	openPanels.Dec()
	if m.host.IsUserOnline(user) {
		m.dismiss(ctx, user, s.panel)
	}
	m.finish(user, &detached{panel: s.panel, title: s.title, gen: s.gen}, ReasonShutdown)
}

func (m *Manager) open(ctx context.Context, user types.UserID, p Panel, reason string, keepInput bool) {
	policy := clearOwned
	if keepInput {
		policy = keepAll
	}
	var oldGen uint64
	if rec := m.take(user, policy); rec != nil {
		oldGen = rec.gen
		m.finish(user, rec, reason)
	}

	name := panelName(p)
	var surface *Surface
	err := safeCall(StageRender, name, func() error {
		surface = NewSurface(p.Title(), p.Size())
		return p.Render(surface)
	})
	if err == nil {
		err = safeCall(StagePresent, name, func() error {
			m.host.PresentSurface(ctx, user, surface)
			return nil
		})
	}
	if err != nil {
		m.fail(user, err)
		var orphan *inputState
		m.mu.Lock()
		if s := m.sessions[user]; keepInput && oldGen != 0 && s != nil && s.input != nil && s.input.owner == oldGen {
			orphan = s.input
			s.input = nil
		}
		m.prune(user)
		m.mu.Unlock()
		if orphan != nil {
			m.inputCleared(user, orphan, ReasonFailed)
		}
		return
	}

	m.mu.Lock()
	s := m.sessions[user]
	if s == nil {
		s = &session{}
		m.sessions[user] = s
	}
	m.gen++
	s.gen = m.gen
	s.panel = p
	s.title = surface.Title()
	if keepInput && oldGen != 0 && s.input != nil && s.input.owner == oldGen {
		s.input.owner = s.gen
	}
	m.mu.Unlock()

	openPanels.Inc()
	m.log.Debug().Str("user", user.String()).Str("panel", name).Str("title", surface.Title()).Msg("panel opened")
	m.publish(PanelOpened{User: user, Title: surface.Title()})
}

// close removes user's panel, hides it and runs its close callback. A
// non-zero gen restricts the close to that particular open.
func (m *Manager) close(ctx context.Context, user types.UserID, reason string, gen uint64) {
	m.mu.RLock()
	s := m.sessions[user]
	stale := s == nil || s.panel == nil || (gen != 0 && s.gen != gen)
	m.mu.RUnlock()
	if stale {
		return
	}
	rec := m.take(user, clearOwned)
	if rec == nil {
		return
	}
	if m.host.IsUserOnline(user) {
		m.dismiss(ctx, user, rec.panel)
	}
	m.finish(user, rec, reason)
}

// take detaches user's open panel under the lock. policy decides whether the
// input handler is cleared with it.
func (m *Manager) take(user types.UserID, policy inputPolicy) *detached {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[user]
	if s == nil || s.panel == nil {
		return nil
	}
	rec := &detached{panel: s.panel, title: s.title, gen: s.gen}
	s.panel = nil
	s.title = ""
	if s.input != nil && policy(s.input, s.gen) {
		rec.input = s.input
		s.input = nil
	}
	m.prune(user)
	openPanels.Dec()
	return rec
}

// finish runs the detached panel's close callback and publishes.
func (m *Manager) finish(user types.UserID, rec *detached, reason string) {
	if rec.input != nil {
		m.inputCleared(user, rec.input, reason)
	}
	err := safeCall(StageClose, panelName(rec.panel), func() error {
		rec.panel.OnClose(user)
		return nil
	})
	if err != nil {
		m.fail(user, err)
	}
	m.log.Debug().Str("user", user.String()).Str("panel", panelName(rec.panel)).Str("reason", reason).Msg("panel closed")
	m.publish(PanelClosed{User: user, Title: rec.title, Reason: reason})
}

func (m *Manager) dismiss(ctx context.Context, user types.UserID, p Panel) {
	err := safeCall(StagePresent, panelName(p), func() error {
		m.host.DismissSurface(ctx, user)
		return nil
	})
	if err != nil {
		m.fail(user, err)
	}
}

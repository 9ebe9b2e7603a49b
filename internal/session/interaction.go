package session

import (
	"context"

	"guildcore/pkg/types"
)

// InteractionEvent is a raw click reported by the host. The manager sets
// Cancelled and Rejected before HandleInteraction returns.
type InteractionEvent struct {
	User types.UserID
	Slot int
	Item *types.Item
	Kind types.ClickKind

	// Cancelled means the host must not apply its default action.
	Cancelled bool
	// Rejected means the interaction was debounced and must not commit.
	Rejected bool
}

// HandleInteraction debounces ev and forwards it to user's open panel.
// Events for users without an open panel are left untouched.
func (m *Manager) HandleInteraction(ctx context.Context, ev *InteractionEvent) {
	if ev == nil {
		return
	}
	now := m.host.Now()
	user := ev.User

	m.mu.Lock()
	s := m.sessions[user]
	last, clicked := m.clicks[user]
	if s == nil || s.panel == nil {
		if clicked && now.Sub(last) >= m.debounce {
			delete(m.clicks, user)
		}
		m.mu.Unlock()
		interactionsTotal.WithLabelValues("ignored").Inc()
		return
	}
	ev.Cancelled = true
	if clicked && now.Sub(last) < m.debounce {
		ev.Rejected = true
		m.mu.Unlock()
		interactionsTotal.WithLabelValues("debounced").Inc()
		m.log.Debug().Str("user", user.String()).Int("slot", ev.Slot).Msg("interaction debounced")
		return
	}
	m.clicks[user] = now
	gen := s.gen
	m.mu.Unlock()

	c := Click{Slot: ev.Slot, Item: ev.Item, Kind: ev.Kind}
	m.guard(ctx, user, func(ctx context.Context) {
		m.deliver(ctx, user, gen, c)
	})
}

// deliver runs the click handler of the panel open at gen. A failing
// handler closes that panel.
func (m *Manager) deliver(ctx context.Context, user types.UserID, gen uint64, c Click) {
	m.mu.RLock()
	s := m.sessions[user]
	var p Panel
	if s != nil && s.gen == gen {
		p = s.panel
	}
	m.mu.RUnlock()
	if p == nil {
		interactionsTotal.WithLabelValues("stale").Inc()
		return
	}

	err := safeCall(StageClick, panelName(p), func() error {
		return p.OnClick(ctx, user, c)
	})
	if err != nil {
		interactionsTotal.WithLabelValues("failed").Inc()
		m.fail(user, err)
		m.close(ctx, user, ReasonFailed, gen)
		return
	}
	interactionsTotal.WithLabelValues("delivered").Inc()
}

// HandleSurfaceClosed records that the host dismissed user's surface. The
// input handler is cleared unless it was installed with KeepOnClose.
func (m *Manager) HandleSurfaceClosed(ctx context.Context, user types.UserID) {
	m.guard(ctx, user, func(ctx context.Context) {
		if rec := m.take(user, clearUnlessKept); rec != nil {
			m.finish(user, rec, ReasonHost)
		}
	})
}

// HandleChatLine offers a chat line to user's input handler on the owner of
// the user's scope. true means the user is in input mode and normal chat
// processing should be suppressed.
func (m *Manager) HandleChatLine(ctx context.Context, user types.UserID, text string) bool {
	if !m.IsInInputMode(user) {
		return false
	}
	m.guard(ctx, user, func(context.Context) {
		m.HandleInput(user, text)
	})
	return true
}

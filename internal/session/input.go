package session

import (
	"context"
	"strings"

	"guildcore/pkg/types"
)

// ModeGuildNameInput prompts for a guild name on behalf of a NameInputTarget.
const ModeGuildNameInput = "guild_name_input"

// InputHandler consumes one line of free text. done removes the handler; a
// non-nil error clears input mode.
type InputHandler func(text string) (done bool, err error)

// InputModeFactory builds the handler for a mode tag bound to p. ok is false
// when the mode does not apply to p.
type InputModeFactory func(m *Manager, user types.UserID, p Panel) (h InputHandler, ok bool)

// InputOption configures an installed input handler.
type InputOption func(*inputState)

// KeepOnClose keeps the handler when the host reports the surface closed.
func KeepOnClose() InputOption {
	return func(in *inputState) { in.keepOnClose = true }
}

// BindToOpenPanel ties the handler to the panel open at install time; it is
// cleared when that panel is closed or replaced.
func BindToOpenPanel() InputOption {
	return func(in *inputState) { in.bind = true }
}

// WithTag labels the handler in logs, events and metrics.
func WithTag(tag string) InputOption {
	return func(in *inputState) { in.tag = tag }
}

type inputState struct {
	handler InputHandler
	tag     string
	// owner is the gen of the panel open the handler belongs to, 0 if none.
	owner       uint64
	bind        bool
	keepOnClose bool
}

// RegisterInputMode adds or replaces the factory for tag.
func (m *Manager) RegisterInputMode(tag string, f InputModeFactory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f == nil {
		delete(m.modes, tag)
		return
	}
	m.modes[tag] = f
}

// SetInputMode routes user's subsequent text lines to h until it reports
// done, is cleared, or its panel closes.
func (m *Manager) SetInputMode(ctx context.Context, user types.UserID, h InputHandler, opts ...InputOption) {
	if h == nil {
		return
	}
	in := &inputState{handler: h}
	for _, o := range opts {
		o(in)
	}
	m.guard(ctx, user, func(ctx context.Context) {
		m.install(user, in, nil)
	})
}

// SetInputModeTag installs the registered mode tag bound to p. Unknown tags
// and panels the mode does not apply to are logged and ignored.
func (m *Manager) SetInputModeTag(ctx context.Context, user types.UserID, tag string, p Panel) {
	m.guard(ctx, user, func(ctx context.Context) {
		m.mu.RLock()
		f := m.modes[tag]
		m.mu.RUnlock()
		if f == nil {
			m.log.Warn().Str("user", user.String()).Str("mode", tag).Msg("unknown input mode")
			return
		}
		var (
			h  InputHandler
			ok bool
		)
		if err := safeCall(StageInput, tag, func() error {
			h, ok = f(m, user, p)
			return nil
		}); err != nil {
			m.fail(user, err)
			return
		}
		if !ok || h == nil {
			m.log.Warn().Str("user", user.String()).Str("mode", tag).Str("panel", panelName(p)).Msg("input mode does not apply to panel")
			return
		}
		m.install(user, &inputState{handler: h, tag: tag}, p)
	})
}

// ClearInputMode removes user's input handler unconditionally.
func (m *Manager) ClearInputMode(ctx context.Context, user types.UserID) {
	m.guard(ctx, user, func(ctx context.Context) {
		m.mu.Lock()
		var in *inputState
		if s := m.sessions[user]; s != nil {
			in, s.input = s.input, nil
			m.prune(user)
		}
		m.mu.Unlock()
		if in != nil {
			m.inputCleared(user, in, ReasonCleared)
		}
	})
}

// HandleInput offers text to user's input handler and reports whether the
// handler completed. It runs on the caller.
func (m *Manager) HandleInput(user types.UserID, text string) bool {
	m.mu.RLock()
	var in *inputState
	if s := m.sessions[user]; s != nil {
		in = s.input
	}
	m.mu.RUnlock()
	if in == nil {
		inputTotal.WithLabelValues("none").Inc()
		return false
	}

	var done bool
	err := safeCall(StageInput, in.tag, func() error {
		var herr error
		done, herr = in.handler(text)
		return herr
	})
	if err != nil {
		inputTotal.WithLabelValues("failed").Inc()
		m.fail(user, err)
		m.removeInput(user, in, ReasonFailed)
		return false
	}
	if !done {
		inputTotal.WithLabelValues("pending").Inc()
		return false
	}
	inputTotal.WithLabelValues("completed").Inc()
	m.removeInput(user, in, ReasonCompleted)
	return true
}

// IsCancelKeyword reports whether text is one of the configured cancel
// keywords.
func (m *Manager) IsCancelKeyword(text string) bool {
	text = strings.TrimSpace(text)
	for _, k := range m.cancel {
		if strings.EqualFold(text, k) {
			return true
		}
	}
	return false
}

func (m *Manager) install(user types.UserID, in *inputState, owner Panel) {
	m.mu.Lock()
	s := m.sessions[user]
	if s == nil {
		s = &session{}
		m.sessions[user] = s
	}
	if s.panel != nil && (in.bind || (owner != nil && samePanel(owner, s.panel))) {
		in.owner = s.gen
	}
	prev := s.input
	s.input = in
	m.mu.Unlock()

	if prev != nil {
		m.inputCleared(user, prev, ReasonReplaced)
	}
	m.log.Debug().Str("user", user.String()).Str("mode", in.tag).Bool("bound", in.owner != 0).Msg("input mode entered")
	m.publish(InputModeEntered{User: user, Tag: in.tag})
}

// removeInput clears in if it is still user's installed handler.
func (m *Manager) removeInput(user types.UserID, in *inputState, reason string) {
	m.mu.Lock()
	removed := false
	if s := m.sessions[user]; s != nil && s.input == in {
		s.input = nil
		m.prune(user)
		removed = true
	}
	m.mu.Unlock()
	if removed {
		m.inputCleared(user, in, reason)
	}
}

func (m *Manager) inputCleared(user types.UserID, in *inputState, reason string) {
	m.log.Debug().Str("user", user.String()).Str("mode", in.tag).Str("reason", reason).Msg("input mode cleared")
	m.publish(InputModeCleared{User: user, Tag: in.tag, Reason: reason})
}

// samePanel compares panel identities; panels of non-comparable dynamic
// type are never the same.
func samePanel(a, b Panel) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// guildNameInput feeds one line to a NameInputTarget; cancel keywords call
// HandleCancel instead.
func guildNameInput(m *Manager, user types.UserID, p Panel) (InputHandler, bool) {
	target, ok := p.(NameInputTarget)
	if !ok {
		return nil, false
	}
	return func(text string) (bool, error) {
		if m.IsCancelKeyword(text) {
			return true, target.HandleCancel(user)
		}
		return true, target.HandleInputComplete(user, text)
	}, true
}

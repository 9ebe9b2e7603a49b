package session

import "guildcore/pkg/types"

// Reasons carried by PanelClosed and InputModeCleared.
const (
	ReasonClosed    = "closed"
	ReasonReplaced  = "replaced"
	ReasonRefreshed = "refreshed"
	ReasonHost      = "host"
	ReasonFailed    = "failed"
	ReasonShutdown  = "shutdown"
	ReasonCompleted = "completed"
	ReasonCleared   = "cleared"
)

// PanelOpened is published after the host was asked to present a panel.
type PanelOpened struct {
	User  types.UserID
	Title string
}

// PanelClosed is published after a panel's close callback ran.
type PanelClosed struct {
	User   types.UserID
	Title  string
	Reason string
}

// InputModeEntered is published when an input handler is installed.
type InputModeEntered struct {
	User types.UserID
	Tag  string
}

// InputModeCleared is published when an input handler is removed.
type InputModeCleared struct {
	User   types.UserID
	Tag    string
	Reason string
}

func (m *Manager) publish(ev any) {
	if m.bus != nil {
		m.bus.Publish(ev)
	}
}

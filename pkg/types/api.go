package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: service not found: guilds
	Error string `json:"error" example:"service not found: guilds"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}

// SessionStatus describes one user's panel session for /status.
type SessionStatus struct {
	// User id.
	// example: 8f14e45f-ceea-467f-a0e6-a1b2c3d4e5f6
	User string `json:"user" example:"8f14e45f-ceea-467f-a0e6-a1b2c3d4e5f6"`
	// Title of the open panel, empty when none is open.
	// example: Guild List
	Panel string `json:"panel,omitempty" example:"Guild List"`
	// True while free-text input is being captured for this user.
	// example: false
	InputMode bool `json:"input_mode" example:"false"`
	// Unix millis of the last processed panel interaction.
	// example: 1760870400000
	LastInteraction int64 `json:"last_interaction,omitempty" example:"1760870400000"`
}

// ServiceStatus describes a registered service for /status.
type ServiceStatus struct {
	// Service identifier.
	// example: scheduler
	ID string `json:"id" example:"scheduler"`
	// True when the service was registered with a lifecycle.
	// example: true
	Lifecycle bool `json:"lifecycle" example:"true"`
	// Last lifecycle state: registered, started, start_failed, stopped, stop_failed.
	// example: started
	State string `json:"state" example:"started"`
	// Last lifecycle error, if any.
	// example: dial tcp: connection refused
	Error string `json:"error,omitempty" example:"dial tcp: connection refused"`
}

// ListenerStatus summarizes event bus subscriptions for /status.
type ListenerStatus struct {
	// Listener count per event type.
	ByType map[string]int `json:"by_type"`
	// Total listener count.
	// example: 4
	Total int `json:"total" example:"4"`
}

// HostStatus reports what the embedding game server said about itself.
type HostStatus struct {
	// example: paper
	Type string `json:"type" example:"paper"`
	// example: 1.20.4-R0.1-SNAPSHOT
	Version string `json:"version" example:"1.20.4-R0.1-SNAPSHOT"`
	// True when Version satisfies the configured minimum.
	// example: true
	Supported bool `json:"supported" example:"true"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	// Number of users with an open panel.
	// example: 3
	OpenPanels int `json:"open_panels" example:"3"`
	// Per-user session state.
	Sessions []SessionStatus `json:"sessions"`
	// Registered services in registration order.
	Services []ServiceStatus `json:"services"`
	// Event bus subscriptions.
	Listeners ListenerStatus `json:"listeners"`
	// Embedding host information.
	Host HostStatus `json:"host"`
	// Number of live scheduler scope loops.
	// example: 2
	ActiveLoops int `json:"active_loops" example:"2"`
}

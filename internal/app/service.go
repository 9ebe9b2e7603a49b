package app

import (
	"context"
	"fmt"
	"net/http"

	"guildcore/internal/httpapi"
	"guildcore/pkg/types"
)

var _ httpapi.Service = (*App)(nil)

type notFoundError struct{ msg string }

func (e notFoundError) Error() string   { return e.msg }
func (e notFoundError) StatusCode() int { return http.StatusNotFound }

// Status assembles the /status payload.
func (a *App) Status() types.StatusResponse {
	return types.StatusResponse{
		OpenPanels: a.Sessions.OpenCount(),
		Sessions:   a.Sessions.Snapshot(),
		Services:   a.Registry.Status(),
		Listeners: types.ListenerStatus{
			ByType: a.Bus.Counts(),
			Total:  a.Bus.TotalListenerCount(),
		},
		Host:        a.hostSt,
		ActiveLoops: a.Scheduler.ActiveLoops(),
	}
}

func (a *App) Ready() bool { return a.ready.Load() }

// CloseSession closes user's panel. Users without an open panel are a 404.
func (a *App) CloseSession(ctx context.Context, user types.UserID) error {
	if !a.Sessions.HasOpenPanel(user) {
		return notFoundError{msg: fmt.Sprintf("no open panel for user %s", user)}
	}
	a.Sessions.Close(ctx, user)
	return nil
}

func (a *App) CloseAllSessions(ctx context.Context) {
	a.Sessions.CloseAll(ctx)
}

// SetDebug flips debug logging and raises the access log to match.
func (a *App) SetDebug(enabled bool) {
	if a.levels != nil {
		a.levels.SetDebug(enabled)
	}
	if enabled {
		httpapi.SetAccessLogLevel("info")
	} else {
		httpapi.SetAccessLogLevel("error")
	}
	a.log.Info().Bool("debug", enabled).Msg("debug logging toggled")
}

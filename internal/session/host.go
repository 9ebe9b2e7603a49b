package session

import (
	"context"
	"time"

	"guildcore/pkg/types"
)

// Host is the embedding game server as seen by the manager.
//
// PresentSurface replaces whatever surface the user currently sees. A host
// that reports the replaced surface as closed must do so before
// PresentSurface returns, passing ctx along to HandleSurfaceClosed.
type Host interface {
	PresentSurface(ctx context.Context, user types.UserID, s *Surface)
	DismissSurface(ctx context.Context, user types.UserID)
	IsUserOnline(user types.UserID) bool
	Now() time.Time
}

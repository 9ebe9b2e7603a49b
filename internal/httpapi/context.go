package httpapi

import "context"

// serverBaseCtx is canceled when the runtime shuts down, so handlers that
// forward work to the session manager stop waiting for it.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level context joined into admin handlers.
// nil resets it to Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts returns a context canceled when either a or b is done. The
// cancel func releases the watcher goroutine and must be called.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
			cancel()
		case <-b.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

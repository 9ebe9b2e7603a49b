package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"guildcore/internal/app"
	"guildcore/internal/host"
	"guildcore/internal/httpapi"
	"guildcore/internal/scheduler"
)

// stack is an in-process runtime with its admin API on an httptest server.
type stack struct {
	app  *app.App
	host *host.Memory
	srv  *httptest.Server
	now  time.Time
}

func newStack(t *testing.T) *stack {
	t.Helper()
	s := &stack{now: time.Unix(1_760_870_400, 0)}
	s.host = host.NewMemory(
		host.WithInfo(host.Info{Type: host.TypePaper, Version: "1.20.4-R0.1-SNAPSHOT"}),
		host.WithClock(func() time.Time { return s.now }),
	)
	a, err := app.New(app.Options{Host: s.host, DisableAdmin: true})
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.app = a
	s.srv = httptest.NewServer(httpapi.NewMux(a))
	t.Cleanup(func() {
		s.srv.Close()
		_ = a.Shutdown()
	})
	return s
}

// advance moves the host clock. Only call it between flushes.
func (s *stack) advance(d time.Duration) { s.now = s.now.Add(d) }

func (s *stack) flush(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.app.Scheduler.Flush(ctx, scheduler.Global()); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func httpDo(t *testing.T, method, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, body)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func decode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
}

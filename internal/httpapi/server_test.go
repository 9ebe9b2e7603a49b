package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"guildcore/pkg/types"
)

type mockService struct {
	mu       sync.Mutex
	status   types.StatusResponse
	ready    bool
	closeErr error
	closed   []types.UserID
	closeAll int
	debug    *bool
}

func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Ready() bool                  { return m.ready }

func (m *mockService) CloseSession(ctx context.Context, user types.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closeErr != nil {
		return m.closeErr
	}
	m.closed = append(m.closed, user)
	return nil
}

func (m *mockService) CloseAllSessions(ctx context.Context) {
	m.mu.Lock()
	m.closeAll++
	m.mu.Unlock()
}

func (m *mockService) SetDebug(enabled bool) {
	m.mu.Lock()
	m.debug = &enabled
	m.mu.Unlock()
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func serve(h http.Handler, method, target string, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var rd *bytes.Buffer
	if body != "" {
		rd = bytes.NewBufferString(body)
	} else {
		rd = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, rd)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := serve(NewMux(&mockService{}), http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options=nosniff, got %q", got)
	}
}

func TestReadyz(t *testing.T) {
	w := serve(NewMux(&mockService{ready: true}), http.MethodGet, "/readyz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz_NotReady(t *testing.T) {
	w := serve(NewMux(&mockService{ready: false}), http.MethodGet, "/readyz", "", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "starting") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestStatusHandler(t *testing.T) {
	svc := &mockService{status: types.StatusResponse{
		OpenPanels: 1,
		Sessions:   []types.SessionStatus{{User: "u1", Panel: "Guild List"}},
		Services:   []types.ServiceStatus{{ID: "scheduler", Lifecycle: true, State: "started"}},
		Host:       types.HostStatus{Type: "paper", Version: "1.20.4", Supported: true},
	}}
	w := serve(NewMux(svc), http.MethodGet, "/status", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.OpenPanels != 1 || len(body.Sessions) != 1 || body.Services[0].State != "started" || !body.Host.Supported {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestSessionsHandler_EmptyIsArray(t *testing.T) {
	w := serve(NewMux(&mockService{}), http.MethodGet, "/sessions", "", nil)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestCloseSession(t *testing.T) {
	svc := &mockService{}
	u := uuid.New()
	w := serve(NewMux(svc), http.MethodPost, "/sessions/"+u.String()+"/close", "", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if len(svc.closed) != 1 || svc.closed[0] != u {
		t.Fatalf("closed = %v", svc.closed)
	}
}

func TestCloseSession_BadUser(t *testing.T) {
	w := serve(NewMux(&mockService{}), http.MethodPost, "/sessions/not-a-uuid/close", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Code != http.StatusBadRequest {
		t.Fatalf("body=%s err=%v", w.Body.String(), err)
	}
}

func TestCloseSession_ErrorMapping(t *testing.T) {
	svc := &mockService{closeErr: mockHTTPError{msg: "no open panel", code: http.StatusNotFound}}
	w := serve(NewMux(svc), http.MethodPost, "/sessions/"+uuid.NewString()+"/close", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	svc.closeErr = context.Canceled
	w = serve(NewMux(svc), http.MethodPost, "/sessions/"+uuid.NewString()+"/close", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestCloseAllSessions(t *testing.T) {
	svc := &mockService{}
	w := serve(NewMux(svc), http.MethodPost, "/sessions/close", "", nil)
	if w.Code != http.StatusNoContent || svc.closeAll != 1 {
		t.Fatalf("status=%d closeAll=%d", w.Code, svc.closeAll)
	}
}

func TestSetDebug(t *testing.T) {
	svc := &mockService{}
	h := NewMux(svc)
	hdr := map[string]string{"Content-Type": "application/json"}

	if w := serve(h, http.MethodPut, "/debug", `{"enabled":true}`, nil); w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("missing content type: status=%d", w.Code)
	}
	if w := serve(h, http.MethodPut, "/debug", `{"enabled":`, hdr); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json: status=%d", w.Code)
	}
	if w := serve(h, http.MethodPut, "/debug", `{}`, hdr); w.Code != http.StatusBadRequest {
		t.Fatalf("missing field: status=%d", w.Code)
	}
	if w := serve(h, http.MethodPut, "/debug", `{"enabled":true}`, hdr); w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
	if svc.debug == nil || !*svc.debug {
		t.Fatalf("debug not enabled")
	}
}

func TestSetDebug_BodyTooLarge(t *testing.T) {
	SetMaxBodyBytes(8)
	defer SetMaxBodyBytes(0)
	w := serve(NewMux(&mockService{}), http.MethodPut, "/debug", `{"enabled": true, "padding": "xxxxxxxx"}`, map[string]string{"Content-Type": "application/json"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	SetCORSOptions(true, []string{"*"}, []string{"GET", "POST", "PUT", "OPTIONS"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)

	w := serve(NewMux(&mockService{ready: true}), http.MethodGet, "/healthz", "", map[string]string{"Origin": "http://example.com"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatalf("expected Access-Control-Allow-Origin to be set")
	}
}

func TestSwaggerDoc(t *testing.T) {
	w := serve(NewMux(&mockService{}), http.MethodGet, "/swagger/doc.json", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json is not JSON: %v\n%s", err, w.Body.String())
	}
	paths, _ := doc["paths"].(map[string]any)
	if _, ok := paths["/sessions/{user}/close"]; !ok {
		t.Fatalf("doc missing session close path: %v", paths)
	}
}

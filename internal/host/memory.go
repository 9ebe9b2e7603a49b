package host

import (
	"context"
	"sync"
	"time"

	"guildcore/internal/session"
	"guildcore/pkg/types"
)

// Record is one outbound call made by the session manager.
type Record struct {
	Op    string // "present" or "dismiss"
	User  types.UserID
	Title string
	At    time.Time
}

// Option configures a Memory or Console host.
type Option func(*Memory)

// WithInfo sets what the host reports through Describe.
func WithInfo(info Info) Option {
	return func(m *Memory) { m.info = info }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

// Memory is an in-process session.Host that keeps the last surface
// presented to each user. Users are online unless marked otherwise.
type Memory struct {
	info Info
	now  func() time.Time

	mu       sync.Mutex
	offline  map[types.UserID]bool
	surfaces map[types.UserID]*session.Surface
	history  []Record
}

var _ session.Host = (*Memory)(nil)

// NewMemory returns an empty Memory host.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		info:     Info{Type: TypeUnknown},
		now:      time.Now,
		offline:  make(map[types.UserID]bool),
		surfaces: make(map[types.UserID]*session.Surface),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Memory) PresentSurface(ctx context.Context, user types.UserID, s *session.Surface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.surfaces[user] = s
	m.history = append(m.history, Record{Op: "present", User: user, Title: s.Title(), At: m.now()})
}

func (m *Memory) DismissSurface(ctx context.Context, user types.UserID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.surfaces, user)
	m.history = append(m.history, Record{Op: "dismiss", User: user, At: m.now()})
}

func (m *Memory) IsUserOnline(user types.UserID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.offline[user]
}

func (m *Memory) Now() time.Time { return m.now() }

func (m *Memory) Info() Info { return m.info }

// SetOnline marks user online or offline. Going offline drops their surface.
func (m *Memory) SetOnline(user types.UserID, online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if online {
		delete(m.offline, user)
		return
	}
	m.offline[user] = true
	delete(m.surfaces, user)
}

// Surface returns the surface user currently sees.
func (m *Memory) Surface(user types.UserID) (*session.Surface, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.surfaces[user]
	return s, ok
}

// History returns a copy of every recorded outbound call.
func (m *Memory) History() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.history...)
}

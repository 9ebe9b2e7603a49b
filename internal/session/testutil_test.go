package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"guildcore/pkg/types"
)

// journal records callbacks in order across panels and the host.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	j.entries = append(j.entries, s)
	j.mu.Unlock()
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type fakeHost struct {
	j *journal

	mu        sync.Mutex
	now       time.Time
	offline   map[types.UserID]bool
	presented map[types.UserID]*Surface
	// isOwner, when set, is evaluated on every PresentSurface.
	isOwner        func(ctx context.Context) bool
	ownedAtPresent []bool
	// onDismiss is called from DismissSurface, like a host reporting the
	// close back synchronously.
	onDismiss func(ctx context.Context, user types.UserID)
}

func newFakeHost(j *journal) *fakeHost {
	return &fakeHost{
		j:         j,
		now:       time.Unix(1_760_870_400, 0),
		offline:   make(map[types.UserID]bool),
		presented: make(map[types.UserID]*Surface),
	}
}

func (h *fakeHost) PresentSurface(ctx context.Context, user types.UserID, s *Surface) {
	h.mu.Lock()
	h.presented[user] = s
	if h.isOwner != nil {
		h.ownedAtPresent = append(h.ownedAtPresent, h.isOwner(ctx))
	}
	h.mu.Unlock()
	h.j.add("host.present:" + s.Title())
}

func (h *fakeHost) DismissSurface(ctx context.Context, user types.UserID) {
	h.mu.Lock()
	delete(h.presented, user)
	cb := h.onDismiss
	h.mu.Unlock()
	h.j.add("host.dismiss")
	if cb != nil {
		cb(ctx, user)
	}
}

func (h *fakeHost) IsUserOnline(user types.UserID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.offline[user]
}

func (h *fakeHost) Now() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

func (h *fakeHost) advance(d time.Duration) {
	h.mu.Lock()
	h.now = h.now.Add(d)
	h.mu.Unlock()
}

func (h *fakeHost) surface(user types.UserID) *Surface {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.presented[user]
}

type fakePanel struct {
	name  string
	title string
	size  int
	j     *journal

	renderErr  error
	clickErr   error
	clickPanic bool
	closePanic bool
	// onClick runs inside OnClick before the result is returned.
	onClick func(ctx context.Context, user types.UserID, c Click)

	mu     sync.Mutex
	clicks []Click
	closes int
}

func newFakePanel(j *journal, name string) *fakePanel {
	return &fakePanel{name: name, title: name, size: 27, j: j}
}

func (p *fakePanel) Title() string { return p.title }
func (p *fakePanel) Size() int     { return p.size }

func (p *fakePanel) Render(s *Surface) error {
	p.j.add(p.name + ".render")
	if p.renderErr != nil {
		return p.renderErr
	}
	s.Set(10, &types.Item{Material: "PAPER", Amount: 1, Name: "entry"})
	return nil
}

func (p *fakePanel) OnClick(ctx context.Context, user types.UserID, c Click) error {
	p.mu.Lock()
	p.clicks = append(p.clicks, c)
	p.mu.Unlock()
	p.j.add(p.name + ".click")
	if p.onClick != nil {
		p.onClick(ctx, user, c)
	}
	if p.clickPanic {
		panic("click exploded")
	}
	return p.clickErr
}

func (p *fakePanel) OnClose(user types.UserID) {
	p.mu.Lock()
	p.closes++
	p.mu.Unlock()
	p.j.add(p.name + ".close")
	if p.closePanic {
		panic("close exploded")
	}
}

func (p *fakePanel) clickCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clicks)
}

func (p *fakePanel) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}

// namePanel is a fakePanel that accepts guild_name_input.
type namePanel struct {
	*fakePanel
	submitted []string
	cancelled int
	submitErr error
}

func (p *namePanel) HandleInputComplete(user types.UserID, input string) error {
	p.submitted = append(p.submitted, input)
	return p.submitErr
}

func (p *namePanel) HandleCancel(user types.UserID) error {
	p.cancelled++
	return nil
}

var errBoom = errors.New("boom")

// newTestManager returns a manager whose scheduler is never started, so
// every operation runs inline.
func newTestManager(cfg Config) (*Manager, *fakeHost, *journal) {
	j := &journal{}
	h := newFakeHost(j)
	cfg.Host = h
	return New(cfg), h, j
}

func newUser() types.UserID { return uuid.New() }

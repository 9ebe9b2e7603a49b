package guildui

import (
	"context"
	"fmt"

	"guildcore/internal/session"
	"guildcore/pkg/types"
)

// Guild List layout: three rows of entries and a navigation row.
const (
	listRows       = 4
	entriesPerPage = 3 * session.RowWidth
	SlotPrev       = 27
	SlotCreate     = 30
	SlotClose      = 31
	SlotPage       = 32
	SlotNext       = 35
)

// GuildListPanel is a paginated grid of guilds. One instance per user.
type GuildListPanel struct {
	deps   Deps
	guilds []Guild
	page   int
}

// NewGuildListPanel returns a list over guilds starting at the first page.
func NewGuildListPanel(deps Deps, guilds []Guild) *GuildListPanel {
	return &GuildListPanel{deps: deps, guilds: guilds}
}

func (p *GuildListPanel) Title() string { return "Guild List" }
func (p *GuildListPanel) Size() int     { return listRows * session.RowWidth }

// Page returns the zero-based page shown.
func (p *GuildListPanel) Page() int { return p.page }

// Pages returns the page count; an empty list has one page.
func (p *GuildListPanel) Pages() int {
	n := (len(p.guilds) + entriesPerPage - 1) / entriesPerPage
	if n == 0 {
		return 1
	}
	return n
}

func (p *GuildListPanel) Render(s *session.Surface) error {
	start := p.page * entriesPerPage
	for i := 0; i < entriesPerPage && start+i < len(p.guilds); i++ {
		g := p.guilds[start+i]
		it := button("WHITE_BANNER", g.Name, fmt.Sprintf("[%s]", g.Tag), fmt.Sprintf("%d members", g.Members))
		it.Tag = g.ID
		s.Set(i, it)
	}
	if p.page > 0 {
		s.Set(SlotPrev, button("ARROW", "Previous page"))
	}
	if p.page < p.Pages()-1 {
		s.Set(SlotNext, button("ARROW", "Next page"))
	}
	s.Set(SlotCreate, button("ANVIL", "Create guild"))
	s.Set(SlotClose, button("BARRIER", "Close"))
	s.Set(SlotPage, button("PAPER", fmt.Sprintf("Page %d/%d", p.page+1, p.Pages())))
	return nil
}

func (p *GuildListPanel) OnClick(ctx context.Context, user types.UserID, c session.Click) error {
	switch {
	case c.Slot < entriesPerPage:
		i := p.page*entriesPerPage + c.Slot
		if i >= len(p.guilds) {
			return nil
		}
		g := p.guilds[i]
		p.deps.publish(GuildSelected{User: user, GuildID: g.ID, Name: g.Name})
	case c.Slot == SlotPrev && p.page > 0:
		p.page--
		p.deps.Sessions.Refresh(ctx, user)
	case c.Slot == SlotNext && p.page < p.Pages()-1:
		p.page++
		p.deps.Sessions.Refresh(ctx, user)
	case c.Slot == SlotCreate:
		p.deps.Sessions.Open(ctx, user, NewGuildNameInputPanel(p.deps))
	case c.Slot == SlotClose:
		p.deps.Sessions.Close(ctx, user)
	}
	return nil
}

func (p *GuildListPanel) OnClose(user types.UserID) {}

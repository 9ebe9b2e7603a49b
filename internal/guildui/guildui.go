// Package guildui holds the concrete guild panels. Panels only present
// state and publish events; guild business logic subscribes to those events.
package guildui

import (
	"guildcore/internal/eventbus"
	"guildcore/internal/session"
	"guildcore/pkg/types"
)

// Guild is the summary a list entry shows.
type Guild struct {
	ID      string
	Name    string
	Tag     string
	Members int
}

// Notifier sends a line of feedback to a user. Optional.
type Notifier interface {
	Say(user types.UserID, msg string)
}

// Deps are shared by every panel.
type Deps struct {
	Sessions *session.Manager
	Bus      *eventbus.Bus
	Notifier Notifier
}

func (d Deps) say(user types.UserID, msg string) {
	if d.Notifier != nil {
		d.Notifier.Say(user, msg)
	}
}

func (d Deps) publish(ev any) {
	if d.Bus != nil {
		d.Bus.Publish(ev)
	}
}

// GuildSelected is published when a user clicks a guild entry.
type GuildSelected struct {
	User    types.UserID
	GuildID string
	Name    string
}

// GuildNameSubmitted carries a validated guild name.
type GuildNameSubmitted struct {
	User types.UserID
	Name string
}

// GuildNameRejected carries a name that failed validation.
type GuildNameRejected struct {
	User   types.UserID
	Name   string
	Reason string
}

// GuildCreationCancelled is published when the user backs out of naming.
type GuildCreationCancelled struct {
	User types.UserID
}

func button(material, name string, lore ...string) *types.Item {
	return &types.Item{Material: material, Amount: 1, Name: name, Lore: lore}
}

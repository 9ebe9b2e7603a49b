package guildui

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"guildcore/internal/session"
	"guildcore/pkg/types"
)

// Guild name limits, in runes.
const (
	MinNameLength = 3
	MaxNameLength = 16
)

// Name panel buttons.
const (
	SlotEnterName = 11
	SlotCancel    = 15
)

// GuildNameInputPanel asks the user to type a guild name in chat.
type GuildNameInputPanel struct {
	deps Deps
}

var _ session.NameInputTarget = (*GuildNameInputPanel)(nil)

func NewGuildNameInputPanel(deps Deps) *GuildNameInputPanel {
	return &GuildNameInputPanel{deps: deps}
}

func (p *GuildNameInputPanel) Title() string { return "Create Guild" }
func (p *GuildNameInputPanel) Size() int     { return 3 * session.RowWidth }

func (p *GuildNameInputPanel) Render(s *session.Surface) error {
	s.Set(SlotEnterName, button("NAME_TAG", "Enter guild name",
		fmt.Sprintf("%d-%d letters, digits or spaces", MinNameLength, MaxNameLength)))
	s.Set(SlotCancel, button("BARRIER", "Cancel"))
	s.Fill(button("GRAY_STAINED_GLASS_PANE", " "))
	return nil
}

// OnClick closes the panel before entering input mode so the handler is
// not bound to it and survives the close.
func (p *GuildNameInputPanel) OnClick(ctx context.Context, user types.UserID, c session.Click) error {
	switch c.Slot {
	case SlotEnterName:
		p.deps.Sessions.Close(ctx, user)
		p.deps.Sessions.SetInputModeTag(ctx, user, session.ModeGuildNameInput, p)
		p.deps.say(user, "Type the guild name in chat, or \"cancel\" to abort.")
	case SlotCancel:
		p.deps.Sessions.Close(ctx, user)
		p.deps.publish(GuildCreationCancelled{User: user})
	}
	return nil
}

func (p *GuildNameInputPanel) OnClose(user types.UserID) {}

func (p *GuildNameInputPanel) HandleInputComplete(user types.UserID, input string) error {
	if reason := ValidateName(input); reason != "" {
		p.deps.say(user, "Invalid guild name: "+reason)
		p.deps.publish(GuildNameRejected{User: user, Name: input, Reason: reason})
		return nil
	}
	p.deps.say(user, fmt.Sprintf("Creating guild %q.", input))
	p.deps.publish(GuildNameSubmitted{User: user, Name: input})
	return nil
}

func (p *GuildNameInputPanel) HandleCancel(user types.UserID) error {
	p.deps.say(user, "Guild creation cancelled.")
	p.deps.publish(GuildCreationCancelled{User: user})
	return nil
}

// ValidateName returns why name is not a valid guild name, or "".
func ValidateName(name string) string {
	n := utf8.RuneCountInString(name)
	switch {
	case n < MinNameLength:
		return fmt.Sprintf("must be at least %d characters", MinNameLength)
	case n > MaxNameLength:
		return fmt.Sprintf("must be at most %d characters", MaxNameLength)
	case strings.TrimSpace(name) != name:
		return "must not start or end with a space"
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' && r != '_' {
			return fmt.Sprintf("contains %q", r)
		}
	}
	return ""
}

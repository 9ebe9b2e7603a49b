package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"guildcore/internal/app"
	"guildcore/internal/eventbus"
	"guildcore/internal/guildui"
	"guildcore/internal/host"
	"guildcore/internal/logging"
	"guildcore/internal/scheduler"
	"guildcore/internal/session"
	"guildcore/pkg/types"
)

func newSimulateCmd(root *rootOptions) *cobra.Command {
	var guilds int
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play the guild list and guild naming flow against a console host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.resolve(cmd)
			if err != nil {
				return err
			}
			log := logging.New(logging.Options{
				Debug:  cfg.Debug,
				Level:  cfg.LogLevel,
				Pretty: cfg.LogPretty,
				Writer: cmd.ErrOrStderr(),
			})
			clk := &stepClock{now: time.Unix(1_760_870_400, 0), step: 250 * time.Millisecond}
			out := &syncWriter{w: cmd.OutOrStdout()}
			console := host.NewConsole(out,
				host.WithInfo(host.Info{Type: host.TypePaper, Version: "1.20.4"}),
				host.WithClock(clk.Now))
			a, err := app.New(app.Options{Config: cfg, Host: console, Logger: log, DisableAdmin: true})
			if err != nil {
				return err
			}
			defer func() { _ = a.Shutdown() }()
			if err := a.Start(cmd.Context()); err != nil {
				return err
			}
			return simulate(cmd.Context(), out, a, console, sampleGuilds(guilds))
		},
	}
	cmd.Flags().IntVar(&guilds, "guilds", 30, "Number of sample guilds in the list")
	return cmd
}

// syncWriter serializes writes from the driver and the scheduler loops.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// stepClock advances by step on every reading so consecutive clicks are
// never debounced.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

func sampleGuilds(n int) []guildui.Guild {
	out := make([]guildui.Guild, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, guildui.Guild{
			ID:      fmt.Sprintf("g%03d", i+1),
			Name:    fmt.Sprintf("Guild %d", i+1),
			Tag:     fmt.Sprintf("G%d", i+1),
			Members: 1 + i%12,
		})
	}
	return out
}

type sim struct {
	ctx context.Context
	out io.Writer
	app *app.App
	err error
}

func (s *sim) flush() {
	if s.err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	s.err = s.app.Scheduler.Flush(ctx, scheduler.Global())
}

func (s *sim) say(format string, args ...any) {
	fmt.Fprintf(s.out, "== "+format+"\n", args...)
}

func (s *sim) open(user types.UserID, p session.Panel) {
	s.app.Sessions.Open(s.ctx, user, p)
	s.flush()
}

func (s *sim) click(user types.UserID, slot int) {
	ev := &session.InteractionEvent{User: user, Slot: slot, Kind: types.ClickLeft}
	s.app.Sessions.HandleInteraction(s.ctx, ev)
	s.flush()
}

func (s *sim) chat(user types.UserID, name, text string) {
	if s.app.Sessions.IsInInputMode(user) {
		s.say("%s typed %q into the prompt", name, text)
	} else {
		s.say("%s says %q in public chat", name, text)
	}
	s.app.Sessions.HandleChatLine(s.ctx, user, text)
	s.flush()
}

func simulate(ctx context.Context, out io.Writer, a *app.App, console *host.Console, guilds []guildui.Guild) error {
	s := &sim{ctx: ctx, out: out, app: a}
	deps := guildui.Deps{Sessions: a.Sessions, Bus: a.Bus, Notifier: console}

	subs := []eventbus.Subscription{
		eventbus.Subscribe(a.Bus, func(e guildui.GuildSelected) {
			s.say("event: guild %s (%s) selected", e.GuildID, e.Name)
		}),
		eventbus.Subscribe(a.Bus, func(e guildui.GuildNameSubmitted) {
			s.say("event: guild name %q submitted", e.Name)
		}),
		eventbus.Subscribe(a.Bus, func(e guildui.GuildNameRejected) {
			s.say("event: guild name %q rejected: %s", e.Name, e.Reason)
		}),
		eventbus.Subscribe(a.Bus, func(e guildui.GuildCreationCancelled) {
			s.say("event: guild creation cancelled")
		}),
	}
	defer func() {
		for _, sub := range subs {
			a.Bus.Unsubscribe(sub)
		}
	}()

	alice, bob := uuid.New(), uuid.New()
	console.SetName(alice, "alice")
	console.SetName(bob, "bob")

	s.say("alice browses the guild list")
	s.open(alice, guildui.NewGuildListPanel(deps, guilds))
	s.click(alice, guildui.SlotNext)
	s.click(alice, 0)

	s.say("alice creates a guild")
	s.click(alice, guildui.SlotCreate)
	s.click(alice, guildui.SlotEnterName)
	s.chat(alice, "alice", "Iron Wolves")

	s.say("bob picks a name that is too short, then chats normally")
	s.open(bob, guildui.NewGuildNameInputPanel(deps))
	s.click(bob, guildui.SlotEnterName)
	s.chat(bob, "bob", "x")
	s.chat(bob, "bob", "hello")

	s.say("bob backs out")
	s.open(bob, guildui.NewGuildNameInputPanel(deps))
	s.click(bob, guildui.SlotEnterName)
	s.chat(bob, "bob", "CANCEL")

	s.say("%d panels open at the end", a.Sessions.OpenCount())
	return s.err
}

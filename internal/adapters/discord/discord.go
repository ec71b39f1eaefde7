// Package discord implements the gateway port on top of discordgo.
package discord

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"tzbot/internal/gateway"
	"tzbot/pkg/logx"
)

type Config struct {
	Token string
}

type Adapter struct {
	cfg Config
	log logx.Logger

	session *discordgo.Session

	runMu   sync.Mutex
	running bool
	out     chan<- gateway.Event

	selfID atomic.Value // string, set on ready

	// droppedEvents counts events dropped because the consumer was slower
	// than the Discord gateway. Logged periodically to avoid per-event spam.
	droppedEvents uint64
	dropWG        sync.WaitGroup
	dropCancel    context.CancelFunc
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("discord token is empty")
	}
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions

	return &Adapter{cfg: cfg, log: log, session: s}, nil
}

func (a *Adapter) Start(ctx context.Context, out chan<- gateway.Event) error {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	if a.running {
		return nil
	}
	a.out = out

	a.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		a.selfID.Store(r.User.ID)
		a.log.Info("connected to discord", logx.String("user", r.User.Username))
		a.emit(gateway.Event{Kind: gateway.EventReady})
	})

	a.session.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
		a.emit(gateway.Event{
			Kind: gateway.EventReactionAdded,
			Reaction: &gateway.ReactionEvent{
				UserID: r.UserID,
				Emoji:  r.Emoji.APIName(),
				Ref: gateway.MessageRef{
					ChannelID: r.ChannelID,
					MessageID: r.MessageID,
				},
			},
		})
	})

	if err := a.session.Open(); err != nil {
		return err
	}
	a.running = true

	dctx, cancel := context.WithCancel(ctx)
	a.dropCancel = cancel
	a.dropWG.Add(1)
	go func() {
		defer a.dropWG.Done()
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-dctx.Done():
				if n := atomic.SwapUint64(&a.droppedEvents, 0); n > 0 {
					a.log.Warn("gateway events dropped (channel full)", logx.Int64("count", int64(n)))
				}
				return
			case <-ticker.C:
				if n := atomic.SwapUint64(&a.droppedEvents, 0); n > 0 {
					a.log.Warn("gateway events dropped (channel full)", logx.Int64("count", int64(n)))
				}
			}
		}
	}()

	return nil
}

func (a *Adapter) emit(ev gateway.Event) {
	select {
	case a.out <- ev:
	default:
		atomic.AddUint64(&a.droppedEvents, 1)
	}
}

func (a *Adapter) Stop(ctx context.Context) error {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	if !a.running {
		return nil
	}
	a.running = false
	if a.dropCancel != nil {
		a.dropCancel()
	}

	done := make(chan error, 1)
	go func() { done <- a.session.Close() }()
	select {
	case err := <-done:
		a.dropWG.Wait()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Adapter) SelfID() string {
	if v, ok := a.selfID.Load().(string); ok {
		return v
	}
	return ""
}

func (a *Adapter) Guilds() []gateway.Guild {
	st := a.session.State
	st.RLock()
	defer st.RUnlock()
	guilds := make([]gateway.Guild, 0, len(st.Guilds))
	for _, g := range st.Guilds {
		guilds = append(guilds, gateway.Guild{ID: g.ID, Name: g.Name})
	}
	return guilds
}

func (a *Adapter) Channels(guildID string) ([]gateway.Channel, error) {
	guildName := ""
	if g, err := a.session.State.Guild(guildID); err == nil {
		guildName = g.Name
	}
	chans, err := a.session.GuildChannels(guildID)
	if err != nil {
		return nil, err
	}
	out := make([]gateway.Channel, 0, len(chans))
	for _, ch := range chans {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		out = append(out, gateway.Channel{
			ID:        ch.ID,
			GuildID:   guildID,
			GuildName: guildName,
			Name:      ch.Name,
		})
	}
	return out, nil
}

func (a *Adapter) Send(ctx context.Context, channelID, text string) (gateway.MessageRef, error) {
	m, err := a.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	if err != nil {
		return gateway.MessageRef{}, err
	}
	return gateway.MessageRef{ChannelID: m.ChannelID, MessageID: m.ID}, nil
}

func (a *Adapter) React(ctx context.Context, ref gateway.MessageRef, emoji string) error {
	return a.session.MessageReactionAdd(ref.ChannelID, ref.MessageID, emoji, discordgo.WithContext(ctx))
}

func (a *Adapter) Unreact(ctx context.Context, ref gateway.MessageRef, emoji, userID string) error {
	return a.session.MessageReactionRemove(ref.ChannelID, ref.MessageID, emoji, userID, discordgo.WithContext(ctx))
}

func (a *Adapter) Message(ctx context.Context, ref gateway.MessageRef) (gateway.MessageSnapshot, error) {
	m, err := a.session.ChannelMessage(ref.ChannelID, ref.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		return gateway.MessageSnapshot{}, err
	}
	snap := gateway.MessageSnapshot{Ref: ref}
	for _, r := range m.Reactions {
		if r == nil || r.Emoji == nil {
			continue
		}
		snap.Reactions = append(snap.Reactions, gateway.ReactionSummary{
			Emoji: r.Emoji.APIName(),
			Count: r.Count,
			Me:    r.Me,
		})
	}
	return snap, nil
}

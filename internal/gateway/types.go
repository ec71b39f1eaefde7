// Package gateway defines the chat-gateway port the bot talks through.
//
// The concrete Discord implementation lives in internal/adapters/discord;
// services only depend on these types so tests can swap in fakes.
package gateway

import "context"

type EventKind string

const (
	EventReady         EventKind = "ready"
	EventReactionAdded EventKind = "reaction_added"
)

type Event struct {
	Kind     EventKind
	Reaction *ReactionEvent
}

// ReactionEvent is a raw reaction-added notification.
type ReactionEvent struct {
	UserID string
	Emoji  string
	Ref    MessageRef
}

type MessageRef struct {
	ChannelID string
	MessageID string
}

type Guild struct {
	ID   string
	Name string
}

type Channel struct {
	ID        string
	GuildID   string
	GuildName string
	Name      string
}

// ReactionSummary is one emoji's tally on a fetched message snapshot.
type ReactionSummary struct {
	Emoji string
	Count int
	// Me reports whether the bot itself is among the reactors.
	Me bool
}

// MessageSnapshot is the gateway's authoritative view of one message.
type MessageSnapshot struct {
	Ref       MessageRef
	Reactions []ReactionSummary
}

// Gateway is the minimal chat-gateway API used by the services.
type Gateway interface {
	Start(ctx context.Context, out chan<- Event) error
	Stop(ctx context.Context) error

	// SelfID returns the bot's own user id (valid after the ready event).
	SelfID() string

	Guilds() []Guild
	Channels(guildID string) ([]Channel, error)

	Send(ctx context.Context, channelID, text string) (MessageRef, error)
	React(ctx context.Context, ref MessageRef, emoji string) error
	// Unreact removes userID's reaction for emoji.
	Unreact(ctx context.Context, ref MessageRef, emoji, userID string) error
	Message(ctx context.Context, ref MessageRef) (MessageSnapshot, error)
}

// Package moderator withdraws the bot's placeholder votes from poll messages
// once real participation makes them redundant.
package moderator

import (
	"context"

	"tzbot/internal/gateway"
	"tzbot/pkg/logx"
)

// voteThreshold is the reaction count above which the bot's own reaction is
// withdrawn so the placeholder vote cannot skew a close outcome.
const voteThreshold = 3

// Chat is the slice of the gateway the moderator needs.
type Chat interface {
	SelfID() string
	Message(ctx context.Context, ref gateway.MessageRef) (gateway.MessageSnapshot, error)
	Unreact(ctx context.Context, ref gateway.MessageRef, emoji, userID string) error
}

type Service struct {
	chat Chat
	log  logx.Logger
}

func New(chat Chat, log logx.Logger) *Service {
	return &Service{chat: chat, log: log}
}

// HandleReactionAdd processes one reaction-added notification. The decision
// is always made against a freshly fetched snapshot, never against locally
// accumulated counts, so the moderator cannot drift from the gateway's
// authoritative state.
func (s *Service) HandleReactionAdd(ctx context.Context, ev *gateway.ReactionEvent) {
	self := s.chat.SelfID()
	if ev.UserID == self {
		// Our own reactions (initial attach or a prior removal echo) must
		// not trigger moderation, or we loop.
		s.log.Debug("ignoring own reaction")
		return
	}

	snap, err := s.chat.Message(ctx, ev.Ref)
	if err != nil {
		s.log.Error("fetching message for moderation failed", logx.Err(err))
		return
	}

	for _, emoji := range Overrepresented(snap) {
		s.log.Debug("removing own reaction", logx.String("emoji", emoji))
		if err := s.chat.Unreact(ctx, snap.Ref, emoji, self); err != nil {
			s.log.Error("removing own reaction failed", logx.String("emoji", emoji), logx.Err(err))
		}
	}
}

// Overrepresented returns the emojis whose total count exceeds the threshold
// while the bot itself is still among the reactors.
func Overrepresented(snap gateway.MessageSnapshot) []string {
	var out []string
	for _, r := range snap.Reactions {
		if r.Count > voteThreshold && r.Me {
			out = append(out, r.Emoji)
		}
	}
	return out
}

// Package datepoll broadcasts the weekly speedrun date poll: six candidate
// evenings in the week after next Monday, each with vote reactions attached.
package datepoll

import (
	"context"
	"time"

	"tzbot/internal/gateway"
	"tzbot/pkg/dateutil"
	"tzbot/pkg/logx"
)

// Sender is the slice of the gateway the poll needs.
type Sender interface {
	Send(ctx context.Context, channelID, text string) (gateway.MessageRef, error)
	React(ctx context.Context, ref gateway.MessageRef, emoji string) error
}

// Resolver computes the live fan-out targets for this run.
type Resolver func() ([]gateway.ChannelTarget, error)

// voteOptions are attached to every poll message, in this order.
// The bot's own reactions double as placeholder votes; the moderator
// withdraws them once real participation exceeds its threshold.
var voteOptions = []string{"\U0001F44D", "\U0001F44E", "\U0001F937‍♂️"} // 👍 👎 🤷‍♂️

const (
	pollStartHour = 20
	pollDays      = 6
)

type Service struct {
	sender  Sender
	resolve Resolver
	log     logx.Logger

	// now is swappable for tests.
	now func() time.Time
}

func New(sender Sender, resolve Resolver, log logx.Logger) *Service {
	return &Service{sender: sender, resolve: resolve, log: log, now: time.Now}
}

// RunOnce posts the six date messages for the upcoming poll week. The start
// day itself (next Monday, 20:00) is not posted; offsets run Tuesday through
// Sunday.
func (s *Service) RunOnce(ctx context.Context) {
	start := dateutil.NextMonday(s.now()).Add(pollStartHour * time.Hour)

	targets, err := s.resolve()
	if err != nil {
		s.log.Error("resolving date poll channels failed", logx.Err(err))
		return
	}
	if len(targets) == 0 {
		s.log.Error("no channel to announce the speedrun dates in")
		return
	}

	s.log.Info("announcing speedrun dates", logx.Time("week_start", start), logx.Int("channels", len(targets)))

	for i := 1; i <= pollDays; i++ {
		text := dateutil.FormatGerman(start.AddDate(0, 0, i))
		for _, tgt := range targets {
			ref, err := s.sender.Send(ctx, tgt.ChannelID, text)
			if err != nil {
				s.log.Error("date poll send failed",
					logx.String("channel", tgt.ChannelName), logx.Err(err))
				continue
			}
			for _, emoji := range voteOptions {
				if err := s.sender.React(ctx, ref, emoji); err != nil {
					s.log.Error("attaching vote option failed",
						logx.String("emoji", emoji), logx.Err(err))
				}
			}
		}
	}
}

// Package mirror posts zone announcements to a secondary Telegram sink.
//
// The mirror is strictly best-effort: it runs after the Discord fan-out has
// completed and its failures never affect the announced marking.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"tzbot/internal/zone"
	"tzbot/pkg/dateutil"
	"tzbot/pkg/logx"
)

type Config struct {
	Enabled bool
	Token   string
	ChatIDs []int64
}

// chatSender is the single telebot call the mirror makes, split out so
// tests can stand in for the live bot.
type chatSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type Service struct {
	cfg Config
	bot chatSender
	log logx.Logger
}

// New builds the mirror. A disabled config returns (nil, nil); the zero
// *Service is safe to skip on.
func New(cfg Config, log logx.Logger) (*Service, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if len(cfg.ChatIDs) == 0 {
		return nil, errors.New("telegram mirror enabled but no chat ids configured")
	}
	// No poller: the mirror only ever sends.
	b, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, bot: b, log: log}, nil
}

// Announce posts the record to every configured chat. Errors are logged per
// chat and swallowed.
func (s *Service) Announce(_ context.Context, rec zone.Record) {
	text := formatMirror(rec)
	for _, id := range s.cfg.ChatIDs {
		if _, err := s.bot.Send(&tele.Chat{ID: id}, text); err != nil {
			s.log.Error("telegram mirror send failed", logx.Int64("chat_id", id), logx.Err(err))
		}
	}
}

func formatMirror(rec zone.Record) string {
	return fmt.Sprintf("Terrorzone %s: %s (Akt %d)", dateutil.FormatGerman(rec.Time), rec.Name, rec.Act)
}

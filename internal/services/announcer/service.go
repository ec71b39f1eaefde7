// Package announcer implements the zone announcement engine: poll the feed,
// reconcile against the store, fan out unannounced records, mark them
// announced.
package announcer

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"golang.org/x/time/rate"

	"tzbot/internal/gateway"
	"tzbot/internal/source"
	"tzbot/internal/store"
	"tzbot/internal/zone"
	"tzbot/pkg/logx"
)

// Sender is the slice of the gateway the engine needs.
type Sender interface {
	Send(ctx context.Context, channelID, text string) (gateway.MessageRef, error)
}

// Resolver computes the live fan-out targets for this run.
type Resolver func() ([]gateway.ChannelTarget, error)

// Mirror is an optional secondary sink for zone announcements. It must never
// fail the run; implementations log their own errors.
type Mirror interface {
	Announce(ctx context.Context, rec zone.Record)
}

type Config struct {
	// RatePerSec paces consecutive sends to respect the gateway's rate
	// limits. Defaults to 1.
	RatePerSec int
}

type Service struct {
	cfg     Config
	src     source.Fetcher
	store   store.Store
	sender  Sender
	resolve Resolver
	mirror  Mirror
	log     logx.Logger

	limiter *rate.Limiter

	// running guards against overlapping runs within this process. A run
	// that loses the race is skipped entirely, never queued.
	running atomic.Bool
}

func New(cfg Config, src source.Fetcher, st store.Store, sender Sender, resolve Resolver, log logx.Logger) *Service {
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	return &Service{
		cfg:     cfg,
		src:     src,
		store:   st,
		sender:  sender,
		resolve: resolve,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
	}
}

// SetMirror installs an optional secondary announcement sink.
func (s *Service) SetMirror(m Mirror) { s.mirror = m }

// RunOnce executes one poll/reconcile/announce cycle. Every failure mode is
// recoverable: the record set is keyed, so whatever this cycle leaves behind
// is picked up by the next tick.
func (s *Service) RunOnce(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Debug("zone run already in flight, skipping")
		return
	}
	defer s.running.Store(false)

	s.log.Debug("checking for updated zones")

	s.reconcile(ctx)

	recs, err := s.store.ListUnannounced(ctx)
	if err != nil {
		s.log.Error("listing unannounced zones failed", logx.Err(err))
		return
	}
	if len(recs) == 0 {
		s.log.Debug("no new zones to announce")
		return
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Time.Before(recs[j].Time) })

	targets, err := s.resolve()
	if err != nil {
		s.log.Error("resolving announcement channels failed", logx.Err(err))
		return
	}
	if len(targets) == 0 {
		s.log.Error("no channel to announce the zones in")
		return
	}

	for _, rec := range recs {
		text := formatAnnouncement(rec)
		for _, tgt := range targets {
			if err := s.limiter.Wait(ctx); err != nil {
				return
			}
			s.log.Info("announcing zone",
				logx.String("zone", rec.Name),
				logx.Time("at", rec.Time),
				logx.String("channel", tgt.ChannelName),
				logx.String("guild", tgt.GuildName))
			if _, err := s.sender.Send(ctx, tgt.ChannelID, text); err != nil {
				// Leave the record unannounced; the next tick retries the
				// whole fan-out for it.
				s.log.Error("announcement send failed", logx.String("zone", rec.Name), logx.Err(err))
				return
			}
		}

		// Mark only after every channel received the record, so a partial
		// fan-out is retried rather than silently skipped.
		rec.Announced = true
		if err := s.store.Update(ctx, rec); err != nil {
			s.log.Error("marking zone announced failed", logx.String("zone", rec.Name), logx.Err(err))
			return
		}

		if s.mirror != nil {
			s.mirror.Announce(ctx, rec)
		}
	}
}

// reconcile pulls the current prediction and inserts unseen periods. Feed
// outages only mean there is nothing new; records already in the store still
// drain below.
func (s *Service) reconcile(ctx context.Context) {
	recs, err := s.src.Fetch(ctx)
	if err != nil {
		s.log.Error("zone fetch failed, skipping reconcile", logx.Err(err))
		return
	}
	for _, rec := range recs {
		inserted, err := s.store.SetIfAbsent(ctx, rec)
		if err != nil {
			s.log.Error("storing zone failed", logx.String("zone", rec.Name), logx.Err(err))
			return
		}
		if inserted {
			s.log.Info("new zone observed", logx.String("zone", rec.Name), logx.Time("at", rec.Time))
		}
	}
}

func formatAnnouncement(rec zone.Record) string {
	return fmt.Sprintf("<t:%d:f> **%s**", rec.Time.Unix(), rec.Name)
}

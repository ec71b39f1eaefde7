// Package app wires the configuration, store, gateway and services together
// and owns the two schedule triggers.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"tzbot/internal/adapters/discord"
	"tzbot/internal/config"
	"tzbot/internal/gateway"
	"tzbot/internal/services/announcer"
	"tzbot/internal/services/datepoll"
	"tzbot/internal/services/mirror"
	"tzbot/internal/services/moderator"
	"tzbot/internal/source"
	"tzbot/internal/store"
	"tzbot/pkg/logx"
)

const (
	defaultCronSpec = "30 20 * * 6" // every Saturday at 20:30
	defaultTimezone = "Europe/Berlin"
)

type App struct {
	cfgm *config.Manager
	logs *logx.Service
	log  logx.Logger

	gw *discord.Adapter
	st store.Store

	announcer *announcer.Service
	datepoll  *datepoll.Service
	moderator *moderator.Service

	cron     *cron.Cron
	cronOnce sync.Once

	events chan gateway.Event

	ready     chan struct{}
	readyOnce sync.Once

	runCtx    context.Context
	runCancel context.CancelFunc
	wg        sync.WaitGroup

	parser cron.Parser
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))

	gw, err := discord.New(discord.Config{Token: cfg.Discord.Token},
		log.With(logx.String("comp", "discord")))
	if err != nil {
		return nil, err
	}

	a := &App{
		cfgm:   cfgm,
		logs:   logSvc,
		log:    log,
		gw:     gw,
		events: make(chan gateway.Event, 256),
		ready:  make(chan struct{}),
		// 5-field specs plus descriptors like "@every 15s".
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
	cfgm.SetLogger(log.With(logx.String("comp", "config")))
	cfgm.SetValidator(a.validateConfig)
	if err := a.validateConfig(context.Background(), cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// Ready is closed once the gateway reported readiness and the schedules run.
func (a *App) Ready() <-chan struct{} { return a.ready }

func (a *App) validateConfig(_ context.Context, cfg *config.Config) error {
	if _, err := cfg.Announce.Interval(); err != nil {
		return err
	}
	if _, err := cfg.Source.RequestTimeout(); err != nil {
		return err
	}
	if _, err := cfg.Store.BusyTimeoutDuration(); err != nil {
		return err
	}
	if spec := strings.TrimSpace(cfg.DatePoll.Cron); spec != "" {
		if _, err := a.parser.Parse(spec); err != nil {
			return fmt.Errorf("datepoll.cron: invalid %q: %w", spec, err)
		}
	}
	if tz := strings.TrimSpace(cfg.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("timezone: invalid %q: %w", tz, err)
		}
	}
	return nil
}

func (a *App) Start(ctx context.Context) error {
	cfg := a.cfgm.Get()
	a.runCtx, a.runCancel = context.WithCancel(context.Background())

	busyTimeout, err := cfg.Store.BusyTimeoutDuration()
	if err != nil {
		return err
	}
	st, err := store.Open(ctx, store.Config{
		Driver:      cfg.Store.Driver,
		URI:         cfg.Store.URI,
		Database:    cfg.Store.Database,
		Collection:  cfg.Store.Collection,
		Path:        cfg.Store.Path,
		BusyTimeout: busyTimeout,
	}, a.log.With(logx.String("comp", "store")))
	if err != nil {
		return err
	}
	a.st = st

	srcTimeout, err := cfg.Source.RequestTimeout()
	if err != nil {
		return err
	}
	httpClient := &http.Client{Timeout: srcTimeout}
	srcLog := a.log.With(logx.String("comp", "source"))
	chain := source.NewChain(srcLog,
		source.NewTZInfo(cfg.Source.TZInfoURL, httpClient, srcLog),
		source.NewRuneWizard(source.RuneWizardConfig{
			URL:      cfg.Source.RuneWizardURL,
			APIToken: cfg.Source.APIToken,
			Contact:  cfg.Source.Contact,
			Platform: cfg.Source.Platform,
			Repo:     cfg.Source.Repo,
		}, httpClient, srcLog),
	)

	a.announcer = announcer.New(
		announcer.Config{RatePerSec: cfg.Announce.RatePerSec},
		chain, st, a.gw,
		a.resolver(func(c *config.Config) ([]string, []string) {
			return c.Announce.Guilds, c.Announce.Channels
		}),
		a.log.With(logx.String("comp", "announcer")),
	)

	mir, err := mirror.New(mirror.Config{
		Enabled: cfg.Telegram.Enabled,
		Token:   cfg.Telegram.Token,
		ChatIDs: cfg.Telegram.ChatIDs,
	}, a.log.With(logx.String("comp", "mirror")))
	if err != nil {
		return err
	}
	if mir != nil {
		a.announcer.SetMirror(mir)
	}

	a.datepoll = datepoll.New(a.gw,
		a.resolver(func(c *config.Config) ([]string, []string) {
			return c.DatePoll.Guilds, c.DatePoll.Channels
		}),
		a.log.With(logx.String("comp", "datepoll")),
	)

	a.moderator = moderator.New(a.gw, a.log.With(logx.String("comp", "moderator")))

	if err := a.gw.Start(a.runCtx, a.events); err != nil {
		return err
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.eventLoop(a.runCtx)
	}()

	// Hot reload only re-applies logging; channel lists and schedules are
	// re-read through the resolver on every run anyway.
	sub := a.cfgm.Subscribe(8)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-a.runCtx.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				a.logs.Apply(logx.Config{
					Level:   newCfg.Logging.Level,
					Console: newCfg.Logging.Console,
					File: logx.FileConfig{
						Enabled: newCfg.Logging.File.Enabled,
						Path:    newCfg.Logging.File.Path,
					},
				})
			}
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.cfgm.Watch(a.runCtx); err != nil && a.runCtx.Err() == nil {
			a.log.Warn("config watch stopped", logx.Err(err))
		}
	}()

	a.log.Info("app started")
	return nil
}

// resolver builds a live Resolver from the current config, so channel-name
// edits take effect on the next run without a restart.
func (a *App) resolver(pick func(*config.Config) ([]string, []string)) func() ([]gateway.ChannelTarget, error) {
	return func() ([]gateway.ChannelTarget, error) {
		cfg := a.cfgm.Get()
		if cfg == nil {
			return nil, nil
		}
		guilds, channels := pick(cfg)
		return gateway.ResolveChannels(a.gw, guilds, channels)
	}
}

func (a *App) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-a.events:
			switch ev.Kind {
			case gateway.EventReady:
				// Discord re-emits ready after reconnects; the schedules must
				// only be registered once.
				a.startSchedules(ctx)
				a.readyOnce.Do(func() { close(a.ready) })
			case gateway.EventReactionAdded:
				if ev.Reaction != nil {
					a.moderator.HandleReactionAdd(ctx, ev.Reaction)
				}
			}
		}
	}
}

func (a *App) startSchedules(ctx context.Context) {
	a.cronOnce.Do(func() {
		cfg := a.cfgm.Get()

		tz := strings.TrimSpace(cfg.Timezone)
		if tz == "" {
			tz = defaultTimezone
		}
		loc, err := time.LoadLocation(tz)
		if err != nil {
			a.log.Warn("invalid timezone, falling back to UTC", logx.String("tz", tz), logx.Err(err))
			loc = time.UTC
		}

		every, err := cfg.Announce.Interval()
		if err != nil {
			// Load() and the watch validator both checked this already.
			a.log.Warn("invalid announce interval", logx.Err(err))
			return
		}
		spec := strings.TrimSpace(cfg.DatePoll.Cron)
		if spec == "" {
			spec = defaultCronSpec
		}

		a.cron = cron.New(cron.WithParser(a.parser), cron.WithLocation(loc))
		_, _ = a.cron.AddFunc(fmt.Sprintf("@every %s", every), func() {
			a.announcer.RunOnce(ctx)
		})
		if _, err := a.cron.AddFunc(spec, func() {
			a.datepoll.RunOnce(ctx)
		}); err != nil {
			a.log.Error("registering date poll schedule failed", logx.String("spec", spec), logx.Err(err))
		}
		a.cron.Start()

		a.log.Info("schedules started",
			logx.Duration("announce_every", every),
			logx.String("datepoll_cron", spec),
			logx.String("tz", loc.String()))
	})
}

// Stop shuts the app down in order: schedules first so no new run starts,
// then the gateway, then the store. Bounded by the caller's context.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("stopping")
	if a.runCancel != nil {
		a.runCancel()
	}

	if a.cron != nil {
		select {
		case <-a.cron.Stop().Done():
		case <-ctx.Done():
			a.log.Warn("cron jobs still running at shutdown deadline")
		}
	}

	if a.gw != nil {
		if err := a.gw.Stop(ctx); err != nil {
			a.log.Warn("gateway stop failed", logx.Err(err))
		}
	}
	if a.st != nil {
		if err := a.st.Close(ctx); err != nil {
			a.log.Warn("store close failed", logx.Err(err))
		}
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return a.logs.Close()
}

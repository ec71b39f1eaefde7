// Package source fetches the current terror zone prediction from the
// external feeds and normalizes it into zone records.
//
// Two backends exist: the tzinfo-style feed (primary; knows the next hour
// too) and the runewizard API (fallback; best-probability zone only). The
// Chain tries them in order and reports ErrNoData when every backend fails,
// which callers treat as "nothing to report this cycle".
package source

import (
	"context"
	"errors"

	"tzbot/internal/zone"
	"tzbot/pkg/logx"
)

var (
	// ErrNoData means no backend produced a usable zone this cycle.
	ErrNoData = errors.New("no zone data available")
	// ErrNoMatch means the feed had no entry for the expected timestamp.
	ErrNoMatch = errors.New("no feed entry for expected timestamp")
	// ErrBadPayload means the feed answered with an unexpected shape.
	ErrBadPayload = errors.New("malformed feed payload")
)

// Fetcher is one feed backend.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]zone.Record, error)
}

// Chain tries its backends in fallback order.
type Chain struct {
	backends []Fetcher
	log      logx.Logger
}

func NewChain(log logx.Logger, backends ...Fetcher) *Chain {
	return &Chain{backends: backends, log: log}
}

func (c *Chain) Name() string { return "chain" }

// Fetch returns the first backend's records, falling through on failure.
// All backends failing is ErrNoData, never a reason to abort the process.
func (c *Chain) Fetch(ctx context.Context) ([]zone.Record, error) {
	for _, b := range c.backends {
		recs, err := b.Fetch(ctx)
		if err != nil {
			c.log.Warn("zone backend failed, falling through",
				logx.String("backend", b.Name()), logx.Err(err))
			continue
		}
		if len(recs) == 0 {
			continue
		}
		return recs, nil
	}
	return nil, ErrNoData
}

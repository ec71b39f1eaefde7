package config

import (
	"fmt"
	"strings"
	"time"
)

// Duration fields in the file are plain Go duration strings ("15s",
// "250ms"). Empty means the default; negative values are rejected.

const (
	defaultAnnounceEvery = 15 * time.Second
	defaultSourceTimeout = 8 * time.Second
)

func parseDuration(field, raw string, def time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	switch {
	case err != nil:
		return 0, fmt.Errorf("%s: %w", field, err)
	case d < 0:
		return 0, fmt.Errorf("%s: negative duration %q", field, raw)
	}
	return d, nil
}

// Interval is the announce poll interval.
func (c AnnounceConfig) Interval() (time.Duration, error) {
	return parseDuration("announce.every", c.Every, defaultAnnounceEvery)
}

// RequestTimeout bounds every feed HTTP request.
func (c SourceConfig) RequestTimeout() (time.Duration, error) {
	return parseDuration("source.timeout", c.Timeout, defaultSourceTimeout)
}

// BusyTimeoutDuration is the sqlite busy timeout; zero leaves the driver
// default in place.
func (c StoreConfig) BusyTimeoutDuration() (time.Duration, error) {
	return parseDuration("store.busy_timeout", c.BusyTimeout, 0)
}

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tzbot/internal/zone"
	"tzbot/pkg/dateutil"
	"tzbot/pkg/logx"
)

// TZInfo queries a tzinfo-style feed: a JSON document listing the predicted
// zone id per hour. It yields the zone for the current hour (required) and
// the next hour (when the feed already knows it).
type TZInfo struct {
	url    string
	client *http.Client
	log    logx.Logger

	// now is swappable for tests.
	now func() time.Time
}

type tzinfoResponse struct {
	Status string        `json:"status"`
	Data   []tzinfoEntry `json:"data"`
}

type tzinfoEntry struct {
	Time int64 `json:"time"`
	Zone int   `json:"zone"`
}

func NewTZInfo(url string, client *http.Client, log logx.Logger) *TZInfo {
	if client == nil {
		client = &http.Client{Timeout: 8 * time.Second}
	}
	return &TZInfo{url: url, client: client, log: log, now: time.Now}
}

func (t *TZInfo) Name() string { return "tzinfo" }

func (t *TZInfo) Fetch(ctx context.Context) ([]zone.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tzinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tzinfo status %d: %w", resp.StatusCode, ErrBadPayload)
	}

	var body tzinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("tzinfo decode: %w (%v)", ErrBadPayload, err)
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("tzinfo status %q: %w", body.Status, ErrBadPayload)
	}

	now := t.now()
	current := dateutil.RoundDownHour(now)
	next := dateutil.RoundUpHour(now)

	var recs []zone.Record
	if rec, ok := t.match(body.Data, current); ok {
		recs = append(recs, rec)
	} else {
		// The feed not knowing the running hour is a hard failure for this
		// cycle; without it we cannot trust the prediction at all.
		return nil, fmt.Errorf("tzinfo: %w (want %s)", ErrNoMatch, current.Format(time.RFC3339))
	}
	if rec, ok := t.match(body.Data, next); ok {
		recs = append(recs, rec)
	}
	return recs, nil
}

func (t *TZInfo) match(entries []tzinfoEntry, want time.Time) (zone.Record, bool) {
	for _, e := range entries {
		at := time.Unix(e.Time, 0).In(want.Location())
		if !at.Equal(want) {
			continue
		}
		info, ok := zone.Lookup(e.Zone)
		if !ok {
			t.log.Warn("tzinfo entry references unknown zone id", logx.Int("zone_id", e.Zone))
			return zone.Record{}, false
		}
		return zone.New(info.Name, info.Act, at), true
	}
	return zone.Record{}, false
}

// Package store persists zone records.
//
// Two backends exist behind the Store interface:
//   - "mongo": the production backend, addressed by connection string,
//     database and collection name
//   - "sqlite": a single-file local backend for development
//
// Both enforce upsert semantics on the (name, time) composite key: for a
// given key at most one record ever exists.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"tzbot/internal/zone"
	"tzbot/pkg/logx"
)

type Config struct {
	Driver string

	// mongo
	URI        string
	Database   string
	Collection string

	// sqlite
	Path        string
	BusyTimeout time.Duration // 0 means default
}

// Store is the persistence API used by the announcement engine.
type Store interface {
	// GetByTime looks up the record for t (truncated to the half-hour
	// boundary). A missing record is (nil, nil), not an error.
	GetByTime(ctx context.Context, t time.Time) (*zone.Record, error)

	// Upsert inserts the record, or overwrites all fields if the composite
	// key already exists.
	Upsert(ctx context.Context, rec zone.Record) error

	// SetIfAbsent inserts only when the composite key is absent and reports
	// whether an insert happened. Safe against concurrent fetch cycles
	// observing the same period.
	SetIfAbsent(ctx context.Context, rec zone.Record) (bool, error)

	// Update overwrites the fields of an existing record; a missing key is
	// a no-op.
	Update(ctx context.Context, rec zone.Record) error

	// ListUnannounced returns every record with announced=false, unordered.
	ListUnannounced(ctx context.Context) ([]zone.Record, error)

	Close(ctx context.Context) error
}

// Open initializes the configured store.
func Open(ctx context.Context, cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "mongo", "mongodb":
		return openMongo(ctx, cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown store driver: " + cfg.Driver)
	}
}

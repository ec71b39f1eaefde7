package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tzbot/internal/zone"
	"tzbot/pkg/dateutil"
	"tzbot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Debug("sqlite store opened", logx.String("path", path))
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close(context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) GetByTime(ctx context.Context, t time.Time) (*zone.Record, error) {
	t = dateutil.RoundDownHalfHour(t)
	row := s.db.QueryRowContext(ctx,
		`SELECT name, act, time, announced FROM zones WHERE time = ?`, t.UnixMilli())
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *sqliteStore) Upsert(ctx context.Context, rec zone.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO zones(name, time, act, announced) VALUES(?,?,?,?)
		 ON CONFLICT(name, time) DO UPDATE SET act=excluded.act, announced=excluded.announced`,
		rec.Name, rec.Time.UnixMilli(), rec.Act, boolInt(rec.Announced))
	return err
}

func (s *sqliteStore) SetIfAbsent(ctx context.Context, rec zone.Record) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO zones(name, time, act, announced) VALUES(?,?,?,?)
		 ON CONFLICT(name, time) DO NOTHING`,
		rec.Name, rec.Time.UnixMilli(), rec.Act, boolInt(rec.Announced))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *sqliteStore) Update(ctx context.Context, rec zone.Record) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE zones SET act = ?, announced = ? WHERE name = ? AND time = ?`,
		rec.Act, boolInt(rec.Announced), rec.Name, rec.Time.UnixMilli())
	return err
}

func (s *sqliteStore) ListUnannounced(ctx context.Context) ([]zone.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, act, time, announced FROM zones WHERE announced = 0`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []zone.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (zone.Record, error) {
	var (
		rec       zone.Record
		ms        int64
		announced int
	)
	if err := row.Scan(&rec.Name, &rec.Act, &ms, &announced); err != nil {
		return zone.Record{}, err
	}
	rec.Time = time.UnixMilli(ms).UTC()
	rec.Announced = announced != 0
	return rec, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package store

import (
	"context"
	"testing"
	"time"

	"tzbot/internal/zone"
	"tzbot/pkg/logx"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	st, err := openSQLite(Config{Driver: "sqlite", Path: ":memory:"}, logx.Nop())
	if err != nil {
		t.Fatalf("openSQLite: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

func TestSetIfAbsent(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	rec := zone.New("Tristram", 1, time.Date(2023, time.May, 24, 14, 0, 0, 0, time.UTC))

	inserted, err := st.SetIfAbsent(ctx, rec)
	if err != nil {
		t.Fatalf("SetIfAbsent: %v", err)
	}
	if !inserted {
		t.Fatal("first SetIfAbsent should insert")
	}

	// Same period observed again must be a no-op.
	inserted, err = st.SetIfAbsent(ctx, rec)
	if err != nil {
		t.Fatalf("SetIfAbsent: %v", err)
	}
	if inserted {
		t.Fatal("second SetIfAbsent should not insert")
	}

	got, err := st.ListUnannounced(ctx)
	if err != nil {
		t.Fatalf("ListUnannounced: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
}

func TestUpsertAndUpdate(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	at := time.Date(2023, time.May, 24, 14, 30, 0, 0, time.UTC)
	rec := zone.New("The Pit", 1, at)

	if err := st.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	// Upsert with the same key must overwrite, not duplicate.
	rec.Announced = true
	if err := st.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := st.GetByTime(ctx, at.Add(15*time.Minute)) // 14:45 truncates to 14:30
	if err != nil {
		t.Fatalf("GetByTime: %v", err)
	}
	if got == nil {
		t.Fatal("record missing after upsert")
	}
	if !got.Announced {
		t.Fatal("announced flag not overwritten")
	}

	unannounced, err := st.ListUnannounced(ctx)
	if err != nil {
		t.Fatalf("ListUnannounced: %v", err)
	}
	if len(unannounced) != 0 {
		t.Fatalf("got %d unannounced, want 0", len(unannounced))
	}

	// Update of a missing key is a no-op.
	other := zone.New("Tristram", 1, at.Add(time.Hour))
	if err := st.Update(ctx, other); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, _ := st.GetByTime(ctx, other.Time); got != nil {
		t.Fatal("update must not insert")
	}
}

func TestGetByTimeMissing(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)

	got, err := st.GetByTime(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("GetByTime: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil", got)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(context.Background(), Config{Driver: "postgres"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

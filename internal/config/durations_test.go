package config

import (
	"testing"
	"time"
)

func TestDurationAccessors(t *testing.T) {
	t.Parallel()

	t.Run("defaults on empty", func(t *testing.T) {
		t.Parallel()
		if d, err := (AnnounceConfig{}).Interval(); err != nil || d != 15*time.Second {
			t.Fatalf("Interval() = %v, %v", d, err)
		}
		if d, err := (SourceConfig{}).RequestTimeout(); err != nil || d != 8*time.Second {
			t.Fatalf("RequestTimeout() = %v, %v", d, err)
		}
		if d, err := (StoreConfig{}).BusyTimeoutDuration(); err != nil || d != 0 {
			t.Fatalf("BusyTimeoutDuration() = %v, %v", d, err)
		}
	})

	t.Run("explicit value", func(t *testing.T) {
		t.Parallel()
		d, err := AnnounceConfig{Every: "90s"}.Interval()
		if err != nil {
			t.Fatalf("Interval: %v", err)
		}
		if d != 90*time.Second {
			t.Fatalf("Interval() = %v", d)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		t.Parallel()
		if _, err := (SourceConfig{Timeout: "soon"}).RequestTimeout(); err == nil {
			t.Fatal("expected error for unparsable duration")
		}
	})

	t.Run("negative rejected", func(t *testing.T) {
		t.Parallel()
		if _, err := (StoreConfig{BusyTimeout: "-1s"}).BusyTimeoutDuration(); err == nil {
			t.Fatal("expected error for negative duration")
		}
	})
}

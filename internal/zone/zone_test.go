package zone

import (
	"testing"
	"time"
)

func TestNewTruncatesToHalfHour(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"below half", time.Date(2023, 5, 24, 14, 12, 33, 0, time.UTC), time.Date(2023, 5, 24, 14, 0, 0, 0, time.UTC)},
		{"above half", time.Date(2023, 5, 24, 14, 45, 0, 0, time.UTC), time.Date(2023, 5, 24, 14, 30, 0, 0, time.UTC)},
		{"exact boundary", time.Date(2023, 5, 24, 14, 30, 0, 0, time.UTC), time.Date(2023, 5, 24, 14, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := New("Tristram", 1, tc.in)
			if !rec.Time.Equal(tc.want) {
				t.Fatalf("Time = %v, want %v", rec.Time, tc.want)
			}
			if rec.Announced {
				t.Fatal("new record must start unannounced")
			}
		})
	}
}

func TestRecordString(t *testing.T) {
	t.Parallel()

	rec := New("Chaos Sanctuary", 4, time.Date(2023, 5, 24, 14, 0, 0, 0, time.UTC))
	if got, want := rec.String(), "TZ :: 2023-05-24 14:00 :: Chaos Sanctuary"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	info, ok := Lookup(29)
	if !ok {
		t.Fatal("expected id 29 to resolve")
	}
	if info.Name != "Chaos Sanctuary" || info.Act != 4 {
		t.Fatalf("Lookup(29) = %+v", info)
	}

	if _, ok := Lookup(9999); ok {
		t.Fatal("unknown id must not resolve")
	}
}

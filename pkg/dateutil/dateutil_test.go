package dateutil

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestNextMonday(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		// 2023-05-22 is a Monday.
		{name: "monday advances a full week", in: date(2023, time.May, 22, 10, 0), want: date(2023, time.May, 29, 0, 0)},
		{name: "tuesday", in: date(2023, time.May, 23, 0, 0), want: date(2023, time.May, 29, 0, 0)},
		{name: "sunday", in: date(2023, time.May, 28, 23, 59), want: date(2023, time.May, 29, 0, 0)},
		{name: "saturday evening trigger", in: date(2023, time.May, 27, 20, 30), want: date(2023, time.May, 29, 0, 0)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := NextMonday(tt.in); !got.Equal(tt.want) {
				t.Fatalf("NextMonday(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundDownHalfHour(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{name: "minute 0", in: date(2023, time.May, 24, 14, 0), want: date(2023, time.May, 24, 14, 0)},
		{name: "minute 29", in: date(2023, time.May, 24, 14, 29), want: date(2023, time.May, 24, 14, 0)},
		{name: "minute 30", in: date(2023, time.May, 24, 14, 30), want: date(2023, time.May, 24, 14, 30)},
		{name: "minute 59", in: date(2023, time.May, 24, 14, 59), want: date(2023, time.May, 24, 14, 30)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundDownHalfHour(tt.in); !got.Equal(tt.want) {
				t.Fatalf("RoundDownHalfHour(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundHours(t *testing.T) {
	t.Parallel()
	in := date(2023, time.May, 24, 14, 35)
	if got := RoundDownHour(in); !got.Equal(date(2023, time.May, 24, 14, 0)) {
		t.Fatalf("RoundDownHour = %v", got)
	}
	if got := RoundUpHour(in); !got.Equal(date(2023, time.May, 24, 15, 0)) {
		t.Fatalf("RoundUpHour = %v", got)
	}
}

func TestFormatGerman(t *testing.T) {
	t.Parallel()
	// 2023-05-24 is a Wednesday.
	got := FormatGerman(date(2023, time.May, 24, 14, 5))
	if got != "Mi, 24.05. 14:05 Uhr" {
		t.Fatalf("FormatGerman = %q", got)
	}

	// 2023-05-28 is a Sunday (index wrap).
	got = FormatGerman(date(2023, time.May, 28, 20, 0))
	if got != "So, 28.05. 20:00 Uhr" {
		t.Fatalf("FormatGerman = %q", got)
	}
}

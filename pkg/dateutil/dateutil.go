// Package dateutil holds the calendar arithmetic shared by the zone store
// keying and the weekly date poll.
package dateutil

import (
	"fmt"
	"time"
)

// German weekday abbreviations indexed Monday=0 .. Sunday=6.
var weekdayAbbrev = [7]string{"Mo", "Di", "Mi", "Do", "Fr", "Sa", "So"}

// NextMonday returns midnight of the Monday strictly after t.
// If t already is a Monday, the result is a full week ahead.
func NextMonday(t time.Time) time.Time {
	t = RoundDownDay(t)
	return t.AddDate(0, 0, 7-mondayIndex(t.Weekday()))
}

// mondayIndex maps time.Weekday (Sunday=0) onto Monday=0 .. Sunday=6.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// RoundDownDay truncates t to midnight in its own location.
func RoundDownDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// RoundDownHour truncates t to the top of the hour.
func RoundDownHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// RoundUpHour truncates t to the top of the hour, then advances one hour.
func RoundUpHour(t time.Time) time.Time {
	return RoundDownHour(t).Add(time.Hour)
}

// RoundDownHalfHour truncates t to the preceding half-hour boundary:
// minutes 0-29 become :00, minutes 30-59 become :30.
func RoundDownHalfHour(t time.Time) time.Time {
	m := 0
	if t.Minute() >= 30 {
		m = 30
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), m, 0, 0, t.Location())
}

// FormatGerman renders t like "Mi, 24.05. 14:05 Uhr".
func FormatGerman(t time.Time) string {
	return fmt.Sprintf("%s, %s Uhr", weekdayAbbrev[mondayIndex(t.Weekday())], t.Format("02.01. 15:04"))
}

// Package zone defines the terror zone record persisted and announced by the
// bot, plus the static lookup table resolving feed zone ids.
package zone

import (
	"fmt"
	"time"

	"tzbot/pkg/dateutil"
)

// Record is one observed or predicted terror zone.
//
// Identity is the (Name, Time) pair; Time is always truncated to the
// half-hour boundary so repeated fetches of the same period collide on the
// same key. Announced is the only field that changes after creation.
type Record struct {
	Name      string
	Act       int
	Time      time.Time
	Announced bool
}

// New builds an unannounced record with the time truncated for keying.
func New(name string, act int, t time.Time) Record {
	return Record{Name: name, Act: act, Time: dateutil.RoundDownHalfHour(t)}
}

func (r Record) String() string {
	return fmt.Sprintf("TZ :: %s :: %s", r.Time.Format("2006-01-02 15:04"), r.Name)
}

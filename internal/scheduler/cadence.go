package scheduler

import (
	"math"
	"time"
)

// Polling cadence tiers by days until departure. Entities outside the
// 1..90 day window are not monitored at all.
const (
	nearInterval = 6 * time.Hour
	midInterval  = 24 * time.Hour
	farInterval  = 72 * time.Hour

	windowMaxDays = 90
)

// CheckInterval returns the polling interval for an entity departing at
// departure, evaluated at now. ok is false when the departure falls outside
// the monitoring window: already departed, or further than 90 days out.
func CheckInterval(now, departure time.Time) (time.Duration, bool) {
	days := daysUntil(now, departure)
	switch {
	case days < 1 || days > windowMaxDays:
		return 0, false
	case days <= 7:
		return nearInterval, true
	case days <= 30:
		return midInterval, true
	default:
		return farInterval, true
	}
}

// daysUntil counts started days between now and departure. A departure
// 36 hours away is 2 days out.
func daysUntil(now, departure time.Time) int {
	return int(math.Ceil(departure.Sub(now).Hours() / 24))
}

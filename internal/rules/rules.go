// Package rules contains the alert decision functions. Every evaluator is a
// pure function over a baseline and a live observation: no I/O, no evaluator
// depends on another's output. Thresholds use minute-granularity absolute
// differences and under-threshold ties never alert.
package rules

import (
	"time"

	"travel-guardian-backend/internal/model"
	"travel-guardian-backend/internal/provider"
)

// Delay and schedule thresholds, in minutes.
const (
	DisruptionDelayMin     = 180
	ScheduleChangeMin      = 15
	ScheduleChangeCritical = 180
	ConnectionRiskMin      = 45
	UpgradeRatioMax        = 1.5
)

// Config carries the tunable money constants. Compensation is a flat value,
// not distance-tiered.
type Config struct {
	Compensation    float64
	CompensationCcy string
	AwardCeiling    float64
	AwardCeilingCcy string
}

// Result is an alert descriptor produced by an evaluator. SegmentID is zero
// for trip- or route-level results.
type Result struct {
	Type           model.AlertType
	Severity       model.AlertSeverity
	SegmentID      uint
	Title          string
	Message        string
	PotentialValue string
	ActionLabel    string
}

// minutesBetween returns the signed whole-minute difference b-a.
func minutesBetween(a, b time.Time) int {
	return int(b.Sub(a) / time.Minute)
}

// liveDeparture returns the departure time to reason about for a segment:
// the published schedule change when one exists, otherwise the baseline.
func liveDeparture(seg model.FlightSegment, live *provider.LiveStatus) time.Time {
	if live != nil && live.ScheduleChange != nil {
		return live.ScheduleChange.NewDeparture
	}
	return seg.ScheduledDeparture
}

// liveArrival returns the arrival time to reason about for a segment,
// folding in any published change and the live delay.
func liveArrival(seg model.FlightSegment, live *provider.LiveStatus) time.Time {
	arrival := seg.ScheduledArrival
	if live != nil && live.ScheduleChange != nil {
		arrival = live.ScheduleChange.NewArrival
	}
	if live != nil && live.DelayMinutes > 0 {
		arrival = arrival.Add(time.Duration(live.DelayMinutes) * time.Minute)
	}
	return arrival
}

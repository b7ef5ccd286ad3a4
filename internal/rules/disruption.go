package rules

import (
	"fmt"

	"travel-guardian-backend/internal/model"
	"travel-guardian-backend/internal/provider"
)

// Disruption fires when a segment is cancelled or delayed by at least
// DisruptionDelayMin minutes. The compensation amount is the flat configured
// value.
func Disruption(seg model.FlightSegment, live *provider.LiveStatus, cfg Config) *Result {
	if live == nil {
		return nil
	}

	value := fmt.Sprintf("%.0f %s", cfg.Compensation, cfg.CompensationCcy)

	if live.Status == provider.StateCancelled {
		return &Result{
			Type:      model.AlertDisruption,
			Severity:  model.SeverityCritical,
			SegmentID: seg.ID,
			Title:     "Flight cancelled",
			Message: fmt.Sprintf("Flight %s%s is CANCELLED. You are entitled to %s cash compensation.",
				seg.CarrierCode, seg.FlightNumber, value),
			PotentialValue: value,
			ActionLabel:    "Open claim file",
		}
	}

	if live.DelayMinutes < DisruptionDelayMin {
		return nil
	}

	return &Result{
		Type:      model.AlertDisruption,
		Severity:  model.SeverityCritical,
		SegmentID: seg.ID,
		Title:     "Compensation rights triggered",
		Message: fmt.Sprintf("Flight %s%s is delayed %dh %dmin. You are entitled to %s cash compensation.",
			seg.CarrierCode, seg.FlightNumber, live.DelayMinutes/60, live.DelayMinutes%60, value),
		PotentialValue: value,
		ActionLabel:    "Open claim file",
	}
}

package rules

import (
	"fmt"

	"travel-guardian-backend/internal/model"
	"travel-guardian-backend/internal/provider"
)

// ScheduleChange fires when the published departure moves at least
// ScheduleChangeMin minutes from the baseline. Moves of three hours or more,
// or any move to an earlier departure, are critical: an earlier departure
// can silently strand a passenger who shows up on the old timetable.
func ScheduleChange(seg model.FlightSegment, live *provider.LiveStatus) *Result {
	if live == nil || live.ScheduleChange == nil {
		return nil
	}

	diff := minutesBetween(seg.ScheduledDeparture, live.ScheduleChange.NewDeparture)
	abs := diff
	if abs < 0 {
		abs = -abs
	}
	if abs < ScheduleChangeMin {
		return nil
	}

	earlier := diff < 0
	severity := model.SeverityWarning
	title := "Flight schedule changed"
	if abs >= ScheduleChangeCritical || earlier {
		severity = model.SeverityCritical
		title = "Critical schedule change"
	}

	direction := "later"
	if earlier {
		direction = "earlier"
	}

	return &Result{
		Type:      model.AlertScheduleChange,
		Severity:  severity,
		SegmentID: seg.ID,
		Title:     title,
		Message: fmt.Sprintf("Flight %s%s now departs %d minutes %s. Old: %s, new: %s. You may be entitled to a free change or refund.",
			seg.CarrierCode, seg.FlightNumber, abs, direction,
			seg.ScheduledDeparture.UTC().Format("2006-01-02 15:04"),
			live.ScheduleChange.NewDeparture.UTC().Format("2006-01-02 15:04")),
		ActionLabel: "Review new schedule",
	}
}

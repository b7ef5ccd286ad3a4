package rules

import (
	"fmt"

	"travel-guardian-backend/internal/model"
	"travel-guardian-backend/internal/parse"
	"travel-guardian-backend/internal/provider"
)

// SeatComfort is the seat spy: it fires when the deterministic neighbor of
// the user's recorded seat flips from empty to occupied since the last
// check. Segments without a recorded seat, seats outside the adjacency
// table, and first observations (no baseline yet) produce nothing.
func SeatComfort(seg model.FlightSegment, seats provider.SeatMap) *Result {
	if seg.Seat == "" || seats == nil {
		return nil
	}

	neighbor, err := parse.Neighbor(seg.Seat)
	if err != nil {
		return nil
	}

	current, ok := seats[neighbor]
	if !ok {
		return nil
	}

	if seg.NeighborStatus != model.SeatEmpty || current != model.SeatOccupied {
		return nil
	}

	return &Result{
		Type:      model.AlertSeatSpy,
		Severity:  model.SeverityWarning,
		SegmentID: seg.ID,
		Title:     "Your neighbor seat was just taken",
		Message: fmt.Sprintf("Seat %s next to your seat %s on %s%s is now occupied. Want to move somewhere emptier?",
			neighbor, seg.Seat, seg.CarrierCode, seg.FlightNumber),
		ActionLabel: "Change seat",
	}
}

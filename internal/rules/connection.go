package rules

import (
	"fmt"
	"sort"

	"travel-guardian-backend/internal/model"
	"travel-guardian-backend/internal/provider"
)

// ConnectionRisk walks the adjacent segment pairs of a multi-leg trip and
// fires when the layover shrinks below ConnectionRiskMin minutes. Live
// delays and schedule changes are folded into the comparison; a negative
// gap is a data error and is skipped, not alerted. The result is attached
// to the arriving segment.
func ConnectionRisk(segments []model.FlightSegment, live map[uint]*provider.LiveStatus) []Result {
	if len(segments) < 2 {
		return nil
	}

	ordered := make([]model.FlightSegment, len(segments))
	copy(ordered, segments)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SegmentOrder < ordered[j].SegmentOrder
	})

	var results []Result
	for i := 0; i < len(ordered)-1; i++ {
		inbound := ordered[i]
		outbound := ordered[i+1]

		arrival := liveArrival(inbound, live[inbound.ID])
		departure := liveDeparture(outbound, live[outbound.ID])

		gap := minutesBetween(arrival, departure)
		if gap < 0 {
			continue
		}
		if gap >= ConnectionRiskMin {
			continue
		}

		results = append(results, Result{
			Type:      model.AlertConnectionRisk,
			Severity:  model.SeverityCritical,
			SegmentID: inbound.ID,
			Title:     "Tight connection at " + inbound.Destination,
			Message: fmt.Sprintf("Only %d minutes remain for your connection in %s (arriving %s%s, departing %s%s). Ask for an express connection on arrival.",
				gap, inbound.Destination,
				inbound.CarrierCode, inbound.FlightNumber,
				outbound.CarrierCode, outbound.FlightNumber),
			ActionLabel: "Open airport map",
		})
	}
	return results
}

package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-guardian-backend/internal/model"
	"travel-guardian-backend/internal/provider"
)

var testCfg = Config{
	Compensation:    600,
	CompensationCcy: "EUR",
	AwardCeiling:    1000,
	AwardCeilingCcy: "EUR",
}

func testSegment() model.FlightSegment {
	dep := time.Date(2026, 4, 24, 14, 0, 0, 0, time.UTC)
	return model.FlightSegment{
		ID:                 7,
		TripID:             1,
		SegmentOrder:       1,
		CarrierCode:        "TK",
		FlightNumber:       "16",
		Origin:             "BNE",
		Destination:        "IST",
		ScheduledDeparture: dep,
		ScheduledArrival:   dep.Add(15 * time.Hour),
		CabinClass:         "ECONOMY",
	}
}

func TestDisruption_DelayThreshold(t *testing.T) {
	seg := testSegment()

	assert.Nil(t, Disruption(seg, &provider.LiveStatus{Status: provider.StateDelayed, DelayMinutes: 179}, testCfg))

	res := Disruption(seg, &provider.LiveStatus{Status: provider.StateDelayed, DelayMinutes: 180}, testCfg)
	require.NotNil(t, res)
	assert.Equal(t, model.AlertDisruption, res.Type)
	assert.Equal(t, model.SeverityCritical, res.Severity)
	assert.Equal(t, "600 EUR", res.PotentialValue)
	assert.Equal(t, seg.ID, res.SegmentID)
}

func TestDisruption_Cancellation(t *testing.T) {
	res := Disruption(testSegment(), &provider.LiveStatus{Status: provider.StateCancelled}, testCfg)
	require.NotNil(t, res)
	assert.Equal(t, model.SeverityCritical, res.Severity)
	assert.Contains(t, res.Message, "CANCELLED")
}

func TestScheduleChange_Thresholds(t *testing.T) {
	seg := testSegment()

	change := func(minutes int) *provider.LiveStatus {
		return &provider.LiveStatus{
			Status: provider.StateScheduled,
			ScheduleChange: &provider.ScheduleChange{
				NewDeparture: seg.ScheduledDeparture.Add(time.Duration(minutes) * time.Minute),
				NewArrival:   seg.ScheduledArrival.Add(time.Duration(minutes) * time.Minute),
			},
		}
	}

	assert.Nil(t, ScheduleChange(seg, change(14)))

	warn := ScheduleChange(seg, change(15))
	require.NotNil(t, warn)
	assert.Equal(t, model.SeverityWarning, warn.Severity)

	crit := ScheduleChange(seg, change(200))
	require.NotNil(t, crit)
	assert.Equal(t, model.SeverityCritical, crit.Severity)
}

func TestScheduleChange_EarlierIsAlwaysCritical(t *testing.T) {
	seg := testSegment()
	live := &provider.LiveStatus{
		ScheduleChange: &provider.ScheduleChange{
			NewDeparture: seg.ScheduledDeparture.Add(-30 * time.Minute),
			NewArrival:   seg.ScheduledArrival.Add(-30 * time.Minute),
		},
	}

	res := ScheduleChange(seg, live)
	require.NotNil(t, res)
	assert.Equal(t, model.SeverityCritical, res.Severity)
	assert.Contains(t, res.Message, "earlier")
}

func TestConnectionRisk(t *testing.T) {
	arrival := time.Date(2026, 4, 24, 10, 0, 0, 0, time.UTC)
	first := model.FlightSegment{
		ID: 1, SegmentOrder: 1, CarrierCode: "TK", FlightNumber: "16",
		Origin: "BNE", Destination: "SIN",
		ScheduledDeparture: arrival.Add(-8 * time.Hour),
		ScheduledArrival:   arrival,
	}
	second := model.FlightSegment{
		ID: 2, SegmentOrder: 2, CarrierCode: "TK", FlightNumber: "55",
		Origin: "SIN", Destination: "IST",
		ScheduledDeparture: arrival.Add(40 * time.Minute),
		ScheduledArrival:   arrival.Add(12 * time.Hour),
	}

	results := ConnectionRisk([]model.FlightSegment{first, second}, nil)
	require.Len(t, results, 1)
	assert.Equal(t, model.SeverityCritical, results[0].Severity)
	assert.Equal(t, first.ID, results[0].SegmentID)
	assert.Contains(t, results[0].Message, "40 minutes")

	// 50 minute gap is above the risk threshold.
	second.ScheduledDeparture = arrival.Add(50 * time.Minute)
	assert.Empty(t, ConnectionRisk([]model.FlightSegment{first, second}, nil))
}

func TestConnectionRisk_LiveDelayShrinksGap(t *testing.T) {
	arrival := time.Date(2026, 4, 24, 10, 0, 0, 0, time.UTC)
	first := model.FlightSegment{
		ID: 1, SegmentOrder: 1, ScheduledDeparture: arrival.Add(-8 * time.Hour), ScheduledArrival: arrival,
		Destination: "SIN",
	}
	second := model.FlightSegment{
		ID: 2, SegmentOrder: 2, ScheduledDeparture: arrival.Add(90 * time.Minute),
		ScheduledArrival: arrival.Add(12 * time.Hour),
	}

	// A 60 minute inbound delay turns a safe 90 minute layover into 30.
	live := map[uint]*provider.LiveStatus{
		1: {Status: provider.StateDelayed, DelayMinutes: 60},
	}
	results := ConnectionRisk([]model.FlightSegment{first, second}, live)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Message, "30 minutes")
}

func TestConnectionRisk_NegativeGapSkipped(t *testing.T) {
	arrival := time.Date(2026, 4, 24, 10, 0, 0, 0, time.UTC)
	first := model.FlightSegment{ID: 1, SegmentOrder: 1, ScheduledArrival: arrival}
	second := model.FlightSegment{ID: 2, SegmentOrder: 2, ScheduledDeparture: arrival.Add(-20 * time.Minute)}

	assert.Empty(t, ConnectionRisk([]model.FlightSegment{first, second}, nil))
}

func TestConnectionRisk_SingleLegTrip(t *testing.T) {
	assert.Nil(t, ConnectionRisk([]model.FlightSegment{testSegment()}, nil))
}

func TestSeatComfort(t *testing.T) {
	seg := testSegment()
	seg.Seat = "24A"
	seg.NeighborStatus = model.SeatEmpty

	res := SeatComfort(seg, provider.SeatMap{"24B": model.SeatOccupied})
	require.NotNil(t, res)
	assert.Equal(t, model.AlertSeatSpy, res.Type)
	assert.Equal(t, model.SeverityWarning, res.Severity)
	assert.Contains(t, res.Message, "24B")
}

func TestSeatComfort_NoTransitionNoAlert(t *testing.T) {
	seg := testSegment()
	seg.Seat = "24A"

	// First observation: no baseline yet.
	assert.Nil(t, SeatComfort(seg, provider.SeatMap{"24B": model.SeatOccupied}))

	// Already occupied on the previous check.
	seg.NeighborStatus = model.SeatOccupied
	assert.Nil(t, SeatComfort(seg, provider.SeatMap{"24B": model.SeatOccupied}))

	// Still empty.
	seg.NeighborStatus = model.SeatEmpty
	assert.Nil(t, SeatComfort(seg, provider.SeatMap{"24B": model.SeatEmpty}))
}

func TestSeatComfort_NoRecordedSeat(t *testing.T) {
	seg := testSegment()
	assert.Nil(t, SeatComfort(seg, provider.SeatMap{"24B": model.SeatOccupied}))
}

func TestUpgradeOpportunity(t *testing.T) {
	seg := testSegment()
	economy := &provider.FareQuote{Price: 1000, Currency: "EUR"}

	// Ratio 2.0: no deal.
	assert.Nil(t, UpgradeOpportunity(seg, economy, &provider.FareQuote{Price: 2000, Currency: "EUR"}))

	// Ratio 0.9: business below economy, saving reported against economy.
	res := UpgradeOpportunity(seg, economy, &provider.FareQuote{Price: 900, Currency: "EUR"})
	require.NotNil(t, res)
	assert.Equal(t, model.SeverityMoney, res.Severity)
	assert.Equal(t, "10%", res.PotentialValue)

	// Boundary: ratio 1.5 still qualifies.
	assert.NotNil(t, UpgradeOpportunity(seg, economy, &provider.FareQuote{Price: 1500, Currency: "EUR"}))

	// Zero prices are data errors, not deals.
	assert.Nil(t, UpgradeOpportunity(seg, &provider.FareQuote{Price: 0}, &provider.FareQuote{Price: 100}))
}

func TestAwardAvailability(t *testing.T) {
	seg := testSegment()

	res := AwardAvailability(seg, &provider.FareQuote{Price: 850, Currency: "EUR"}, testCfg)
	require.NotNil(t, res)
	assert.Equal(t, model.SeverityInfo, res.Severity)

	// At or above the ceiling: nothing.
	assert.Nil(t, AwardAvailability(seg, &provider.FareQuote{Price: 1000, Currency: "EUR"}, testCfg))

	// Already in business: nothing to upgrade.
	seg.CabinClass = "BUSINESS"
	assert.Nil(t, AwardAvailability(seg, &provider.FareQuote{Price: 850, Currency: "EUR"}, testCfg))
}

func TestPriceDrop(t *testing.T) {
	route := model.Route{OriginCode: "BNE", DestinationCode: "IST", Currency: "EUR"}
	history := []float64{1000, 1000, 1000, 1000}

	// 25% inclusive boundary.
	res := PriceDrop(route, history, 750)
	require.NotNil(t, res)
	assert.Equal(t, model.AlertPriceDrop, res.Type)
	assert.Contains(t, res.Message, "25%")

	assert.Nil(t, PriceDrop(route, history, 751))
	assert.Nil(t, PriceDrop(route, nil, 750))
	assert.Nil(t, PriceDrop(route, history, 0))
}

// Package provider is the boundary to upstream flight-data sources. The
// engine consumes the Adapter interface only; the HTTP implementation
// normalizes heterogeneous upstream responses into the shapes below.
package provider

import (
	"context"
	"errors"
	"time"

	"travel-guardian-backend/internal/model"
)

// FlightState is the normalized live status of a flight.
type FlightState string

const (
	StateScheduled FlightState = "SCHEDULED"
	StateDelayed   FlightState = "DELAYED"
	StateCancelled FlightState = "CANCELLED"
	StateLanded    FlightState = "LANDED"
)

// ScheduleChange carries a published timetable change for a segment.
type ScheduleChange struct {
	NewDeparture time.Time `json:"newDeparture"`
	NewArrival   time.Time `json:"newArrival"`
}

// LiveStatus is the normalized live view of one segment.
type LiveStatus struct {
	Status         FlightState     `json:"status"`
	DelayMinutes   int             `json:"delayMinutes"`
	ScheduleChange *ScheduleChange `json:"scheduleChange,omitempty"`
}

// SeatMap maps seat labels ("24A") to their occupancy.
type SeatMap map[string]model.SeatStatus

// SegmentRef identifies a flight segment to the upstream source.
type SegmentRef struct {
	CarrierCode  string
	FlightNumber string
	Origin       string
	Destination  string
	Departure    time.Time
}

// FareQuery asks for the cheapest fare on a market/date/cabin.
type FareQuery struct {
	Origin      string
	Destination string
	Date        time.Time
	Cabin       string
	Currency    string
}

// FareQuote is a normalized fare answer.
type FareQuote struct {
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Source   string  `json:"source"`
}

// Adapter fetches live flight data. Every method may fail; failures surface
// as retryable job failures upstream, never as corrupted shared state.
type Adapter interface {
	FetchLiveStatus(ctx context.Context, seg SegmentRef) (*LiveStatus, error)
	FetchSeatMap(ctx context.Context, seg SegmentRef) (SeatMap, error)
	FetchFareQuote(ctx context.Context, q FareQuery) (*FareQuote, error)
}

// UpstreamError is a non-2xx answer from the provider.
type UpstreamError struct {
	StatusCode int
	Endpoint   string
}

func (e *UpstreamError) Error() string {
	return "upstream " + e.Endpoint + " returned non-200 status"
}

// IsRetryable reports whether a fetch failure is worth another attempt.
// Client-side errors (4xx) are terminal; everything else — timeouts,
// transport failures, 5xx, malformed partial responses — is transient.
func IsRetryable(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode >= 500
	}
	return true
}

package model

import "time"

// SeatStatus is the occupancy of a single cabin seat.
type SeatStatus string

const (
	SeatEmpty    SeatStatus = "EMPTY"
	SeatOccupied SeatStatus = "OCCUPIED"
)

// FlightSegment is one leg of a monitored trip, ordered by SegmentOrder.
// ScheduledDeparture/ScheduledArrival are the baseline recorded at tracking
// start; live times fetched from the provider are compared against them and
// never written back over the baseline.
type FlightSegment struct {
	ID                 uint `gorm:"primaryKey"`
	TripID             uint `gorm:"index;not null"`
	SegmentOrder       int  `gorm:"not null"`
	CarrierCode        string `gorm:"size:4;not null"`
	FlightNumber       string `gorm:"size:8;not null"`
	Origin             string `gorm:"size:4;not null"`
	Destination        string `gorm:"size:4;not null"`
	ScheduledDeparture time.Time `gorm:"not null"`
	ScheduledArrival   time.Time `gorm:"not null"`
	Seat               string `gorm:"size:5"`
	CabinClass         string `gorm:"size:16"`

	// NeighborStatus is the seat-spy baseline: the neighbor seat's occupancy
	// as observed on the previous check. Empty string means never observed.
	NeighborStatus SeatStatus `gorm:"size:10"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

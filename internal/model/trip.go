package model

import "time"

// TripStatus is the lifecycle state of a monitored trip.
type TripStatus string

const (
	TripActive   TripStatus = "ACTIVE"
	TripResolved TripStatus = "RESOLVED"
	TripExpired  TripStatus = "EXPIRED"
)

// WatchMask is a bitmask of the rule categories active for a trip.
type WatchMask int

const (
	WatchDisruption WatchMask = 1 << iota
	WatchSchedule
	WatchSeat
	WatchUpgrade
	WatchPrice
)

// Has reports whether the given category is enabled.
func (m WatchMask) Has(flag WatchMask) bool {
	return m&flag != 0
}

// MonitoredTrip represents a booking a user asked the engine to watch.
// Created when tracking starts; the scheduler advances its check timestamps
// and rule outcomes may move it to RESOLVED or EXPIRED. The engine never
// deletes trips, only the owner does.
type MonitoredTrip struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        string `gorm:"index;size:64;not null"`
	PNR           string `gorm:"size:16;not null"`
	RouteLabel    string `gorm:"size:128"`
	OriginalPrice float64
	Currency      string `gorm:"size:8"`
	TicketClass   string `gorm:"size:32"`
	Refundable    bool
	CancelFee     float64
	Watch         WatchMask  `gorm:"not null"`
	Status        TripStatus `gorm:"size:16;index;not null;default:ACTIVE"`
	NextCheckAt   time.Time  `gorm:"index"`
	LastCheckedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Associations
	Segments []FlightSegment `gorm:"foreignKey:TripID"`
}

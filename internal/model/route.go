package model

import "time"

// Route is an origin/destination pair a user tracks for price movement.
// Abandoned routes are flipped to Active=false, never deleted; inactive
// routes are excluded from scheduling.
type Route struct {
	ID              uint   `gorm:"primaryKey"`
	UserID          string `gorm:"index;size:64;not null"`
	OriginCode      string `gorm:"size:4;not null"`
	DestinationCode string `gorm:"size:4;not null"`
	DepartDate      time.Time `gorm:"not null"`
	ReturnDate      *time.Time
	Cabin           string `gorm:"size:16"`
	Currency        string `gorm:"size:8"`
	CurrentPrice    float64
	Active          bool      `gorm:"index;not null;default:true"`
	NextCheckAt     time.Time `gorm:"index"`
	LastCheckedAt   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Associations
	Snapshots []PriceSnapshot `gorm:"foreignKey:RouteID"`
}

// PriceSnapshot is one observed fare for a route.
type PriceSnapshot struct {
	ID         uint      `gorm:"primaryKey"`
	RouteID    uint      `gorm:"index;not null"`
	ObservedAt time.Time `gorm:"index;not null"`
	Amount     float64   `gorm:"not null"`
	Currency   string    `gorm:"size:8;not null"`
	Source     string    `gorm:"size:32"`
}

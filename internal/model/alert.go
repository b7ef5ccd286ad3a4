package model

import "time"

// AlertType is the rule category that produced an alert.
type AlertType string

const (
	AlertDisruption     AlertType = "DISRUPTION"
	AlertScheduleChange AlertType = "SCHEDULE_CHANGE"
	AlertConnectionRisk AlertType = "CONNECTION_RISK"
	AlertSeatSpy        AlertType = "SEAT_SPY"
	AlertUpgrade        AlertType = "UPGRADE_OPPORTUNITY"
	AlertAwardChance    AlertType = "AWARD_CHANCE"
	AlertPriceDrop      AlertType = "PRICE_DROP"
)

// AlertSeverity ranks an alert. MONEY marks a money-saving opportunity.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "INFO"
	SeverityWarning  AlertSeverity = "WARNING"
	SeverityCritical AlertSeverity = "CRITICAL"
	SeverityMoney    AlertSeverity = "MONEY"
)

// GuardianAlert is a persisted, user-facing alert. At most one unresolved
// alert may exist per (TripID, SegmentID, Type) — or (RouteID, Type) for
// route-derived alerts. SegmentID/RouteID of zero mean "not segment/route
// scoped"; zero values keep the composite unique index honest, which a
// nullable column would not (NULLs never collide).
type GuardianAlert struct {
	ID        uint `gorm:"primaryKey"`
	TripID    uint `gorm:"index:uniq_open_alert,unique,where:resolved = false"`
	SegmentID uint `gorm:"index:uniq_open_alert,unique,where:resolved = false"`
	RouteID   uint `gorm:"index:uniq_open_alert,unique,where:resolved = false"`
	Type      AlertType     `gorm:"size:32;not null;index:uniq_open_alert,unique,where:resolved = false"`
	Severity  AlertSeverity `gorm:"size:16;not null"`
	Title     string        `gorm:"size:256;not null"`
	Message   string        `gorm:"not null"`

	PotentialValue string `gorm:"size:64"`
	ActionLabel    string `gorm:"size:128"`

	IsRead   bool `gorm:"not null;default:false"`
	Resolved bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

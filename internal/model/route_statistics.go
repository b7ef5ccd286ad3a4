package model

import "time"

// RouteStatistics is a derived per-(origin, destination, month) aggregate.
// It is maintained with a streaming weighted-average merge: one batch of
// observed fares moves the average by one sample, min/max elementwise.
// The aggregate is never recomputed from the full snapshot history — O(1)
// updates traded against exactness, and tests pin the merge formula.
type RouteStatistics struct {
	ID              uint   `gorm:"primaryKey"`
	OriginCode      string `gorm:"size:4;not null;uniqueIndex:uniq_route_month"`
	DestinationCode string `gorm:"size:4;not null;uniqueIndex:uniq_route_month"`
	Month           int    `gorm:"not null;uniqueIndex:uniq_route_month"`
	MinPrice        float64
	MaxPrice        float64
	AvgPrice        float64
	SampleSize      int `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

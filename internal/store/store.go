package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"travel-guardian-backend/internal/model"
	"travel-guardian-backend/internal/stats"
)

// CreateOutcome is the result of an alert create-or-suppress operation.
type CreateOutcome int

const (
	AlertCreated CreateOutcome = iota
	AlertSuppressed
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Scheduling
	DueTrips(ctx context.Context, now time.Time, limit int) ([]model.MonitoredTrip, error)
	DueRoutes(ctx context.Context, now time.Time, limit int) ([]model.Route, error)
	AdvanceTripCheck(ctx context.Context, tripID uint, checkedAt, nextAt time.Time) error
	AdvanceRouteCheck(ctx context.Context, routeID uint, checkedAt, nextAt time.Time) error
	MarkTripExpired(ctx context.Context, tripID uint) error
	DeactivateRoute(ctx context.Context, routeID uint) error

	// Alerts
	TryCreateAlert(ctx context.Context, alert *model.GuardianAlert) (CreateOutcome, error)
	AlertsForTrip(ctx context.Context, tripID uint) ([]model.GuardianAlert, error)
	MarkAlertRead(ctx context.Context, alertID uint) error

	// Segment baselines
	UpdateNeighborStatus(ctx context.Context, segmentID uint, status model.SeatStatus) error

	// Route pricing
	AppendPriceSnapshot(ctx context.Context, snap *model.PriceSnapshot) error
	PriceHistory(ctx context.Context, routeID uint, limit int) ([]float64, error)
	MergeRouteStatistics(ctx context.Context, origin, destination string, month int, batchMin, batchMax, batchAvg float64) error

	// Push subscriptions
	SubscriptionsForUser(ctx context.Context, userID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error

	// Read API
	ActiveTrips(ctx context.Context) ([]model.MonitoredTrip, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// DueTrips returns active trips whose nextCheckAt has passed, most overdue
// first, with their segments preloaded.
func (s *gormStore) DueTrips(ctx context.Context, now time.Time, limit int) ([]model.MonitoredTrip, error) {
	var trips []model.MonitoredTrip
	err := s.db.WithContext(ctx).
		Preload("Segments", func(db *gorm.DB) *gorm.DB {
			return db.Order("segment_order ASC")
		}).
		Where("status = ? AND next_check_at <= ?", model.TripActive, now).
		Order("next_check_at ASC").
		Limit(limit).
		Find(&trips).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select due trips: %w", err)
	}
	return trips, nil
}

// DueRoutes returns active routes whose nextCheckAt has passed.
func (s *gormStore) DueRoutes(ctx context.Context, now time.Time, limit int) ([]model.Route, error) {
	var routes []model.Route
	err := s.db.WithContext(ctx).
		Where("active = ? AND next_check_at <= ?", true, now).
		Order("next_check_at ASC").
		Limit(limit).
		Find(&routes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select due routes: %w", err)
	}
	return routes, nil
}

// AdvanceTripCheck records a completed check, whether or not it alerted.
func (s *gormStore) AdvanceTripCheck(ctx context.Context, tripID uint, checkedAt, nextAt time.Time) error {
	return s.db.WithContext(ctx).Model(&model.MonitoredTrip{}).
		Where("id = ?", tripID).
		Updates(map[string]any{
			"last_checked_at": checkedAt,
			"next_check_at":   nextAt,
		}).Error
}

// AdvanceRouteCheck records a completed route check.
func (s *gormStore) AdvanceRouteCheck(ctx context.Context, routeID uint, checkedAt, nextAt time.Time) error {
	return s.db.WithContext(ctx).Model(&model.Route{}).
		Where("id = ?", routeID).
		Updates(map[string]any{
			"last_checked_at": checkedAt,
			"next_check_at":   nextAt,
		}).Error
}

// MarkTripExpired removes a trip from future scheduling.
func (s *gormStore) MarkTripExpired(ctx context.Context, tripID uint) error {
	return s.db.WithContext(ctx).Model(&model.MonitoredTrip{}).
		Where("id = ?", tripID).
		Update("status", model.TripExpired).Error
}

// DeactivateRoute removes a route from future scheduling without deleting
// its snapshot history.
func (s *gormStore) DeactivateRoute(ctx context.Context, routeID uint) error {
	return s.db.WithContext(ctx).Model(&model.Route{}).
		Where("id = ?", routeID).
		Update("active", false).Error
}

// TryCreateAlert persists an alert unless an unresolved alert with the same
// dedup key already exists. The check and the insert run in one transaction,
// and the partial unique index on the dedup key backstops the transaction:
// a uniqueness violation from a concurrent insert is reported as a
// suppression, not an error.
func (s *gormStore) TryCreateAlert(ctx context.Context, alert *model.GuardianAlert) (CreateOutcome, error) {
	outcome := AlertSuppressed

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.GuardianAlert
		err := tx.Where(
			"trip_id = ? AND segment_id = ? AND route_id = ? AND type = ? AND resolved = ?",
			alert.TripID, alert.SegmentID, alert.RouteID, alert.Type, false,
		).First(&existing).Error

		if err == nil {
			return nil // already open: suppress
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to query existing alert: %w", err)
		}

		if err := tx.Create(alert).Error; err != nil {
			return err
		}
		outcome = AlertCreated
		return nil
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race to a concurrent worker. Same end state.
			return AlertSuppressed, nil
		}
		return AlertSuppressed, err
	}
	return outcome, nil
}

// AlertsForTrip returns all alerts of a trip, newest first.
func (s *gormStore) AlertsForTrip(ctx context.Context, tripID uint) ([]model.GuardianAlert, error) {
	var alerts []model.GuardianAlert
	err := s.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("created_at DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alerts for trip %d: %w", tripID, err)
	}
	return alerts, nil
}

func (s *gormStore) MarkAlertRead(ctx context.Context, alertID uint) error {
	result := s.db.WithContext(ctx).Model(&model.GuardianAlert{}).
		Where("id = ?", alertID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateNeighborStatus advances the seat-spy baseline after a check.
func (s *gormStore) UpdateNeighborStatus(ctx context.Context, segmentID uint, status model.SeatStatus) error {
	return s.db.WithContext(ctx).Model(&model.FlightSegment{}).
		Where("id = ?", segmentID).
		Update("neighbor_status", status).Error
}

// AppendPriceSnapshot records one observed fare and moves the route's
// current price along with it.
func (s *gormStore) AppendPriceSnapshot(ctx context.Context, snap *model.PriceSnapshot) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(snap).Error; err != nil {
			return fmt.Errorf("failed to create price snapshot: %w", err)
		}
		return tx.Model(&model.Route{}).
			Where("id = ?", snap.RouteID).
			Update("current_price", snap.Amount).Error
	})
}

// PriceHistory returns up to limit snapshot amounts for a route, oldest
// first, excluding nothing: the statistics layer decides what is enough.
func (s *gormStore) PriceHistory(ctx context.Context, routeID uint, limit int) ([]float64, error) {
	var snaps []model.PriceSnapshot
	err := s.db.WithContext(ctx).
		Where("route_id = ?", routeID).
		Order("observed_at DESC").
		Limit(limit).
		Find(&snaps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history for route %d: %w", routeID, err)
	}

	history := make([]float64, len(snaps))
	for i, snap := range snaps {
		history[len(snaps)-1-i] = snap.Amount
	}
	return history, nil
}

// MergeRouteStatistics folds one batch summary into the per-month aggregate
// using the streaming weighted-average merge. Creates the row on first sight.
func (s *gormStore) MergeRouteStatistics(ctx context.Context, origin, destination string, month int, batchMin, batchMax, batchAvg float64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.RouteStatistics
		err := tx.Where(
			"origin_code = ? AND destination_code = ? AND month = ?",
			origin, destination, month,
		).First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			merged := stats.MergeBatch(stats.Merged{}, batchMin, batchMax, batchAvg)
			return tx.Create(&model.RouteStatistics{
				OriginCode:      origin,
				DestinationCode: destination,
				Month:           month,
				MinPrice:        merged.Min,
				MaxPrice:        merged.Max,
				AvgPrice:        merged.Avg,
				SampleSize:      merged.SampleSize,
			}).Error
		}
		if err != nil {
			return fmt.Errorf("failed to query route statistics: %w", err)
		}

		merged := stats.MergeBatch(stats.Merged{
			Min:        existing.MinPrice,
			Max:        existing.MaxPrice,
			Avg:        existing.AvgPrice,
			SampleSize: existing.SampleSize,
		}, batchMin, batchMax, batchAvg)

		return tx.Model(&existing).Updates(map[string]any{
			"min_price":   merged.Min,
			"max_price":   merged.Max,
			"avg_price":   merged.Avg,
			"sample_size": merged.SampleSize,
		}).Error
	})
}

func (s *gormStore) SubscriptionsForUser(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for user %s: %w", userID, err)
	}
	return subs, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{}, "endpoint = ?", endpoint).Error
}

// ActiveTrips lists all active trips with segments, for the read API.
func (s *gormStore) ActiveTrips(ctx context.Context) ([]model.MonitoredTrip, error) {
	var trips []model.MonitoredTrip
	err := s.db.WithContext(ctx).
		Preload("Segments", func(db *gorm.DB) *gorm.DB {
			return db.Order("segment_order ASC")
		}).
		Where("status = ?", model.TripActive).
		Order("next_check_at ASC").
		Find(&trips).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active trips: %w", err)
	}
	return trips, nil
}

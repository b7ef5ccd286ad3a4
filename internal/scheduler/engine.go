// Package scheduler runs the monitoring cycle: select due trips and routes,
// fetch live data, evaluate the alert rules, persist what fires, and hand
// created alerts to the notification dispatcher.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"travel-guardian-backend/config"
	"travel-guardian-backend/internal/model"
	"travel-guardian-backend/internal/notify"
	"travel-guardian-backend/internal/parse"
	"travel-guardian-backend/internal/provider"
	"travel-guardian-backend/internal/rules"
	"travel-guardian-backend/internal/store"
	"travel-guardian-backend/pkg/logger"
	"travel-guardian-backend/pkg/metrics"
)

// CycleSummary reports one monitoring cycle. Skipped is true when the cycle
// was refused because the previous one finished inside the cooldown window.
type CycleSummary struct {
	CycleID       string   `json:"cycleId"`
	Checked       int      `json:"checked"`
	AlertsCreated int      `json:"alertsCreated"`
	Errors        []string `json:"errors"`
	Skipped       bool     `json:"skipped,omitempty"`
}

// Engine coordinates monitoring cycles. Safe for concurrent RunCycle calls:
// overlapping cycles skip each other's in-flight entities via per-entity
// locks, and the cooldown gate keeps rapid re-triggers cheap.
type Engine struct {
	store      store.Store
	adapter    provider.Adapter
	dispatcher notify.Dispatcher
	log        logger.Logger
	metrics    *metrics.Metrics
	cfg        config.MonitorConfig
	workers    int

	locks *keyedLock
	now   func() time.Time

	mu          sync.Mutex
	lastCycleAt time.Time
	lastSummary CycleSummary
}

// NewEngine wires a monitoring engine. workers bounds per-cycle concurrency.
func NewEngine(s store.Store, adapter provider.Adapter, dispatcher notify.Dispatcher,
	log logger.Logger, m *metrics.Metrics, cfg config.MonitorConfig, workers int) *Engine {
	if workers <= 0 {
		workers = 1
	}
	return &Engine{
		store:      s,
		adapter:    adapter,
		dispatcher: dispatcher,
		log:        log,
		metrics:    m,
		cfg:        cfg,
		workers:    workers,
		locks:      newKeyedLock(),
		now:        time.Now,
	}
}

// WithClock overrides the engine clock, for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

func (e *Engine) rulesConfig() rules.Config {
	return rules.Config{
		Compensation:    e.cfg.Compensation,
		CompensationCcy: e.cfg.CompensationCcy,
		AwardCeiling:    e.cfg.AwardCeiling,
		AwardCeilingCcy: e.cfg.AwardCeilingCcy,
	}
}

// RunCycle executes one monitoring cycle and returns its summary. A call
// landing inside the cooldown window returns the previous summary with
// Skipped set instead of hitting the provider again.
func (e *Engine) RunCycle(ctx context.Context) (CycleSummary, error) {
	now := e.now()

	e.mu.Lock()
	if !e.lastCycleAt.IsZero() && now.Sub(e.lastCycleAt) < e.cfg.Cooldown {
		summary := e.lastSummary
		summary.Skipped = true
		e.mu.Unlock()
		return summary, nil
	}
	e.lastCycleAt = now
	e.mu.Unlock()

	cycleID := uuid.NewString()
	log := e.log.With("cycle", cycleID)
	log.Info("monitoring cycle started")
	start := now

	trips, err := e.store.DueTrips(ctx, now, e.cfg.BatchSize)
	if err != nil {
		return CycleSummary{CycleID: cycleID}, fmt.Errorf("failed to select due trips: %w", err)
	}
	routes, err := e.store.DueRoutes(ctx, now, e.cfg.BatchSize)
	if err != nil {
		return CycleSummary{CycleID: cycleID}, fmt.Errorf("failed to select due routes: %w", err)
	}

	acc := &cycleAccumulator{}
	jobs := make(chan func(), len(trips)+len(routes))
	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				job()
			}
		}()
	}

	for _, trip := range trips {
		trip := trip
		jobs <- func() { e.checkTrip(ctx, log, trip, acc) }
	}
	for _, route := range routes {
		route := route
		jobs <- func() { e.checkRoute(ctx, log, route, acc) }
	}
	close(jobs)
	wg.Wait()

	summary := CycleSummary{
		CycleID:       cycleID,
		Checked:       acc.checked,
		AlertsCreated: acc.created,
		Errors:        acc.errors,
	}
	if summary.Errors == nil {
		summary.Errors = []string{}
	}

	e.mu.Lock()
	e.lastSummary = summary
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.CyclesRun.Inc()
		e.metrics.CycleDuration.Observe(e.now().Sub(start).Seconds())
	}
	log.Info("monitoring cycle finished",
		"checked", summary.Checked,
		"alerts_created", summary.AlertsCreated,
		"errors", len(summary.Errors))
	return summary, nil
}

// cycleAccumulator gathers per-cycle counters across workers.
type cycleAccumulator struct {
	mu      sync.Mutex
	checked int
	created int
	errors  []string
}

func (a *cycleAccumulator) addChecked() {
	a.mu.Lock()
	a.checked++
	a.mu.Unlock()
}

func (a *cycleAccumulator) addCreated() {
	a.mu.Lock()
	a.created++
	a.mu.Unlock()
}

func (a *cycleAccumulator) addError(msg string) {
	a.mu.Lock()
	a.errors = append(a.errors, msg)
	a.mu.Unlock()
}

func (e *Engine) checkTrip(ctx context.Context, log logger.Logger, trip model.MonitoredTrip, acc *cycleAccumulator) {
	key := fmt.Sprintf("trip:%d", trip.ID)
	if !e.locks.TryAcquire(key) {
		return
	}
	defer e.locks.Release(key)

	now := e.now()
	if len(trip.Segments) == 0 {
		log.Warn("trip has no segments", "trip", trip.ID)
		_ = e.store.MarkTripExpired(ctx, trip.ID)
		return
	}

	departure := trip.Segments[0].ScheduledDeparture
	interval, inWindow := CheckInterval(now, departure)
	if !inWindow {
		if departure.Before(now) {
			log.Info("trip departed, expiring", "trip", trip.ID)
			if err := e.store.MarkTripExpired(ctx, trip.ID); err != nil {
				acc.addError(fmt.Sprintf("trip %d: expire: %v", trip.ID, err))
			}
		} else {
			// Too far out. Park it until it enters the window.
			reentry := departure.AddDate(0, 0, -windowMaxDays)
			if err := e.store.AdvanceTripCheck(ctx, trip.ID, now, reentry); err != nil {
				acc.addError(fmt.Sprintf("trip %d: park: %v", trip.ID, err))
			}
		}
		return
	}

	acc.addChecked()
	if e.metrics != nil {
		e.metrics.EntitiesChecked.Inc()
	}

	results := e.evaluateTrip(ctx, log, trip, acc)
	for _, res := range results {
		e.persistAndNotify(ctx, log, trip.UserID, trip.ID, res, acc)
	}

	if err := e.store.AdvanceTripCheck(ctx, trip.ID, now, now.Add(interval)); err != nil {
		acc.addError(fmt.Sprintf("trip %d: advance: %v", trip.ID, err))
	}
}

// evaluateTrip runs every watched rule category over the trip's segments and
// returns what fired. Provider failures degrade to skipping the affected
// category for this cycle; the next cycle retries from the same baseline.
func (e *Engine) evaluateTrip(ctx context.Context, log logger.Logger, trip model.MonitoredTrip, acc *cycleAccumulator) []rules.Result {
	var results []rules.Result
	cfg := e.rulesConfig()

	needsLive := trip.Watch.Has(model.WatchDisruption) || trip.Watch.Has(model.WatchSchedule)
	liveByID := make(map[uint]*provider.LiveStatus)

	if needsLive {
		for _, seg := range trip.Segments {
			seg := seg
			var live *provider.LiveStatus
			err := e.withRetry(ctx, func() error {
				var ferr error
				live, ferr = e.adapter.FetchLiveStatus(ctx, segmentRef(seg))
				return ferr
			})
			if err != nil {
				acc.addError(fmt.Sprintf("trip %d segment %d: live status: %v", trip.ID, seg.ID, err))
				if e.metrics != nil {
					e.metrics.ErrorsCount.WithLabelValues("fetch_live_status").Inc()
				}
				continue
			}
			liveByID[seg.ID] = live

			if trip.Watch.Has(model.WatchDisruption) {
				if res := rules.Disruption(seg, live, cfg); res != nil {
					results = append(results, *res)
				}
			}
			if trip.Watch.Has(model.WatchSchedule) {
				if res := rules.ScheduleChange(seg, live); res != nil {
					results = append(results, *res)
				}
			}
		}

		if trip.Watch.Has(model.WatchDisruption) && len(trip.Segments) > 1 {
			results = append(results, rules.ConnectionRisk(trip.Segments, liveByID)...)
		}
	}

	if trip.Watch.Has(model.WatchSeat) {
		for _, seg := range trip.Segments {
			seg := seg
			if seg.Seat == "" {
				continue
			}
			var seats provider.SeatMap
			err := e.withRetry(ctx, func() error {
				var ferr error
				seats, ferr = e.adapter.FetchSeatMap(ctx, segmentRef(seg))
				return ferr
			})
			if err != nil {
				acc.addError(fmt.Sprintf("trip %d segment %d: seat map: %v", trip.ID, seg.ID, err))
				continue
			}
			if res := rules.SeatComfort(seg, seats); res != nil {
				results = append(results, *res)
			}
			e.advanceNeighborBaseline(ctx, log, seg, seats)
		}
	}

	if trip.Watch.Has(model.WatchUpgrade) {
		for _, seg := range trip.Segments {
			seg := seg
			economy, business := e.fetchCabinQuotes(ctx, trip, seg, acc)
			if res := rules.UpgradeOpportunity(seg, economy, business); res != nil {
				results = append(results, *res)
			}
			if res := rules.AwardAvailability(seg, business, cfg); res != nil {
				results = append(results, *res)
			}
		}
	}

	return results
}

// advanceNeighborBaseline moves the stored neighbor occupancy to what the
// provider reported, so the next cycle diffs against fresh state.
func (e *Engine) advanceNeighborBaseline(ctx context.Context, log logger.Logger, seg model.FlightSegment, seats provider.SeatMap) {
	neighbor, err := parse.Neighbor(seg.Seat)
	if err != nil {
		return
	}
	current, ok := seats[neighbor]
	if !ok || current == seg.NeighborStatus {
		return
	}
	if err := e.store.UpdateNeighborStatus(ctx, seg.ID, current); err != nil {
		log.Error("failed to update neighbor baseline", "segment", seg.ID, "error", err)
	}
}

func (e *Engine) fetchCabinQuotes(ctx context.Context, trip model.MonitoredTrip, seg model.FlightSegment, acc *cycleAccumulator) (economy, business *provider.FareQuote) {
	fetch := func(cabin string) *provider.FareQuote {
		var quote *provider.FareQuote
		err := e.withRetry(ctx, func() error {
			var ferr error
			quote, ferr = e.adapter.FetchFareQuote(ctx, provider.FareQuery{
				Origin:      seg.Origin,
				Destination: seg.Destination,
				Date:        seg.ScheduledDeparture,
				Cabin:       cabin,
				Currency:    trip.Currency,
			})
			return ferr
		})
		if err != nil {
			acc.addError(fmt.Sprintf("trip %d segment %d: %s quote: %v", trip.ID, seg.ID, cabin, err))
			return nil
		}
		return quote
	}
	return fetch("ECONOMY"), fetch("BUSINESS")
}

func (e *Engine) checkRoute(ctx context.Context, log logger.Logger, route model.Route, acc *cycleAccumulator) {
	key := fmt.Sprintf("route:%d", route.ID)
	if !e.locks.TryAcquire(key) {
		return
	}
	defer e.locks.Release(key)

	now := e.now()
	interval, inWindow := CheckInterval(now, route.DepartDate)
	if !inWindow {
		if route.DepartDate.Before(now) {
			log.Info("route departed, deactivating", "route", route.ID)
			if err := e.store.DeactivateRoute(ctx, route.ID); err != nil {
				acc.addError(fmt.Sprintf("route %d: deactivate: %v", route.ID, err))
			}
		} else {
			reentry := route.DepartDate.AddDate(0, 0, -windowMaxDays)
			if err := e.store.AdvanceRouteCheck(ctx, route.ID, now, reentry); err != nil {
				acc.addError(fmt.Sprintf("route %d: park: %v", route.ID, err))
			}
		}
		return
	}

	acc.addChecked()
	if e.metrics != nil {
		e.metrics.EntitiesChecked.Inc()
	}

	var quote *provider.FareQuote
	err := e.withRetry(ctx, func() error {
		var ferr error
		quote, ferr = e.adapter.FetchFareQuote(ctx, provider.FareQuery{
			Origin:      route.OriginCode,
			Destination: route.DestinationCode,
			Date:        route.DepartDate,
			Cabin:       route.Cabin,
			Currency:    route.Currency,
		})
		return ferr
	})
	if err != nil {
		acc.addError(fmt.Sprintf("route %d: fare quote: %v", route.ID, err))
		if e.metrics != nil {
			e.metrics.ErrorsCount.WithLabelValues("fetch_fare_quote").Inc()
		}
		// The fetch failed; leave nextCheckAt so the next cycle retries.
		return
	}

	// Evaluate against the history that existed before this observation.
	history, err := e.store.PriceHistory(ctx, route.ID, 30)
	if err != nil {
		acc.addError(fmt.Sprintf("route %d: history: %v", route.ID, err))
		return
	}
	if res := rules.PriceDrop(route, history, quote.Price); res != nil {
		e.persistAndNotifyRoute(ctx, log, route, *res, acc)
	}

	if err := e.store.AppendPriceSnapshot(ctx, &model.PriceSnapshot{
		RouteID:    route.ID,
		ObservedAt: now,
		Amount:     quote.Price,
		Currency:   quote.Currency,
		Source:     quote.Source,
	}); err != nil {
		acc.addError(fmt.Sprintf("route %d: snapshot: %v", route.ID, err))
	}

	month := int(route.DepartDate.Month())
	if err := e.store.MergeRouteStatistics(ctx, route.OriginCode, route.DestinationCode, month,
		quote.Price, quote.Price, quote.Price); err != nil {
		acc.addError(fmt.Sprintf("route %d: statistics: %v", route.ID, err))
	}

	if err := e.store.AdvanceRouteCheck(ctx, route.ID, now, now.Add(interval)); err != nil {
		acc.addError(fmt.Sprintf("route %d: advance: %v", route.ID, err))
	}
}

func (e *Engine) persistAndNotify(ctx context.Context, log logger.Logger, userID string, tripID uint, res rules.Result, acc *cycleAccumulator) {
	alert := &model.GuardianAlert{
		TripID:         tripID,
		SegmentID:      res.SegmentID,
		Type:           res.Type,
		Severity:       res.Severity,
		Title:          res.Title,
		Message:        res.Message,
		PotentialValue: res.PotentialValue,
		ActionLabel:    res.ActionLabel,
	}
	e.finishAlert(ctx, log, userID, alert, acc)
}

func (e *Engine) persistAndNotifyRoute(ctx context.Context, log logger.Logger, route model.Route, res rules.Result, acc *cycleAccumulator) {
	alert := &model.GuardianAlert{
		RouteID:        route.ID,
		Type:           res.Type,
		Severity:       res.Severity,
		Title:          res.Title,
		Message:        res.Message,
		PotentialValue: res.PotentialValue,
		ActionLabel:    res.ActionLabel,
	}
	e.finishAlert(ctx, log, route.UserID, alert, acc)
}

func (e *Engine) finishAlert(ctx context.Context, log logger.Logger, userID string, alert *model.GuardianAlert, acc *cycleAccumulator) {
	outcome, err := e.store.TryCreateAlert(ctx, alert)
	if err != nil {
		acc.addError(fmt.Sprintf("alert %s: %v", alert.Type, err))
		if e.metrics != nil {
			e.metrics.ErrorsCount.WithLabelValues("create_alert").Inc()
		}
		return
	}
	if outcome == store.AlertSuppressed {
		if e.metrics != nil {
			e.metrics.AlertsSuppressed.Inc()
		}
		return
	}

	acc.addCreated()
	if e.metrics != nil {
		e.metrics.AlertsCreated.WithLabelValues(string(alert.Type)).Inc()
	}
	log.Info("alert created",
		"type", alert.Type, "severity", alert.Severity,
		"trip", alert.TripID, "segment", alert.SegmentID, "route", alert.RouteID)

	if e.dispatcher != nil {
		e.dispatcher.Dispatch(notify.Payload{
			UserID:   userID,
			Type:     alert.Type,
			Severity: alert.Severity,
			Title:    alert.Title,
			Message:  alert.Message,
			CTALabel: alert.ActionLabel,
		})
	}
}

// withRetry runs fn up to MaxAttempts times with exponential backoff,
// stopping early on terminal errors and on context cancellation.
func (e *Engine) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !provider.IsRetryable(err) {
			return err
		}
		if attempt == e.cfg.MaxAttempts {
			break
		}
		backoff := e.cfg.BackoffBase * time.Duration(1<<(attempt-1))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func segmentRef(seg model.FlightSegment) provider.SegmentRef {
	return provider.SegmentRef{
		CarrierCode:  seg.CarrierCode,
		FlightNumber: seg.FlightNumber,
		Origin:       seg.Origin,
		Destination:  seg.Destination,
		Departure:    seg.ScheduledDeparture,
	}
}

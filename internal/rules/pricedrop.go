package rules

import (
	"fmt"
	"math"

	"travel-guardian-backend/internal/model"
	"travel-guardian-backend/internal/stats"
)

// PriceDrop runs the statistical anomaly check over a route's snapshot
// history. It fires when the current fare sits at least the anomaly
// threshold below the historical mean.
func PriceDrop(route model.Route, history []float64, current float64) *Result {
	if current <= 0 || len(history) == 0 {
		return nil
	}

	mean := stats.Mean(history)
	drop := stats.DropPercent(mean, current)
	if !stats.IsAnomaly(drop) {
		return nil
	}

	score := stats.DealScore(current, history)

	return &Result{
		Type:     model.AlertPriceDrop,
		Severity: model.SeverityMoney,
		Title:    fmt.Sprintf("Price drop on %s-%s", route.OriginCode, route.DestinationCode),
		Message: fmt.Sprintf("Price dropped %d%% below normal. Avg: %.0f %s. Now: %.0f %s. Deal score %.1f/10.",
			int(math.Round(drop)), mean, route.Currency, current, route.Currency, score),
		PotentialValue: fmt.Sprintf("%.0f %s", mean-current, route.Currency),
		ActionLabel:    "Book now",
	}
}

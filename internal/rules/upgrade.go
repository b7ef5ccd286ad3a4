package rules

import (
	"fmt"
	"math"
	"strings"

	"travel-guardian-backend/internal/model"
	"travel-guardian-backend/internal/provider"
)

// UpgradeOpportunity is the upgrade sniper: it fires when the business fare
// falls to at most UpgradeRatioMax times the economy fare on the same
// market. The reported saving is the discount against flying business at
// the usual multiple.
func UpgradeOpportunity(seg model.FlightSegment, economy, business *provider.FareQuote) *Result {
	if economy == nil || business == nil || economy.Price <= 0 || business.Price <= 0 {
		return nil
	}

	ratio := business.Price / economy.Price
	if ratio > UpgradeRatioMax {
		return nil
	}

	savings := int(math.Round((1 - ratio) * 100))

	return &Result{
		Type:      model.AlertUpgrade,
		Severity:  model.SeverityMoney,
		SegmentID: seg.ID,
		Title:     "Business upgrade deal spotted",
		Message: fmt.Sprintf("Business class on %s%s is %.0f %s against %.0f %s in economy — a %d%% saving on the usual gap.",
			seg.CarrierCode, seg.FlightNumber, business.Price, business.Currency, economy.Price, economy.Currency, savings),
		PotentialValue: fmt.Sprintf("%d%%", savings),
		ActionLabel:    "Upgrade now",
	}
}

// AwardAvailability fires when a business fare becomes obtainable below the
// configured ceiling for a segment still booked in economy. Informational:
// the right moment to burn miles on an upgrade.
func AwardAvailability(seg model.FlightSegment, business *provider.FareQuote, cfg Config) *Result {
	if business == nil || business.Price <= 0 {
		return nil
	}
	if strings.EqualFold(seg.CabinClass, "BUSINESS") {
		return nil
	}
	if business.Price >= cfg.AwardCeiling {
		return nil
	}

	return &Result{
		Type:      model.AlertAwardChance,
		Severity:  model.SeverityInfo,
		SegmentID: seg.ID,
		Title:     "Award upgrade window open",
		Message: fmt.Sprintf("Business class seats on %s%s opened up at %.0f %s, under your %.0f %s ceiling. A good moment to call the airline about a miles upgrade.",
			seg.CarrierCode, seg.FlightNumber, business.Price, business.Currency, cfg.AwardCeiling, cfg.AwardCeilingCcy),
		PotentialValue: "Upgrade",
		ActionLabel:    "Review the fare",
	}
}

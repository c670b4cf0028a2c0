package matching

import (
	"github.com/shopspring/decimal"

	"matchcore/internal/models"
)

// maxAdvisorySpreadPct is spec §4.7's "suppress entirely when spreadPct > 20".
var maxAdvisorySpreadPct = decimal.NewFromInt(20)

// sendCompetitiveAdvisoriesLocked implements spec §4.7. Advisory only: it
// never touches orders or engine state. Caller must already hold e.mu.
func (e *Engine) sendCompetitiveAdvisoriesLocked(asset string, bid, offer *models.Order) {
	if e.secondary == nil {
		return
	}

	spread := offer.Price.Sub(bid.Price)
	if bid.Price.IsZero() {
		return
	}
	spreadPct := spread.Div(bid.Price).Mul(decimal.NewFromInt(100))
	if spreadPct.GreaterThan(maxAdvisorySpreadPct) {
		return
	}

	e.sendAdvisoryLocked(asset, bid, offer.Price, spread, spreadPct, models.SideBid)
	e.sendAdvisoryLocked(asset, offer, bid.Price, spread, spreadPct, models.SideOffer)
}

func (e *Engine) sendAdvisoryLocked(asset string, own *models.Order, counterpartyPrice, spread, spreadPct decimal.Decimal, side models.Side) {
	advisory := models.CompetitiveBidAdvisory{
		Asset:             asset,
		YourPrice:         own.Price,
		CounterpartyPrice: counterpartyPrice,
		Spread:            spread,
		SpreadPct:         spreadPct,
		Side:              side,
	}

	e.enqueueSecondary(secondaryJob{
		userID: own.UserID,
		kind:   "competitive_advisory",
		build:  func() string { return competitiveAdvisoryMessage(advisory) },
		onSent: func() { e.metrics.advisoriesSentTotal.Inc() },
	})
}

package matching

import (
	"context"

	"go.uber.org/zap"

	"matchcore/internal/models"
	"matchcore/internal/orderbook"
)

// decide implements spec §4.2's per-asset decision. Caller must already
// hold e.mu.
func (e *Engine) decide(ctx context.Context, asset string, orders []*models.Order) error {
	var bids, offers []*models.Order
	for _, o := range orders {
		if o.Side == models.SideBid {
			bids = append(bids, o)
		} else {
			offers = append(offers, o)
		}
	}
	if len(bids) == 0 || len(offers) == 0 {
		return nil
	}

	bidSide := orderbook.BuildSide(bids, true)
	offerSide := orderbook.BuildSide(offers, false)
	bestBid := bidSide.Best()
	bestOffer := offerSide.Best()
	if bestBid == nil || bestOffer == nil {
		return nil
	}

	switch {
	case bestBid.Price.Equal(bestOffer.Price):
		return e.onPriceMatchLocked(ctx, asset, bestBid, bestOffer)

	case bestBid.Price.LessThan(bestOffer.Price):
		e.sendCompetitiveAdvisoriesLocked(asset, bestBid, bestOffer)
		return e.runNegotiationLocked(ctx, asset, bestBid, bestOffer)

	default:
		// Crossing book: should not occur given the invariants. Commit
		// directly at the offer's price regardless of quantity (spec §4.2
		// step 5) rather than routing through onPriceMatchLocked, which
		// would open a PendingConfirmation with bid.price != offer.price on
		// unequal remaining and violate invariant §3.4.
		e.log.Warn("matching: crossing book observed", zap.String("asset", asset),
			zap.String("bestBid", bestBid.ID), zap.String("bestOffer", bestOffer.ID))
		return e.commitLocked(ctx, bestBid, bestOffer)
	}
}

// onPriceMatchLocked handles bestBid.price == bestOffer.price: either an
// immediate commit or the opening of a quantity confirmation. Caller must
// already hold e.mu.
func (e *Engine) onPriceMatchLocked(ctx context.Context, asset string, bid, offer *models.Order) error {
	if bid.Remaining == offer.Remaining {
		return e.commitLocked(ctx, bid, offer)
	}
	return e.openConfirmationLocked(ctx, asset, bid, offer)
}

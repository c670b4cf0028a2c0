package matching

import (
	"context"

	"go.uber.org/zap"

	"matchcore/internal/models"
	"matchcore/internal/realtime"
)

// commitLocked implements the Trade Committer (spec §4.6). Caller must
// already hold e.mu, guaranteeing the store transaction is the only
// ordering point with the outside world for this pair.
func (e *Engine) commitLocked(ctx context.Context, bid, offer *models.Order) error {
	amount := bid.Remaining
	if offer.Remaining < amount {
		amount = offer.Remaining
	}
	price := offer.Price
	commission := Commission(amount, price)

	trade, err := e.store.CommitTrade(ctx, bid, offer, amount, price, commission)
	if err != nil {
		e.log.Error("matching: commit aborted", zap.String("asset", bid.Asset),
			zap.String("bidOrderId", bid.ID), zap.String("offerOrderId", offer.ID), zap.Error(err))
		return err
	}

	e.cache.Invalidate()
	matchType := models.ClassifyMatchType(bid.OriginalAmount, offer.OriginalAmount)
	e.metrics.tradesTotal.WithLabelValues(string(matchType), bid.Asset).Inc()
	e.metrics.commissionTotal.Add(commission.InexactFloat64())

	// Post-commit I/O never unwinds the already-committed trade (spec §4.6:
	// "notifications must not affect the committed state if they fail"). The
	// realtime push and KV publish are cheap and run inline; the secondary
	// webhook send is dispatched to secondaryWorker since it can block for
	// seconds on a slow/dead endpoint (spec §5: must not block e.mu).
	e.afterCommit(bid, offer, trade, matchType, amount)

	return nil
}

func (e *Engine) afterCommit(bid, offer *models.Order, trade *models.Trade, matchType models.MatchType, amount int64) {
	ctx := context.Background()

	if e.refresher != nil {
		if err := e.refresher.RefreshAsset(ctx, bid.Asset); err != nil {
			e.log.Warn("matching: projection refresh failed", zap.String("asset", bid.Asset), zap.Error(err))
		}
	}

	// bid/offer.Remaining already reflect the post-commit value: CommitTrade
	// mutates the caller's pointers in place before returning.
	bidFullyMatched := bid.Remaining == 0
	offerFullyMatched := offer.Remaining == 0

	pubsubEvent := models.TradeExecutedPubSub{
		TradeID:           trade.ID,
		Asset:             bid.Asset,
		Price:             offer.Price,
		Amount:            amount,
		BuyerID:           bid.UserID,
		SellerID:          offer.UserID,
		TimestampUnix:     e.clock.Now().Unix(),
		BidFullyMatched:   bidFullyMatched,
		OfferFullyMatched: offerFullyMatched,
		BidOrderID:        bid.ID,
		OfferOrderID:      offer.ID,
		MatchType:         matchType,
		PartialFill:       matchType != models.MatchTypeFull,
	}
	if err := e.kv.PublishTradeExecuted(ctx, pubsubEvent); err != nil {
		e.log.Warn("matching: trade:executed publish failed", zap.Error(err))
	}

	e.notifyTradeExecuted(bid, amount, trade, bidFullyMatched)
	e.notifyTradeExecuted(offer, amount, trade, offerFullyMatched)
}

func (e *Engine) notifyTradeExecuted(o *models.Order, amount int64, trade *models.Trade, fullyFilled bool) {
	event := models.TradeExecuted{
		OrderID:         o.ID,
		Asset:           o.Asset,
		Price:           trade.Price,
		Amount:          amount,
		TradeID:         trade.ID,
		Side:            o.Side,
		IsFullyFilled:   fullyFilled,
		IsPartialFill:   !fullyFilled,
		RemainingAmount: o.Remaining,
		OriginalAmount:  o.OriginalAmount,
	}
	if e.realtime != nil {
		e.realtime.Send(o.UserID, realtime.EventTradeExecuted, event)
	}

	if e.secondary == nil {
		return
	}
	e.enqueueSecondary(secondaryJob{
		userID: o.UserID,
		kind:   "trade_executed",
		build:  func() string { return tradeExecutedMessage(event) },
	})
}

package matching

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"matchcore/internal/models"
	"matchcore/internal/realtime"
	"matchcore/internal/timer"
)

func negotiationTimerKey(asset string) timer.Key {
	return timer.Key{Kind: "negotiation", ID: asset}
}

// runNegotiationLocked implements spec §4.5's per-tick detection/rearm
// rules. Caller must already hold e.mu.
func (e *Engine) runNegotiationLocked(ctx context.Context, asset string, bestBid, bestOffer *models.Order) error {
	state, exists := e.negotiations[asset]
	if !exists {
		state = &models.NegotiationState{
			Asset:     asset,
			BestBid:   bestBid.Clone(),
			BestOffer: bestOffer.Clone(),
			Turn:      models.SideOffer,
		}
		e.negotiations[asset] = state
		e.metrics.negotiationsActive.Set(float64(len(e.negotiations)))
		e.armNegotiationTimerLocked(asset)
		e.notifyNegotiationTurnLocked(ctx, state)
		return nil
	}

	switch {
	case state.BestBid.ID != bestBid.ID:
		state.BestBid = bestBid.Clone()
		state.Turn = models.SideOffer
		e.armNegotiationTimerLocked(asset)
		e.notifyNegotiationTurnLocked(ctx, state)

	case state.BestOffer.ID != bestOffer.ID:
		state.BestOffer = bestOffer.Clone()
		state.Turn = models.SideBid
		e.armNegotiationTimerLocked(asset)
		e.notifyNegotiationTurnLocked(ctx, state)
	}

	return nil
}

func (e *Engine) armNegotiationTimerLocked(asset string) {
	e.timers.Arm(negotiationTimerKey(asset), e.cfg.NegotiationTimeout, func() {
		e.onNegotiationTimeout(asset)
	})
}

func (e *Engine) onNegotiationTimeout(asset string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.negotiations[asset]
	if !ok {
		return
	}
	e.destroyNegotiationLocked(context.Background(), state)
}

func (e *Engine) destroyNegotiationLocked(ctx context.Context, state *models.NegotiationState) {
	e.timers.Cancel(negotiationTimerKey(state.Asset))
	delete(e.negotiations, state.Asset)
	e.metrics.negotiationsActive.Set(float64(len(e.negotiations)))

	if e.realtime != nil {
		e.realtime.Broadcast(realtime.EventMarketUpdate, models.MarketUpdate{
			Asset:     state.Asset,
			BestBid:   state.BestBid.Price,
			BestOffer: state.BestOffer.Price,
			Message:   marketUpdateMessage(state.Asset, state.BestBid.Price, state.BestOffer.Price),
		})
	}
}

func (e *Engine) notifyNegotiationTurnLocked(ctx context.Context, state *models.NegotiationState) {
	turnUserID := state.BestOffer.UserID
	if state.Turn == models.SideBid {
		turnUserID = state.BestBid.UserID
	}

	var bidUsername, offerUsername string
	if bidUser, err := e.store.FindUserByID(ctx, state.BestBid.UserID); err == nil {
		bidUsername = bidUser.Username
	}
	if offerUser, err := e.store.FindUserByID(ctx, state.BestOffer.UserID); err == nil {
		offerUsername = offerUser.Username
	}

	event := models.NegotiationYourTurn{
		Asset:             state.Asset,
		BestBid:           state.BestBid.Price,
		BestOffer:         state.BestOffer.Price,
		BestBidUserID:     state.BestBid.UserID,
		BestOfferUserID:   state.BestOffer.UserID,
		BestBidUsername:   bidUsername,
		BestOfferUsername: offerUsername,
		Turn:              state.Turn,
		Message:           "your turn to improve price or pass",
	}

	if e.realtime != nil {
		e.realtime.Send(turnUserID, realtime.EventNegotiationYourTurn, event)
	}

	if e.secondary == nil {
		return
	}
	e.enqueueSecondary(secondaryJob{
		userID: turnUserID,
		kind:   "negotiation_turn",
		build:  func() string { return negotiationTurnMessage(event) },
	})
}

// HandleNegotiationResponse is the administrative entry point for spec
// §4.5's "improved"/"pass" responses (spec §6 admin surface:
// handleNegotiationResponse). Only the user whose turn it currently is may
// act; all others are ignored.
func (e *Engine) HandleNegotiationResponse(ctx context.Context, asset, userID string, improved bool, newPrice *decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.negotiations[asset]
	if !ok {
		return nil
	}

	turnUserID := state.BestOffer.UserID
	orderID := state.BestOffer.ID
	if state.Turn == models.SideBid {
		turnUserID = state.BestBid.UserID
		orderID = state.BestBid.ID
	}
	if userID != turnUserID {
		return nil
	}

	if !improved {
		e.destroyNegotiationLocked(ctx, state)
		return nil
	}

	if newPrice != nil {
		if err := e.store.UpdateOrderPrice(ctx, orderID, *newPrice); err != nil {
			return err
		}
		e.cache.Invalidate()
		e.timers.Cancel(negotiationTimerKey(asset))
		delete(e.negotiations, asset)
		e.metrics.negotiationsActive.Set(float64(len(e.negotiations)))

		fresh, err := e.store.FindActiveOrdersForAsset(ctx, asset)
		if err != nil {
			e.log.Warn("matching: re-read after price improvement failed", zap.String("asset", asset), zap.Error(err))
			return nil
		}
		return e.decide(ctx, asset, fresh)
	}

	// Improved without a price: toggle turn and re-notify.
	state.Turn = state.Turn.Opposite()
	e.armNegotiationTimerLocked(asset)
	e.notifyNegotiationTurnLocked(ctx, state)
	return nil
}

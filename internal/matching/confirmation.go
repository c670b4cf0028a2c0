package matching

import (
	"context"
	"fmt"

	"matchcore/internal/models"
	"matchcore/internal/realtime"
	"matchcore/internal/timer"
)

func smallerTimerKey(key models.ConfirmationKey) timer.Key {
	return timer.Key{Kind: "confirmation.smaller", ID: key.String()}
}

func largerTimerKey(key models.ConfirmationKey) timer.Key {
	return timer.Key{Kind: "confirmation.larger", ID: key.String()}
}

// openConfirmationLocked implements spec §4.2 step 3b / §4.4's creation
// path. Caller must already hold e.mu.
func (e *Engine) openConfirmationLocked(ctx context.Context, asset string, bid, offer *models.Order) error {
	key := models.ConfirmationKey{Asset: asset, BidOrderID: bid.ID, OfferOrderID: offer.ID}

	if e.declined.Contains(key) {
		return nil
	}
	if _, exists := e.confirmations[key.String()]; exists {
		return nil
	}

	smallerParty := models.PartyBuyer
	smallerQty, largerQty := bid.Remaining, offer.Remaining
	if offer.Remaining < bid.Remaining {
		smallerParty = models.PartySeller
		smallerQty, largerQty = offer.Remaining, bid.Remaining
	}

	pc := &models.PendingConfirmation{
		Key:           key,
		BidOrder:      bid.Clone(),
		OfferOrder:    offer.Clone(),
		SmallerParty:  smallerParty,
		SmallerQty:    smallerQty,
		LargerQty:     largerQty,
		AdditionalQty: largerQty - smallerQty,
		State:         models.ConfirmationAwaitingSmaller,
		CreatedAt:     e.clock.Now(),
	}
	e.confirmations[key.String()] = pc
	e.metrics.pendingConfirmations.Set(float64(len(e.confirmations)))

	e.timers.Arm(smallerTimerKey(key), e.cfg.ConfirmationTimeout, func() {
		e.onConfirmationTimeout(key, models.ConfirmationAwaitingSmaller)
	})
	e.notifySmallerPartyLocked(pc)
	return nil
}

func (e *Engine) notifySmallerPartyLocked(pc *models.PendingConfirmation) {
	smaller := pc.SmallerOrder()
	event := models.QuantityConfirmationRequest{
		ConfirmationKey:      pc.Key.String(),
		Asset:                pc.Key.Asset,
		YourOrderID:          smaller.ID,
		CounterpartyOrderID:  pc.LargerOrder().ID,
		YourQuantity:         pc.SmallerQty,
		CounterpartyQuantity: pc.LargerQty,
		AdditionalQuantity:   pc.AdditionalQty,
		Price:                pc.OfferOrder.Price,
		Side:                 smaller.Side,
		Message:              "quantity mismatch: accept, upsize, or decline",
	}
	if e.realtime != nil {
		e.realtime.Send(smaller.UserID, realtime.EventQuantityConfirmationRequest, event)
	}
	e.sendConfirmationPromptLocked(smaller, event.ConfirmationKey, event.AdditionalQuantity, event.Price)
}

func (e *Engine) notifyLargerPartyLocked(pc *models.PendingConfirmation) {
	larger := pc.LargerOrder()
	event := models.QuantityPartialFillApproval{
		ConfirmationKey:     pc.Key.String(),
		Asset:               pc.Key.Asset,
		YourOrderID:         larger.ID,
		CounterpartyOrderID: pc.SmallerOrder().ID,
		YourQuantity:        pc.LargerQty,
		PartialFillQuantity: pc.SmallerQty,
		Price:               pc.OfferOrder.Price,
		Side:                larger.Side,
		Message:             "counterparty declined full size: accept a partial fill?",
	}
	if e.realtime != nil {
		e.realtime.Send(larger.UserID, realtime.EventQuantityPartialFillApproval, event)
	}
	e.sendConfirmationPromptLocked(larger, event.ConfirmationKey, event.PartialFillQuantity, event.Price)
}

func (e *Engine) sendConfirmationPromptLocked(o *models.Order, confirmationKey string, qty int64, price interface {
	StringFixed(int32) string
}) {
	if e.secondary == nil {
		return
	}
	prefix := confirmationPrefix(o.ID)
	priceStr := price.StringFixed(2)
	e.enqueueSecondary(secondaryJob{
		userID: o.UserID,
		kind:   "confirmation_prompt",
		build:  func() string { return confirmationPromptMessage(prefix, o.Asset, qty, priceStr) },
	})
}

func confirmationPrefix(orderID string) string {
	if len(orderID) >= 8 {
		return orderID[:8]
	}
	return orderID
}

func confirmationPromptMessage(prefix, asset string, qty int64, price string) string {
	return fmt.Sprintf("%s: reply YES %s or NO %s for $%s x %d", asset, prefix, prefix, price, qty)
}

func (e *Engine) onConfirmationTimeout(key models.ConfirmationKey, expectedState models.ConfirmationState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pc, ok := e.confirmations[key.String()]
	if !ok || pc.State != expectedState {
		return
	}
	e.resolveConfirmationLocked(context.Background(), pc, false, nil)
}

// ResolvePrefix scans pending confirmations for an 8-char order-id prefix
// match on either side (spec §4.4's identity rule), for resolving
// secondary-channel replies.
func (e *Engine) ResolvePrefix(prefix string) (models.ConfirmationKey, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, pc := range e.confirmations {
		if confirmationPrefix(pc.BidOrder.ID) == prefix || confirmationPrefix(pc.OfferOrder.ID) == prefix {
			return pc.Key, true
		}
	}
	return models.ConfirmationKey{}, false
}

// PendingConfirmationsForUser lists confirmations currently soliciting
// userID (spec §6: "list all confirmations currently soliciting a given
// user").
func (e *Engine) PendingConfirmationsForUser(userID string) []*models.PendingConfirmation {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []*models.PendingConfirmation
	for _, pc := range e.confirmations {
		var awaiting *models.Order
		if pc.State == models.ConfirmationAwaitingSmaller {
			awaiting = pc.SmallerOrder()
		} else {
			awaiting = pc.LargerOrder()
		}
		if awaiting.UserID == userID {
			out = append(out, pc)
		}
	}
	return out
}

// HandleQuantityConfirmationResponse is the administrative entry point for
// spec §6's handleQuantityConfirmationResponse. Responses for a key that is
// no longer pending are silently ignored (spec §4.4 idempotence).
func (e *Engine) HandleQuantityConfirmationResponse(ctx context.Context, key models.ConfirmationKey, accepted bool, newQuantity *int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pc, ok := e.confirmations[key.String()]
	if !ok {
		return nil
	}
	return e.resolveConfirmationLocked(ctx, pc, accepted, newQuantity)
}

// resolveConfirmationLocked advances pc's state machine one step. Caller
// must already hold e.mu.
func (e *Engine) resolveConfirmationLocked(ctx context.Context, pc *models.PendingConfirmation, accepted bool, newQuantity *int64) error {
	switch pc.State {
	case models.ConfirmationAwaitingSmaller:
		if accepted {
			return e.acceptSmallerLocked(ctx, pc, newQuantity)
		}
		return e.escalateToLargerLocked(ctx, pc)

	case models.ConfirmationAwaitingLarger:
		if accepted {
			return e.acceptLargerLocked(ctx, pc)
		}
		return e.declineConfirmationLocked(pc)
	}
	return nil
}

func (e *Engine) acceptSmallerLocked(ctx context.Context, pc *models.PendingConfirmation, newQuantity *int64) error {
	smaller := pc.SmallerOrder()
	qty := pc.LargerQty
	if newQuantity != nil {
		qty = *newQuantity
	}
	if err := e.store.UpdateOrderAmount(ctx, smaller.ID, qty); err != nil {
		return err
	}

	bid, err := e.store.FindOrderByID(ctx, pc.BidOrder.ID)
	if err != nil {
		return err
	}
	offer, err := e.store.FindOrderByID(ctx, pc.OfferOrder.ID)
	if err != nil {
		return err
	}

	e.finishConfirmationLocked(pc)
	return e.commitLocked(ctx, bid, offer)
}

func (e *Engine) escalateToLargerLocked(ctx context.Context, pc *models.PendingConfirmation) error {
	e.timers.Cancel(smallerTimerKey(pc.Key))
	pc.State = models.ConfirmationAwaitingLarger
	e.timers.Arm(largerTimerKey(pc.Key), e.cfg.ConfirmationTimeout, func() {
		e.onConfirmationTimeout(pc.Key, models.ConfirmationAwaitingLarger)
	})
	e.notifyLargerPartyLocked(pc)
	return nil
}

func (e *Engine) acceptLargerLocked(ctx context.Context, pc *models.PendingConfirmation) error {
	bid, err := e.store.FindOrderByID(ctx, pc.BidOrder.ID)
	if err != nil {
		return err
	}
	offer, err := e.store.FindOrderByID(ctx, pc.OfferOrder.ID)
	if err != nil {
		return err
	}
	e.finishConfirmationLocked(pc)
	return e.commitLocked(ctx, bid, offer)
}

func (e *Engine) declineConfirmationLocked(pc *models.PendingConfirmation) error {
	e.declined.Add(pc.Key)
	e.finishConfirmationLocked(pc)
	return nil
}

func (e *Engine) finishConfirmationLocked(pc *models.PendingConfirmation) {
	e.timers.Cancel(smallerTimerKey(pc.Key))
	e.timers.Cancel(largerTimerKey(pc.Key))
	delete(e.confirmations, pc.Key.String())
	e.metrics.pendingConfirmations.Set(float64(len(e.confirmations)))
	e.metrics.declinedPairsTotal.Set(float64(e.declined.Len()))
}

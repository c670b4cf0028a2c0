package models

import "time"

// NegotiationState tracks the per-asset price-improvement negotiation that
// runs while the best bid is below the best offer. At most one exists per
// asset at any time (spec invariant 3).
type NegotiationState struct {
	Asset     string
	BestBid   *Order
	BestOffer *Order
	Turn      Side
	Deadline  time.Time
}

// ConfirmationState is the two-step quantity-confirmation state machine's
// current stage for a given PendingConfirmation.
type ConfirmationState string

const (
	ConfirmationAwaitingSmaller ConfirmationState = "AWAITING_SMALLER"
	ConfirmationAwaitingLarger  ConfirmationState = "AWAITING_LARGER"
)

// Party identifies which of a trade's two legs a quantity-confirmation
// question is directed at.
type Party string

const (
	PartyBuyer  Party = "BUYER"
	PartySeller Party = "SELLER"
)

// ConfirmationKey is the triple identifying a unique quantity-confirmation
// interaction: spec §3, §4.4.
type ConfirmationKey struct {
	Asset        string
	BidOrderID   string
	OfferOrderID string
}

// String renders the key the way it is logged and used as a map key / secondary
// channel reply lookup input.
func (k ConfirmationKey) String() string {
	return k.Asset + ":" + k.BidOrderID + ":" + k.OfferOrderID
}

// PendingConfirmation is an in-flight quantity-mismatch negotiation between a
// price-matched bid and offer. Owned exclusively by the matching engine
// process; never persisted.
type PendingConfirmation struct {
	Key            ConfirmationKey
	BidOrder       *Order
	OfferOrder     *Order
	SmallerParty   Party
	SmallerQty     int64
	LargerQty      int64
	AdditionalQty  int64
	State          ConfirmationState
	SmallerAccepted *bool
	Deadline       time.Time
	CreatedAt      time.Time
}

// SmallerOrder returns whichever of BidOrder/OfferOrder is the smaller party's order.
func (p *PendingConfirmation) SmallerOrder() *Order {
	if p.SmallerParty == PartyBuyer {
		return p.BidOrder
	}
	return p.OfferOrder
}

// LargerOrder returns whichever of BidOrder/OfferOrder is the larger party's order.
func (p *PendingConfirmation) LargerOrder() *Order {
	if p.SmallerParty == PartyBuyer {
		return p.OfferOrder
	}
	return p.BidOrder
}

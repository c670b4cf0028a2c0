package models

import "github.com/shopspring/decimal"

// Event payload shapes for the realtime push channel (spec §6). Named
// structs throughout; only Notification.Meta stays a free-form map since it
// is genuinely heterogeneous human-facing context.

// NegotiationYourTurn is pushed to whichever user must respond to a
// price-improvement negotiation turn.
type NegotiationYourTurn struct {
	Asset             string          `json:"asset"`
	BestBid           decimal.Decimal `json:"bestBid"`
	BestOffer         decimal.Decimal `json:"bestOffer"`
	BestBidUserID     string          `json:"bestBidUserId"`
	BestOfferUserID   string          `json:"bestOfferUserId"`
	BestBidUsername   string          `json:"bestBidUsername"`
	BestOfferUsername string          `json:"bestOfferUsername"`
	Turn              Side            `json:"turn"`
	Message           string          `json:"message"`
}

// QuantityConfirmationRequest is pushed to the smaller party when a
// PendingConfirmation opens.
type QuantityConfirmationRequest struct {
	ConfirmationKey      string          `json:"confirmationKey"`
	Asset                string          `json:"asset"`
	YourOrderID          string          `json:"yourOrderId"`
	CounterpartyOrderID  string          `json:"counterpartyOrderId"`
	YourQuantity         int64           `json:"yourQuantity"`
	CounterpartyQuantity int64           `json:"counterpartyQuantity"`
	AdditionalQuantity   int64           `json:"additionalQuantity"`
	Price                decimal.Decimal `json:"price"`
	Side                 Side            `json:"side"`
	Message              string          `json:"message"`
}

// QuantityPartialFillApproval is pushed to the larger party once the
// smaller party has declined or timed out.
type QuantityPartialFillApproval struct {
	ConfirmationKey     string          `json:"confirmationKey"`
	Asset               string          `json:"asset"`
	YourOrderID         string          `json:"yourOrderId"`
	CounterpartyOrderID string          `json:"counterpartyOrderId"`
	YourQuantity        int64           `json:"yourQuantity"`
	PartialFillQuantity int64           `json:"partialFillQuantity"`
	Price               decimal.Decimal `json:"price"`
	Side                Side            `json:"side"`
	Message             string          `json:"message"`
}

// TradeExecuted is pushed to each of the two participants after a commit.
type TradeExecuted struct {
	OrderID         string          `json:"orderId"`
	Asset           string          `json:"asset"`
	Price           decimal.Decimal `json:"price"`
	Amount          int64           `json:"amount"`
	TradeID         string          `json:"tradeId"`
	Side            Side            `json:"side"`
	IsFullyFilled   bool            `json:"isFullyFilled"`
	IsPartialFill   bool            `json:"isPartialFill"`
	RemainingAmount int64           `json:"remainingAmount"`
	OriginalAmount  int64           `json:"originalAmount"`
}

// MarketUpdate is the broadcast event sent when a negotiation ends on a pass
// or a timeout.
type MarketUpdate struct {
	Asset     string          `json:"asset"`
	BestBid   decimal.Decimal `json:"bestBid"`
	BestOffer decimal.Decimal `json:"bestOffer"`
	Message   string          `json:"message"`
}

// Notification is a host-addressed message carrying free-form Meta, mirrored
// on the teacher's models.Notification shape.
type Notification struct {
	Type     string                 `json:"type"`
	Severity string                 `json:"severity"`
	Asset    string                 `json:"asset,omitempty"`
	Message  string                 `json:"message"`
	Meta     map[string]interface{} `json:"meta,omitempty"`
}

const (
	NotificationSeverityInfo  = "info"
	NotificationSeverityWarn  = "warn"
	NotificationSeverityError = "error"
)

// TradeExecutedPubSub is the payload published on the KV store's
// trade:executed pub/sub topic (spec §6).
type TradeExecutedPubSub struct {
	TradeID          string          `json:"tradeId"`
	Asset            string          `json:"asset"`
	Price            decimal.Decimal `json:"price"`
	Amount           int64           `json:"amount"`
	BuyerID          string          `json:"buyerId"`
	SellerID         string          `json:"sellerId"`
	TimestampUnix    int64           `json:"timestamp"`
	BidFullyMatched  bool            `json:"bidFullyMatched"`
	OfferFullyMatched bool           `json:"offerFullyMatched"`
	BidOrderID       string          `json:"bidOrderId"`
	OfferOrderID     string          `json:"offerOrderId"`
	MatchType        MatchType       `json:"matchType"`
	PartialFill      bool            `json:"partialFill"`
}

// CompetitiveBidAdvisory is the advisory text sent via the secondary channel
// only, per spec §4.7.
type CompetitiveBidAdvisory struct {
	Asset           string          `json:"asset"`
	YourPrice       decimal.Decimal `json:"yourPrice"`
	CounterpartyPrice decimal.Decimal `json:"counterpartyPrice"`
	Spread          decimal.Decimal `json:"spread"`
	SpreadPct       decimal.Decimal `json:"spreadPct"`
	Side            Side            `json:"side"`
}

// OrderBookLevel is one row of getOrderBook's top-10 projection.
type OrderBookLevel struct {
	OrderID   string          `json:"orderId"`
	Price     decimal.Decimal `json:"price"`
	Remaining int64           `json:"remaining"`
}

// OrderBookSnapshot is the response shape for getOrderBook.
type OrderBookSnapshot struct {
	Asset        string           `json:"asset"`
	Bids         []OrderBookLevel `json:"bids"`
	Offers       []OrderBookLevel `json:"offers"`
	TotalBidQty  int64            `json:"totalBidQty"`
	TotalOfferQty int64           `json:"totalOfferQty"`
	FetchedAt    int64            `json:"fetchedAt"`
}

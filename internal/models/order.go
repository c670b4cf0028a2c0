package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is which side of the book an Order sits on.
type Side string

const (
	SideBid   Side = "BID"
	SideOffer Side = "OFFER"
)

func (s Side) Opposite() Side {
	if s == SideBid {
		return SideOffer
	}
	return SideBid
}

func (s Side) Valid() bool {
	return s == SideBid || s == SideOffer
}

// OrderStatus is the lifecycle state of an Order.
type OrderStatus string

const (
	OrderStatusActive    OrderStatus = "ACTIVE"
	OrderStatusMatched   OrderStatus = "MATCHED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusExpired   OrderStatus = "EXPIRED"
)

// Order is a resting buy or sell interest in an asset, quoted in whole lots.
//
// Invariant: 0 <= Remaining <= OriginalAmount, and (Remaining == 0) <=>
// Matched <=> (Status == OrderStatusMatched).
type Order struct {
	ID              string      `json:"id" db:"id"`
	Side            Side        `json:"side" db:"side"`
	Asset           string      `json:"asset" db:"asset"`
	Price           decimal.Decimal `json:"price" db:"price"`
	OriginalAmount  int64       `json:"originalAmount" db:"original_amount"`
	Remaining       int64       `json:"remaining" db:"remaining"`
	Matched         bool        `json:"matched" db:"matched"`
	Status          OrderStatus `json:"status" db:"status"`
	UserID          string      `json:"userId" db:"user_id"`
	CounterpartyID  string      `json:"counterpartyId,omitempty" db:"counterparty_id"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
}

// IsMatched reports whether the order has no remaining quantity left.
func (o *Order) IsMatched() bool {
	return o.Remaining == 0
}

// Clone returns a value copy safe to hand out as part of an immutable snapshot.
func (o *Order) Clone() *Order {
	cp := *o
	return &cp
}

// MatchType classifies a committed Trade relative to the two orders' original sizes.
type MatchType string

const (
	MatchTypeFull            MatchType = "FULL_MATCH"
	MatchTypePartialBuyer    MatchType = "PARTIAL_FILL_BUYER"
	MatchTypePartialSeller   MatchType = "PARTIAL_FILL_SELLER"
)

// ClassifyMatchType implements spec §4.6 step 5.
func ClassifyMatchType(bidOriginal, offerOriginal int64) MatchType {
	switch {
	case bidOriginal < offerOriginal:
		return MatchTypePartialBuyer
	case bidOriginal > offerOriginal:
		return MatchTypePartialSeller
	default:
		return MatchTypeFull
	}
}

// Trade is an immutable record of a single atomic match between a bid and an offer.
type Trade struct {
	ID            string          `json:"id" db:"id"`
	Asset         string          `json:"asset" db:"asset"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Amount        int64           `json:"amount" db:"amount"`
	BuyerOrderID  string          `json:"buyerOrderId" db:"buyer_order_id"`
	SellerOrderID string          `json:"sellerOrderId" db:"seller_order_id"`
	BuyerID       string          `json:"buyerId" db:"buyer_id"`
	SellerID      string          `json:"sellerId" db:"seller_id"`
	Commission    decimal.Decimal `json:"commission" db:"commission"`
	MatchType     MatchType       `json:"matchType" db:"match_type"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
}

// User is the minimal identity the core needs to address notifications.
type User struct {
	ID               string `json:"id" db:"id"`
	Username         string `json:"username" db:"username"`
	SecondaryAddress string `json:"secondaryAddress" db:"secondary_address"`
}

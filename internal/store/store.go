// Package store defines the persistence contract the matching core relies
// on (spec §6) and a Postgres-backed implementation.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"matchcore/internal/models"
)

// Sentinel errors compared with errors.Is, matching the teacher's
// internal/repository convention.
var (
	ErrOrderNotFound  = errors.New("store: order not found")
	ErrUserNotFound   = errors.New("store: user not found")
	ErrCommitAborted  = errors.New("store: commit transaction aborted")
)

// Store is the persistence contract the matching engine drives against. It
// deliberately says nothing about how orders are created, authenticated, or
// ingested — that is all out of scope per spec §1.
type Store interface {
	// FindActiveOrders returns every ACTIVE order with remaining > 0, sorted
	// (asset asc, price desc, createdAt asc).
	FindActiveOrders(ctx context.Context) ([]*models.Order, error)

	// FindActiveOrdersForAsset is the same query filtered to one asset.
	FindActiveOrdersForAsset(ctx context.Context, asset string) ([]*models.Order, error)

	FindOrderByID(ctx context.Context, id string) (*models.Order, error)

	// FindUserByID returns at least username and secondary-channel address.
	FindUserByID(ctx context.Context, id string) (*models.User, error)

	UpdateOrderPrice(ctx context.Context, orderID string, newPrice decimal.Decimal) error

	// UpdateOrderAmount sets both originalAmount and remaining to newAmount;
	// used only when the smaller party upsizes (spec §4.4).
	UpdateOrderAmount(ctx context.Context, orderID string, newAmount int64) error

	// CommitTrade is the single atomic unit of §4.6: it inserts a Trade and
	// updates both orders' remaining/matched/status/counterparty in one
	// transaction. commission is supplied pre-computed by the caller
	// (matching.Commission) so the store need not know the formula.
	CommitTrade(ctx context.Context, bid, offer *models.Order, amount int64, price, commission decimal.Decimal) (*models.Trade, error)
}

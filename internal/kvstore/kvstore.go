// Package kvstore defines the shared key/value collaborator the matching
// core treats as soft state (spec §6): heartbeat, the active-orders hint
// flag, and a trade:executed pub/sub topic. All values are advisory — loss
// of any key must never corrupt matching.
package kvstore

import (
	"context"

	"matchcore/internal/models"
)

const (
	KeyLastRun         = "matching:last_run"
	KeyHasActiveOrders = "matching:has_active_orders"
	TopicTradeExecuted = "trade:executed"
)

// KVStore is the shared-state collaborator contract.
type KVStore interface {
	// Heartbeat records "last run" with ~10 min expiry.
	Heartbeat(ctx context.Context) error

	SetActiveOrdersFlag(ctx context.Context, active bool) error

	// GetActiveOrdersFlag returns the cached hint and whether it was present
	// (a miss is not an error — the flag is advisory per spec §6).
	GetActiveOrdersFlag(ctx context.Context) (active bool, present bool, err error)

	PublishTradeExecuted(ctx context.Context, event models.TradeExecutedPubSub) error
}

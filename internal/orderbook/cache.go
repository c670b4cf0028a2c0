package orderbook

import (
	"context"
	"sort"
	"sync"
	"time"

	"matchcore/internal/clock"
	"matchcore/internal/models"
)

// Source is the subset of store.Store the cache needs; kept narrow so
// orderbook doesn't import store (avoiding an import cycle with packages
// that import both).
type Source interface {
	FindActiveOrders(ctx context.Context) ([]*models.Order, error)
}

// ValidityWindow is the default freshness window (spec §4.3 / §5).
const ValidityWindow = 30 * time.Second

// SnapshotCache maintains (orders, fetchedAt) exactly per spec §4.3: a
// bounded-freshness, process-local view of active orders. It is never
// mutated in place, only replaced wholesale on refresh.
type SnapshotCache struct {
	clock  clock.Clock
	source Source

	mu        sync.Mutex
	orders    []*models.Order
	fetchedAt time.Time
}

func NewSnapshotCache(c clock.Clock, source Source) *SnapshotCache {
	return &SnapshotCache{clock: c, source: source}
}

// Get returns the cached snapshot if still within ValidityWindow; otherwise
// queries the store and replaces the cache. On store failure it returns the
// prior vector (spec §7: "transient store failure during snapshot load:
// return the prior cache").
func (c *SnapshotCache) Get(ctx context.Context) []*models.Order {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.fetchedAt.IsZero() && c.clock.Now().Sub(c.fetchedAt) < ValidityWindow {
		return c.orders
	}

	fresh, err := c.source.FindActiveOrders(ctx)
	if err != nil {
		return c.orders
	}

	sortSnapshot(fresh)
	c.orders = fresh
	c.fetchedAt = c.clock.Now()
	return c.orders
}

func sortSnapshot(orders []*models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].Asset != orders[j].Asset {
			return orders[i].Asset < orders[j].Asset
		}
		if !orders[i].Price.Equal(orders[j].Price) {
			return orders[i].Price.GreaterThan(orders[j].Price)
		}
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
}

// Invalidate wipes fetchedAt, forcing the next Get to refresh. Called by the
// Trade Committer after a commit (spec §4.6).
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchedAt = time.Time{}
}

// PartitionByAsset groups a snapshot by asset, as the Matching Loop needs
// for step 3 of spec §4.1.
func PartitionByAsset(orders []*models.Order) map[string][]*models.Order {
	byAsset := make(map[string][]*models.Order)
	for _, o := range orders {
		byAsset[o.Asset] = append(byAsset[o.Asset], o)
	}
	return byAsset
}

// AssetsByOrderCountDesc returns asset names sorted busiest-first (spec
// §4.1 step 3's "heuristic: busiest first").
func AssetsByOrderCountDesc(byAsset map[string][]*models.Order) []string {
	assets := make([]string, 0, len(byAsset))
	for a := range byAsset {
		assets = append(assets, a)
	}
	sort.Slice(assets, func(i, j int) bool {
		ci, cj := len(byAsset[assets[i]]), len(byAsset[assets[j]])
		if ci != cj {
			return ci > cj
		}
		return assets[i] < assets[j]
	})
	return assets
}

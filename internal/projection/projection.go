// Package projection implements the order-book projection the Trade
// Committer asks to refresh after every commit (spec §4.6), kept separate
// from orderbook.SnapshotCache since getOrderBook (spec §6/§9) must read the
// store directly rather than the cache.
package projection

import (
	"context"

	"matchcore/internal/models"
	"matchcore/internal/orderbook"
)

// Refresher is the one-method collaborator contract the Committer depends
// on; asset-scoped so a single trade only pays for rebuilding its own book.
type Refresher interface {
	RefreshAsset(ctx context.Context, asset string) error
}

// AssetSource loads the current active orders for one asset directly from
// the store, bypassing the snapshot cache entirely.
type AssetSource interface {
	FindActiveOrdersForAsset(ctx context.Context, asset string) ([]*models.Order, error)
}

// Projector serves getOrderBook (spec §6) by rebuilding a fresh
// orderbook.Side pair straight from the store on every call.
type Projector struct {
	source AssetSource
	clock  interface{ NowUnix() int64 }
}

// nowFunc lets callers supply a deterministic clock without importing
// internal/clock (avoiding a needless dependency on its Timer machinery).
type nowFunc func() int64

func (f nowFunc) NowUnix() int64 { return f() }

func NewProjector(source AssetSource, now func() int64) *Projector {
	return &Projector{source: source, clock: nowFunc(now)}
}

// RefreshAsset satisfies Refresher; the Projector itself has no cache to
// invalidate, so this is a liveness check that the store is reachable for
// the asset that just traded.
func (p *Projector) RefreshAsset(ctx context.Context, asset string) error {
	_, err := p.source.FindActiveOrdersForAsset(ctx, asset)
	return err
}

// GetOrderBook returns the top-10 bids/offers plus totals for asset, read
// fresh from the store every time (spec §9: "getOrderBook must hit the
// store directly, never the cache").
func (p *Projector) GetOrderBook(ctx context.Context, asset string) (models.OrderBookSnapshot, error) {
	orders, err := p.source.FindActiveOrdersForAsset(ctx, asset)
	if err != nil {
		return models.OrderBookSnapshot{}, err
	}

	var bids, offers []*models.Order
	for _, o := range orders {
		if o.Side == models.SideBid {
			bids = append(bids, o)
		} else {
			offers = append(offers, o)
		}
	}

	bidSide := orderbook.BuildSide(bids, true)
	offerSide := orderbook.BuildSide(offers, false)

	return models.OrderBookSnapshot{
		Asset:         asset,
		Bids:          bidSide.TopLevels(10),
		Offers:        offerSide.TopLevels(10),
		TotalBidQty:   bidSide.TotalQty(),
		TotalOfferQty: offerSide.TotalQty(),
		FetchedAt:     p.clock.NowUnix(),
	}, nil
}

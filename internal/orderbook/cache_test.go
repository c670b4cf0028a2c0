package orderbook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"matchcore/internal/clock"
	"matchcore/internal/models"
)

type fakeSource struct {
	orders []*models.Order
	err    error
	calls  int
}

func (f *fakeSource) FindActiveOrders(ctx context.Context) ([]*models.Order, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}

func mkOrder(id string, price string) *models.Order {
	return &models.Order{ID: id, Price: decimal.RequireFromString(price), CreatedAt: time.Now()}
}

func TestSnapshotCacheServesWithinValidityWindow(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	src := &fakeSource{orders: []*models.Order{mkOrder("A", "1.00")}}
	cache := NewSnapshotCache(fc, src)

	cache.Get(context.Background())
	cache.Get(context.Background())

	if src.calls != 1 {
		t.Errorf("expected 1 store call within validity window, got %d", src.calls)
	}
}

func TestSnapshotCacheRefreshesAfterWindow(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	src := &fakeSource{orders: []*models.Order{mkOrder("A", "1.00")}}
	cache := NewSnapshotCache(fc, src)

	cache.Get(context.Background())
	fc.Advance(ValidityWindow + time.Second)
	cache.Get(context.Background())

	if src.calls != 2 {
		t.Errorf("expected 2 store calls after validity window, got %d", src.calls)
	}
}

func TestSnapshotCacheReturnsPriorOnStoreFailure(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	src := &fakeSource{orders: []*models.Order{mkOrder("A", "1.00")}}
	cache := NewSnapshotCache(fc, src)

	first := cache.Get(context.Background())

	fc.Advance(ValidityWindow + time.Second)
	src.err = errors.New("transient failure")
	second := cache.Get(context.Background())

	if len(second) != len(first) || second[0].ID != first[0].ID {
		t.Errorf("expected prior snapshot on store failure, got %+v", second)
	}
}

func TestSnapshotCacheInvalidateForcesRefresh(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	src := &fakeSource{orders: []*models.Order{mkOrder("A", "1.00")}}
	cache := NewSnapshotCache(fc, src)

	cache.Get(context.Background())
	cache.Invalidate()
	cache.Get(context.Background())

	if src.calls != 2 {
		t.Errorf("expected invalidate to force a second store call, got %d", src.calls)
	}
}

func TestPartitionAndSortByBusiest(t *testing.T) {
	orders := []*models.Order{
		mkOrder("A1", "1.00"), {ID: "x"},
	}
	orders[1].Asset = "BTC"
	orders[0].Asset = "ETH"
	orders = append(orders, &models.Order{ID: "B1", Asset: "BTC", Price: decimal.RequireFromString("2.00")})

	byAsset := PartitionByAsset(orders)
	assets := AssetsByOrderCountDesc(byAsset)

	if assets[0] != "BTC" {
		t.Errorf("expected BTC (2 orders) first, got %v", assets)
	}
}

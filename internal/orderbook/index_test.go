package orderbook

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"matchcore/internal/models"
)

func order(id, price string, createdAt time.Time, remaining int64) *models.Order {
	return &models.Order{ID: id, Price: decimal.RequireFromString(price), CreatedAt: createdAt, Remaining: remaining}
}

func TestBidSideBestIsHighestPrice(t *testing.T) {
	now := time.Now()
	orders := []*models.Order{
		order("B1", "99.00", now, 5),
		order("B2", "101.00", now.Add(time.Second), 3),
		order("B3", "100.00", now, 2),
	}
	side := BuildSide(orders, true)
	if got := side.Best(); got.ID != "B2" {
		t.Errorf("expected best bid B2, got %s", got.ID)
	}
}

func TestOfferSideBestIsLowestPrice(t *testing.T) {
	now := time.Now()
	orders := []*models.Order{
		order("O1", "99.00", now, 5),
		order("O2", "101.00", now, 3),
		order("O3", "98.00", now.Add(time.Second), 2),
	}
	side := BuildSide(orders, false)
	if got := side.Best(); got.ID != "O3" {
		t.Errorf("expected best offer O3, got %s", got.ID)
	}
}

func TestBestTieBrokenByEarliestCreatedAt(t *testing.T) {
	early := time.Now()
	late := early.Add(time.Minute)
	orders := []*models.Order{
		order("B1", "100.00", late, 5),
		order("B2", "100.00", early, 5),
	}
	side := BuildSide(orders, true)
	if got := side.Best(); got.ID != "B2" {
		t.Errorf("expected earliest order B2 to win tie, got %s", got.ID)
	}
}

func TestTopLevelsCapsAtN(t *testing.T) {
	now := time.Now()
	var orders []*models.Order
	for i := 0; i < 15; i++ {
		orders = append(orders, order(string(rune('a'+i)), "100.00", now.Add(time.Duration(i)*time.Second), 1))
	}
	side := BuildSide(orders, true)
	top := side.TopLevels(10)
	if len(top) != 10 {
		t.Errorf("expected 10 levels, got %d", len(top))
	}
}

func TestTotalQtySumsRemaining(t *testing.T) {
	now := time.Now()
	orders := []*models.Order{
		order("B1", "100.00", now, 3),
		order("B2", "99.00", now, 4),
	}
	side := BuildSide(orders, true)
	if side.TotalQty() != 7 {
		t.Errorf("expected total 7, got %d", side.TotalQty())
	}
}

func TestEmptySideBestIsNil(t *testing.T) {
	side := BuildSide(nil, true)
	if got := side.Best(); got != nil {
		t.Errorf("expected nil best on empty side, got %+v", got)
	}
}

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"matchcore/internal/models"
)

// MemoryStore is an in-memory Store implementation for tests, grounded on
// the teacher's internal/service/mocks_test.go hand-rolled-mock style: a
// map-backed struct with injectable errors for failure-path tests, guarded
// by a mutex since the matching engine may call it from several goroutines
// (response handlers, timers) even though production access is a single
// Postgres connection pool.
type MemoryStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	users  map[string]*models.User
	trades []*models.Trade

	FindActiveOrdersErr error
	CommitTradeErr       error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[string]*models.Order),
		users:  make(map[string]*models.User),
	}
}

func (m *MemoryStore) PutOrder(o *models.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
}

func (m *MemoryStore) PutUser(u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *MemoryStore) Trades() []*models.Trade {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Trade, len(m.trades))
	copy(out, m.trades)
	return out
}

func (m *MemoryStore) FindActiveOrders(ctx context.Context) ([]*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindActiveOrdersErr != nil {
		return nil, m.FindActiveOrdersErr
	}
	var out []*models.Order
	for _, o := range m.orders {
		if o.Status == models.OrderStatusActive && o.Remaining > 0 {
			out = append(out, o.Clone())
		}
	}
	sortOrders(out)
	return out, nil
}

func (m *MemoryStore) FindActiveOrdersForAsset(ctx context.Context, asset string) ([]*models.Order, error) {
	all, err := m.FindActiveOrders(ctx)
	if err != nil {
		return nil, err
	}
	var out []*models.Order
	for _, o := range all {
		if o.Asset == asset {
			out = append(out, o)
		}
	}
	return out, nil
}

func sortOrders(orders []*models.Order) {
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

func (m *MemoryStore) FindOrderByID(ctx context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (m *MemoryStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) UpdateOrderPrice(ctx context.Context, orderID string, newPrice decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.Price = newPrice
	return nil
}

func (m *MemoryStore) UpdateOrderAmount(ctx context.Context, orderID string, newAmount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.OriginalAmount = newAmount
	o.Remaining = newAmount
	return nil
}

func (m *MemoryStore) CommitTrade(ctx context.Context, bid, offer *models.Order, amount int64, price, commission decimal.Decimal) (*models.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CommitTradeErr != nil {
		return nil, m.CommitTradeErr
	}

	liveBid, ok := m.orders[bid.ID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	liveOffer, ok := m.orders[offer.ID]
	if !ok {
		return nil, ErrOrderNotFound
	}

	trade := &models.Trade{
		ID:            uuid.NewString(),
		Asset:         liveBid.Asset,
		Price:         price,
		Amount:        amount,
		BuyerOrderID:  liveBid.ID,
		SellerOrderID: liveOffer.ID,
		BuyerID:       liveBid.UserID,
		SellerID:      liveOffer.UserID,
		Commission:    commission,
		MatchType:     models.ClassifyMatchType(liveBid.OriginalAmount, liveOffer.OriginalAmount),
		CreatedAt:     time.Now(),
	}

	liveBid.Remaining -= amount
	if liveBid.Remaining == 0 {
		liveBid.Matched = true
		liveBid.Status = models.OrderStatusMatched
		liveBid.CounterpartyID = liveOffer.UserID
	}
	liveOffer.Remaining -= amount
	if liveOffer.Remaining == 0 {
		liveOffer.Matched = true
		liveOffer.Status = models.OrderStatusMatched
		liveOffer.CounterpartyID = liveBid.UserID
	}

	m.trades = append(m.trades, trade)

	bid.Remaining = liveBid.Remaining
	bid.Matched = liveBid.Matched
	bid.Status = liveBid.Status
	offer.Remaining = liveOffer.Remaining
	offer.Matched = liveOffer.Matched
	offer.Status = liveOffer.Status

	return trade, nil
}

// Package orderbook provides the price-ordered per-asset index used both by
// the Snapshot Cache (spec §4.3) and by the getOrderBook projection (spec
// §6), plus the Snapshot Cache itself.
package orderbook

import (
	"sort"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
	"github.com/shopspring/decimal"

	"matchcore/internal/models"
)

// priceCents keys the tree by price in integer cents so gods/v2's generic
// ordered tree — which needs an orderable key, not a decimal.Decimal — can
// give O(log n) best-price access. The decimal.Decimal itself is carried in
// the PriceLevel value, never reconstructed from the cents key.
type priceCents int64

func toCents(p decimal.Decimal) priceCents {
	return priceCents(p.Shift(2).Round(0).IntPart())
}

// PriceLevel is every order resting at one exact price, time-ordered.
type PriceLevel struct {
	Price  decimal.Decimal
	Orders []*models.Order // earliest createdAt first
}

// Side is a price-ordered index of one side (bids or offers) of one asset's
// book. Bids are ordered best(highest)-first; offers best(lowest)-first.
// Grounded on lightning-exchange's orderbook.RedBlackTree/ShardedPriceTree
// (emirpasic/gods/v2 redblacktree.NewWith + Left() giving the O(log n) best
// element), scaled down from its full NASDAQ-ITCH-style price-time-priority
// book to this spec's single-best-level semantics: Best() is the only
// O(log n)-sensitive read this repo needs; the top-10/total projections
// below are a plain sorted scan, matching the spec's stated target of small
// per-asset order counts rather than exchange-grade depth.
type Side struct {
	tree *rbt.Tree[priceCents, *PriceLevel]
	bid  bool

	// levels is maintained best-first alongside tree for TopLevels/TotalQty;
	// this spec's small per-asset scale doesn't warrant tree traversal there.
	levels []*PriceLevel
}

func newSide(bid bool) *Side {
	var cmp func(a, b priceCents) int
	if bid {
		cmp = func(a, b priceCents) int {
			switch {
			case a > b:
				return -1
			case a < b:
				return 1
			default:
				return 0
			}
		}
	} else {
		cmp = func(a, b priceCents) int {
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		}
	}
	return &Side{tree: rbt.NewWith[priceCents, *PriceLevel](cmp), bid: bid}
}

// BuildSide indexes orders (already filtered to one side of one asset) into
// a price-ordered Side, orders at each price level kept in createdAt order.
func BuildSide(orders []*models.Order, bid bool) *Side {
	s := newSide(bid)
	byPrice := make(map[priceCents]*PriceLevel)
	for _, o := range orders {
		key := toCents(o.Price)
		level, ok := byPrice[key]
		if !ok {
			level = &PriceLevel{Price: o.Price}
			byPrice[key] = level
			s.tree.Put(key, level)
			s.levels = append(s.levels, level)
		}
		level.Orders = append(level.Orders, o)
	}

	for _, level := range s.levels {
		sort.Slice(level.Orders, func(i, j int) bool {
			return level.Orders[i].CreatedAt.Before(level.Orders[j].CreatedAt)
		})
	}
	sort.Slice(s.levels, func(i, j int) bool {
		if bid {
			return s.levels[i].Price.GreaterThan(s.levels[j].Price)
		}
		return s.levels[i].Price.LessThan(s.levels[j].Price)
	})
	return s
}

// Best returns the best order on this side (spec §4.2 step 2: highest
// price for bids / lowest for offers, ties broken by earliest createdAt),
// or nil if the side is empty.
func (s *Side) Best() *models.Order {
	if s.tree.Empty() {
		return nil
	}
	node := s.tree.Left()
	if node == nil || len(node.Value.Orders) == 0 {
		return nil
	}
	return node.Value.Orders[0]
}

// TopLevels returns up to n resting orders, best-first, flattened into
// OrderBookLevel rows.
func (s *Side) TopLevels(n int) []models.OrderBookLevel {
	var out []models.OrderBookLevel
	for _, level := range s.levels {
		for _, o := range level.Orders {
			if len(out) >= n {
				return out
			}
			out = append(out, models.OrderBookLevel{
				OrderID:   o.ID,
				Price:     level.Price,
				Remaining: o.Remaining,
			})
		}
	}
	return out
}

// TotalQty sums remaining quantity across the whole side.
func (s *Side) TotalQty() int64 {
	var total int64
	for _, level := range s.levels {
		for _, o := range level.Orders {
			total += o.Remaining
		}
	}
	return total
}

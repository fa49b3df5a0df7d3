package engine

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"itemMarket/internal/domain/models"
)

// OrderBook holds all resting orders for a single item, split by side and by
// kind. Priority is decided by explicit comparisons over price and the
// order's arrival sequence number, never by slice position, so removal and
// re-insertion keep priority stable.
//
// The mutex is taken by the Engine for the whole inspect-decide-mutate-commit
// sequence; book methods themselves assume it is held.
type OrderBook struct {
	itemID uuid.UUID

	mu    sync.Mutex
	buy   bookSide
	sell  bookSide
	index map[uuid.UUID]*models.Order
}

type bookSide struct {
	limits  []*models.Order
	markets []*models.Order
}

func newOrderBook(itemID uuid.UUID) *OrderBook {
	return &OrderBook{
		itemID: itemID,
		index:  make(map[uuid.UUID]*models.Order),
	}
}

func (ob *OrderBook) side(s models.Side) *bookSide {
	if s == models.SideBuy {
		return &ob.buy
	}
	return &ob.sell
}

func (ob *OrderBook) get(id uuid.UUID) (*models.Order, bool) {
	order, found := ob.index[id]
	return order, found
}

func (ob *OrderBook) insert(order *models.Order) {
	side := ob.side(order.Side)
	if order.Kind == models.KindMarket {
		side.markets = append(side.markets, order)
	} else {
		side.limits = append(side.limits, order)
	}
	ob.index[order.ID] = order
}

func (ob *OrderBook) removeByID(id uuid.UUID) (*models.Order, bool) {
	order, found := ob.index[id]
	if !found {
		return nil, false
	}

	side := ob.side(order.Side)
	if order.Kind == models.KindMarket {
		side.markets = removeOrder(side.markets, id)
	} else {
		side.limits = removeOrder(side.limits, id)
	}
	delete(ob.index, id)

	return order, true
}

func removeOrder(orders []*models.Order, id uuid.UUID) []*models.Order {
	for i, order := range orders {
		if order.ID == id {
			return append(orders[:i], orders[i+1:]...)
		}
	}
	return orders
}

// bestLimit returns the highest-priority resting limit order on the given
// side: lowest price first for sells, highest first for buys, earliest
// arrival on ties.
func (ob *OrderBook) bestLimit(side models.Side) *models.Order {
	var best *models.Order
	for _, order := range ob.side(side).limits {
		if best == nil || limitBefore(order, best, side) {
			best = order
		}
	}
	return best
}

// bestCrossingLimit is bestLimit restricted to candidates satisfying the
// crossing predicate against the submitted limit price: a resting sell
// crosses when its price <= limit, a resting buy when its price >= limit.
func (ob *OrderBook) bestCrossingLimit(side models.Side, limit decimal.Decimal) *models.Order {
	var best *models.Order
	for _, order := range ob.side(side).limits {
		if !crosses(order, side, limit) {
			continue
		}
		if best == nil || limitBefore(order, best, side) {
			best = order
		}
	}
	return best
}

// firstMarket returns the earliest-arrived resting market order on the given
// side. Market orders carry no price, so arrival order is the only priority.
func (ob *OrderBook) firstMarket(side models.Side) *models.Order {
	var first *models.Order
	for _, order := range ob.side(side).markets {
		if first == nil || order.Seq < first.Seq {
			first = order
		}
	}
	return first
}

func limitBefore(a, b *models.Order, side models.Side) bool {
	cmp := a.Price.Cmp(*b.Price)
	if cmp != 0 {
		if side == models.SideSell {
			return cmp < 0
		}
		return cmp > 0
	}
	return a.Seq < b.Seq
}

func crosses(candidate *models.Order, side models.Side, limit decimal.Decimal) bool {
	if side == models.SideSell {
		return candidate.Price.LessThanOrEqual(limit)
	}
	return candidate.Price.GreaterThanOrEqual(limit)
}

// list returns copies of all resting orders, optionally filtered by
// submitter, in arrival order.
func (ob *OrderBook) list(userID uuid.UUID) []models.Order {
	out := make([]models.Order, 0, len(ob.index))
	for _, order := range ob.index {
		if userID != uuid.Nil && order.UserID != userID {
			continue
		}
		out = append(out, *order)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Seq < out[j].Seq
	})

	return out
}

func (ob *OrderBook) size() int {
	return len(ob.index)
}

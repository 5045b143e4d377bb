package book

import (
	"sync"

	"github.com/Leeps-Lab/etf-cda/pkg/logger"

	orderv1 "github.com/Leeps-Lab/etf-cda/internal/domain/order/v1"
)

// Book is a replicated order book for a single asset. It holds bids and
// asks as price-time sorted slices and appends confirmed trades to a
// timestamp-ordered history. All matching happens upstream at the
// exchange; the book only mirrors it.
type Book struct {
	mu sync.RWMutex

	assetName string
	bids      []orderv1.Order
	asks      []orderv1.Order
	trades    []orderv1.Trade
	resting   map[string]bool

	logger *logger.Logger
}

// NewBook creates an empty book for the given asset.
func NewBook(assetName string, log *logger.Logger) *Book {
	return &Book{
		assetName: assetName,
		resting:   make(map[string]bool),
		logger:    log,
	}
}

// Insert adds a confirmed order at its price-time position. Orders with
// an ID already resting are ignored.
func (b *Book) Insert(order orderv1.Order) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.resting[order.ID] {
		b.logger.Warn("duplicate order insert ignored",
			logger.Field{Key: "orderID", Value: order.ID},
			logger.Field{Key: "asset", Value: b.assetName},
		)
		return false
	}

	side := &b.asks
	if order.IsBid {
		side = &b.bids
	}

	idx := len(*side)
	for i := range *side {
		if order.HigherPriority(&(*side)[i]) {
			idx = i
			break
		}
	}

	*side = append(*side, orderv1.Order{})
	copy((*side)[idx+1:], (*side)[idx:])
	(*side)[idx] = order

	b.resting[order.ID] = true
	return true
}

// Remove takes an order out of the book. A miss is not an error: the
// order may already have been consumed by an earlier trade.
func (b *Book) Remove(orderID string, isBid bool) (orderv1.Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.remove(orderID, isBid)
}

func (b *Book) remove(orderID string, isBid bool) (orderv1.Order, bool) {
	side := &b.asks
	if isBid {
		side = &b.bids
	}

	for i := range *side {
		if (*side)[i].ID == orderID {
			order := (*side)[i]
			*side = append((*side)[:i], (*side)[i+1:]...)
			delete(b.resting, orderID)
			return order, true
		}
	}

	return orderv1.Order{}, false
}

// ApplyTrade removes the trade's making orders from the book and
// records the trade in the history. Making orders not found are warn
// logged and skipped; if none are found the trade is treated as a
// duplicate delivery and the history is left untouched. The taking
// order is removed too if it happens to be resting, silently otherwise
// since takers usually never rest.
func (b *Book) ApplyTrade(trade orderv1.Trade) []orderv1.TradedOrder {
	b.mu.Lock()
	defer b.mu.Unlock()

	applied := make([]orderv1.TradedOrder, 0, len(trade.MakingOrders))
	for _, mo := range trade.MakingOrders {
		if _, ok := b.remove(mo.ID, mo.IsBid); !ok {
			b.logger.Warn("making order not in book, skipping",
				logger.Field{Key: "orderID", Value: mo.ID},
				logger.Field{Key: "asset", Value: b.assetName},
				logger.Field{Key: "tradeTimestamp", Value: trade.Timestamp},
			)
			continue
		}
		applied = append(applied, mo)
	}

	b.remove(trade.TakingOrder.ID, trade.TakingOrder.IsBid)

	if len(applied) == 0 {
		return applied
	}

	idx := len(b.trades)
	for i := range b.trades {
		if b.trades[i].Timestamp > trade.Timestamp {
			idx = i
			break
		}
	}

	b.trades = append(b.trades, orderv1.Trade{})
	copy(b.trades[idx+1:], b.trades[idx:])
	b.trades[idx] = trade

	return applied
}

// Bids returns a copy of the resting bids, best price first.
func (b *Book) Bids() []orderv1.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]orderv1.Order, len(b.bids))
	copy(out, b.bids)
	return out
}

// Asks returns a copy of the resting asks, best price first.
func (b *Book) Asks() []orderv1.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]orderv1.Order, len(b.asks))
	copy(out, b.asks)
	return out
}

// Trades returns a copy of the trade history in timestamp order.
func (b *Book) Trades() []orderv1.Trade {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]orderv1.Trade, len(b.trades))
	copy(out, b.trades)
	return out
}

// Restore replaces the book's contents wholesale from a snapshot. The
// inputs are assumed to already be in book order.
func (b *Book) Restore(bids, asks []orderv1.Order, trades []orderv1.Trade) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bids = make([]orderv1.Order, len(bids))
	copy(b.bids, bids)
	b.asks = make([]orderv1.Order, len(asks))
	copy(b.asks, asks)
	b.trades = make([]orderv1.Trade, len(trades))
	copy(b.trades, trades)

	b.resting = make(map[string]bool, len(bids)+len(asks))
	for _, o := range b.bids {
		b.resting[o.ID] = true
	}
	for _, o := range b.asks {
		b.resting[o.ID] = true
	}
}

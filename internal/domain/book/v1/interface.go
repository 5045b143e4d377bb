package bookv1

import (
	orderv1 "github.com/Leeps-Lab/etf-cda/internal/domain/order/v1"
)

// Book defines the interface for the replicated order book. The book
// never matches orders itself, it only mirrors state the exchange has
// already confirmed.
type Book interface {
	// Insert adds a confirmed order to its side of the book. It returns
	// false if an order with the same ID is already resting.
	Insert(order orderv1.Order) bool
	// Remove takes an order out of the book by ID and side. The second
	// return value is false if no such order is resting.
	Remove(orderID string, isBid bool) (orderv1.Order, bool)
	// ApplyTrade removes the making orders (and the taking order, if it
	// happens to be resting) named by a confirmed trade and records the
	// trade in the history. It returns the making orders that were
	// actually found and removed; an empty slice means the trade had no
	// effect on the book.
	ApplyTrade(trade orderv1.Trade) []orderv1.TradedOrder
	// Bids returns the resting bids, best price first.
	Bids() []orderv1.Order
	// Asks returns the resting asks, best price first.
	Asks() []orderv1.Order
	// Trades returns the trade history in timestamp order.
	Trades() []orderv1.Trade
	// Restore replaces the book's contents wholesale from a snapshot.
	Restore(bids, asks []orderv1.Order, trades []orderv1.Trade)
}

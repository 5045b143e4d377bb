package eventv1

import (
	orderv1 "github.com/Leeps-Lab/etf-cda/internal/domain/order/v1"
)

// Kind enumerates the state-change notifications the replica emits to
// its subscribers after applying a confirmed feed message.
type Kind string

const (
	// KindConfirmOrderEnter signals an order was added to the book.
	KindConfirmOrderEnter Kind = "confirm-order-enter"
	// KindConfirmTrade signals a trade was applied.
	KindConfirmTrade Kind = "confirm-trade"
	// KindConfirmOrderCancel signals an order was removed from the book.
	KindConfirmOrderCancel Kind = "confirm-order-cancel"
	// KindError relays an exchange rejection aimed at the local
	// participant.
	KindError Kind = "error"
)

// Event is a state-change notification. Order is set for enter and
// cancel events, Trade for trade events, Message for errors.
type Event struct {
	Kind    Kind           `json:"kind"`
	Order   *orderv1.Order `json:"order,omitempty"`
	Trade   *orderv1.Trade `json:"trade,omitempty"`
	Message string         `json:"message,omitempty"`
}

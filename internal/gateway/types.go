package gateway

import (
	orderv1 "github.com/Leeps-Lab/etf-cda/internal/domain/order/v1"
)

// BookSnapshot is the REST view of one asset's order book.
type BookSnapshot struct {
	AssetName string          `json:"asset_name"`
	Bids      []orderv1.Order `json:"bids"`
	Asks      []orderv1.Order `json:"asks"`
	Timestamp int64           `json:"timestamp"`
}

// EnterRequest asks the exchange to enter an order for the local
// participant.
type EnterRequest struct {
	AssetName string `json:"asset_name"`
	IsBid     bool   `json:"is_bid"`
	Price     int64  `json:"price"`
	Volume    int64  `json:"volume"`
}

// CancelRequest asks the exchange to remove a resting order.
type CancelRequest struct {
	AssetName string `json:"asset_name"`
	OrderID   string `json:"order_id"`
	IsBid     bool   `json:"is_bid"`
}

// AcceptRequest asks the exchange to cross immediately against a
// resting order.
type AcceptRequest struct {
	AssetName string `json:"asset_name"`
	OrderID   string `json:"order_id"`
	Volume    int64  `json:"volume"`
}

// CommandAck acknowledges that a command was published. The outcome
// arrives later over the event stream.
type CommandAck struct {
	Status string `json:"status"`
}

// ErrorResponse is the REST error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WSMessage is the base structure for all WebSocket messages.
type WSMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// WSSubscribeRequest is sent by a client to manage channel
// subscriptions, e.g. ["book:A", "trades:A", "account"].
type WSSubscribeRequest struct {
	Op       string   `json:"op"`
	Channels []string `json:"channels"`
}

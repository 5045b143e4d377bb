package commandv1

import (
	"encoding/json"
)

// CommandType enumerates the intents a participant can send to the
// exchange.
type CommandType string

const (
	// CommandTypeEnter requests entry of a new order.
	CommandTypeEnter CommandType = "enter"
	// CommandTypeCancel requests removal of a resting order.
	CommandTypeCancel CommandType = "cancel"
	// CommandTypeAcceptImmediate requests an immediate cross against a
	// specific resting order.
	CommandTypeAcceptImmediate CommandType = "accept_immediate"
)

// Envelope is the outer wire frame of an outbound command.
type Envelope struct {
	Type    CommandType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// EnterPayload asks the exchange to enter an order. The exchange
// assigns the order ID and timestamp on confirmation.
type EnterPayload struct {
	ParticipantID string `json:"pcode"`
	AssetName     string `json:"asset_name"`
	IsBid         bool   `json:"is_bid"`
	Price         int64  `json:"price"`
	Volume        int64  `json:"volume"`
}

// CancelPayload asks the exchange to remove a resting order.
type CancelPayload struct {
	ParticipantID string `json:"pcode"`
	AssetName     string `json:"asset_name"`
	OrderID       string `json:"order_id"`
	IsBid         bool   `json:"is_bid"`
}

// AcceptPayload asks the exchange to cross the participant against a
// specific resting order at that order's price.
type AcceptPayload struct {
	ParticipantID string `json:"pcode"`
	AssetName     string `json:"asset_name"`
	OrderID       string `json:"order_id"`
	Volume        int64  `json:"volume"`
}

// ToBytes wraps a payload in an envelope and serializes it.
func ToBytes(commandType CommandType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Envelope{
		Type:    commandType,
		Payload: raw,
	})
}

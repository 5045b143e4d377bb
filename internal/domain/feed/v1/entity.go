package feedv1

import (
	"encoding/json"
	"fmt"

	"github.com/Leeps-Lab/etf-cda/pkg/errors"

	orderv1 "github.com/Leeps-Lab/etf-cda/internal/domain/order/v1"
)

// MessageType enumerates the confirmation messages the exchange emits.
type MessageType string

const (
	// MessageTypeConfirmEnter confirms an order entered the book.
	MessageTypeConfirmEnter MessageType = "confirm_enter"
	// MessageTypeConfirmTrade confirms a match occurred.
	MessageTypeConfirmTrade MessageType = "confirm_trade"
	// MessageTypeConfirmCancel confirms an order left the book.
	MessageTypeConfirmCancel MessageType = "confirm_cancel"
	// MessageTypeError carries a rejection aimed at one participant.
	MessageTypeError MessageType = "error"
)

// Envelope is the outer wire frame of a feed message.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorPayload is the payload of an error message.
type ErrorPayload struct {
	ParticipantID string `json:"pcode"`
	Message       string `json:"message"`
}

// Message is a decoded feed message. Exactly one of the payload fields
// is non-nil, selected by Type.
type Message struct {
	Type   MessageType
	Enter  *orderv1.Order
	Trade  *orderv1.Trade
	Cancel *orderv1.Order
	Error  *ErrorPayload
}

// Decode parses a raw feed frame into a Message. Unknown message types
// and malformed payloads are protocol errors.
func Decode(data []byte) (Message, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Message{}, errors.NewErrorDetails(err.Error(), string(errors.FeedDecodeError), "payload")
	}

	msg := Message{Type: envelope.Type}

	var err error
	switch envelope.Type {
	case MessageTypeConfirmEnter:
		msg.Enter = &orderv1.Order{}
		err = json.Unmarshal(envelope.Payload, msg.Enter)
	case MessageTypeConfirmTrade:
		msg.Trade = &orderv1.Trade{}
		err = json.Unmarshal(envelope.Payload, msg.Trade)
	case MessageTypeConfirmCancel:
		msg.Cancel = &orderv1.Order{}
		err = json.Unmarshal(envelope.Payload, msg.Cancel)
	case MessageTypeError:
		msg.Error = &ErrorPayload{}
		err = json.Unmarshal(envelope.Payload, msg.Error)
	default:
		return Message{}, errors.NewErrorDetails(
			fmt.Sprintf("unknown message type %q", envelope.Type),
			string(errors.ProtocolError),
			"type",
		)
	}

	if err != nil {
		return Message{}, errors.NewErrorDetails(err.Error(), string(errors.FeedDecodeError), string(envelope.Type))
	}

	return msg, nil
}

package commandv1

import (
	"context"
)

// Publisher defines the interface for sending participant intents to
// the exchange. Publishing a command carries no local effect; state
// changes only arrive back through the confirmation feed.
type Publisher interface {
	// Enter publishes an order entry request.
	Enter(ctx context.Context, payload EnterPayload) error
	// Cancel publishes a cancel request for a resting order.
	Cancel(ctx context.Context, payload CancelPayload) error
	// AcceptImmediate publishes an immediate-cross request against a
	// resting order.
	AcceptImmediate(ctx context.Context, payload AcceptPayload) error
	// Close closes the publisher.
	Close() error
}

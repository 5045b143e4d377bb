package feedv1

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// FeedReader defines the interface for reading confirmation messages
// from the exchange feed.
type FeedReader interface {
	// ReadMessage reads the next frame and returns both the raw Kafka
	// message (for offsets and commits) and the decoded payload.
	ReadMessage(ctx context.Context) (kafka.Message, Message, error)
	// SetOffset sets the offset for the reader
	SetOffset(offset int64) error
	// Close closes the reader
	Close() error

	// CommitMessages commits the messages to Kafka after processing
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

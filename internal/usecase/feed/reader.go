package feed

import (
	"context"

	"github.com/Leeps-Lab/etf-cda/pkg/config"
	"github.com/Leeps-Lab/etf-cda/pkg/logger"
	"github.com/segmentio/kafka-go"

	feedv1 "github.com/Leeps-Lab/etf-cda/internal/domain/feed/v1"
)

// Reader consumes confirmation messages from the exchange feed topic.
type Reader struct {
	kafkaReader *kafka.Reader
	logger      *logger.Logger
}

// NewReader creates a Kafka reader on the feed topic. The feed is a
// single ordered partition; replay starts from the beginning unless
// SetOffset moves it.
func NewReader(cfg config.KafkaConfig, log *logger.Logger) *Reader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		Partition:   0,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})

	return &Reader{
		kafkaReader: kafkaReader,
		logger:      log,
	}
}

func (r *Reader) logError(err error, operation string) {
	r.logger.Error(err,
		logger.Field{Key: "error", Value: err.Error()},
		logger.Field{Key: "operation", Value: operation},
	)
}

// SetOffset sets the offset for the Kafka reader.
func (r *Reader) SetOffset(offset int64) error {
	if err := r.kafkaReader.SetOffset(offset); err != nil {
		r.logError(err, "SetOffset")
		return err
	}
	return nil
}

// ReadMessage reads the next frame from the feed and decodes it.
func (r *Reader) ReadMessage(ctx context.Context) (kafka.Message, feedv1.Message, error) {
	msg, err := r.kafkaReader.ReadMessage(ctx)
	if err != nil {
		r.logError(err, "ReadMessage")
		return kafka.Message{Offset: 0}, feedv1.Message{}, err
	}

	decoded, err := feedv1.Decode(msg.Value)
	if err != nil {
		r.logError(err, "DecodeMessage")
		return msg, feedv1.Message{}, err
	}

	r.logger.Debug("ReadMessage",
		logger.Field{Key: "type", Value: decoded.Type},
		logger.Field{Key: "offset", Value: msg.Offset},
	)

	return msg, decoded, nil
}

// Close properly closes the Kafka reader.
func (r *Reader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(err, "Close")
		return err
	}
	return nil
}

// CommitMessages commits the messages to Kafka after processing. The
// reader runs without a consumer group, offsets live in the snapshot,
// so there is nothing to commit.
func (r *Reader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	return nil
}

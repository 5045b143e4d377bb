package command

import (
	"context"

	"github.com/Leeps-Lab/etf-cda/pkg/config"
	"github.com/Leeps-Lab/etf-cda/pkg/errors"
	"github.com/Leeps-Lab/etf-cda/pkg/logger"
	"github.com/oklog/ulid/v2"
	"github.com/segmentio/kafka-go"

	commandv1 "github.com/Leeps-Lab/etf-cda/internal/domain/command/v1"
)

// Publisher sends participant intents to the exchange command topic.
// Each message carries a fresh ULID key for correlation in the broker
// logs.
type Publisher struct {
	kafkaWriter *kafka.Writer
	logger      *logger.Logger
}

// NewPublisher creates a Kafka publisher on the command topic.
func NewPublisher(cfg config.KafkaConfig, log *logger.Logger) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
	})

	return &Publisher{
		kafkaWriter: kafkaWriter,
		logger:      log,
	}
}

// Enter publishes an order entry request.
func (p *Publisher) Enter(ctx context.Context, payload commandv1.EnterPayload) error {
	return p.publish(ctx, commandv1.CommandTypeEnter, payload)
}

// Cancel publishes a cancel request for a resting order.
func (p *Publisher) Cancel(ctx context.Context, payload commandv1.CancelPayload) error {
	return p.publish(ctx, commandv1.CommandTypeCancel, payload)
}

// AcceptImmediate publishes an immediate-cross request against a
// resting order.
func (p *Publisher) AcceptImmediate(ctx context.Context, payload commandv1.AcceptPayload) error {
	return p.publish(ctx, commandv1.CommandTypeAcceptImmediate, payload)
}

// Close closes the underlying Kafka writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}

func (p *Publisher) publish(ctx context.Context, commandType commandv1.CommandType, payload any) error {
	value, err := commandv1.ToBytes(commandType, payload)
	if err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "commandType", Value: commandType},
		)
		return errors.NewTracer(string(errors.CommandPublishError)).Wrap(err)
	}

	msg := kafka.Message{
		Key:   []byte(ulid.Make().String()),
		Value: value,
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "commandType", Value: commandType},
			logger.Field{Key: "payload", Value: payload},
		)
		return errors.NewTracer(string(errors.CommandPublishError)).Wrap(err)
	}

	p.logger.InfoContext(ctx, "command published",
		logger.Field{Key: "commandType", Value: commandType},
	)
	return nil
}

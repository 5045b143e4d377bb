package snapshot

import (
	"context"
	"encoding/json"

	"github.com/Leeps-Lab/etf-cda/pkg/errors"
	"github.com/Leeps-Lab/etf-cda/pkg/logger"
	"github.com/Leeps-Lab/etf-cda/pkg/redis"

	snapshotv1 "github.com/Leeps-Lab/etf-cda/internal/domain/snapshot/v1"
)

const keyPrefix = "replica:"

// Store persists replica snapshots in Redis, one key per session.
type Store struct {
	logger      *logger.Logger
	redisclient redis.Client
}

// NewStore creates a snapshot store backed by the given Redis client.
func NewStore(redisclient redis.Client, log *logger.Logger) *Store {
	return &Store{
		logger:      log,
		redisclient: redisclient,
	}
}

// Store serializes the snapshot and writes it under the session key.
func (s *Store) Store(ctx context.Context, sessionID string, snapshot *snapshotv1.Snapshot) error {
	buf, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "sessionID",
			Value: sessionID,
		})
		return errors.NewTracer(string(errors.SnapshotMarshalError)).Wrap(err)
	}

	if err := s.redisclient.Set(ctx, keyPrefix+sessionID, buf, 0); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "sessionID",
			Value: sessionID,
		})
		return errors.NewTracer(string(errors.SnapshotStoreError)).Wrap(err)
	}

	s.logger.InfoContext(ctx, "snapshot stored",
		logger.Field{Key: "sessionID", Value: sessionID},
		logger.Field{Key: "feedOffset", Value: snapshot.FeedOffset},
	)
	return nil
}

// Load fetches and deserializes the snapshot for a session. It returns
// (nil, nil) when no snapshot has been stored yet.
func (s *Store) Load(ctx context.Context, sessionID string) (*snapshotv1.Snapshot, error) {
	data, err := s.redisclient.Get(ctx, keyPrefix+sessionID)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "sessionID",
			Value: sessionID,
		})
		return nil, errors.NewTracer(string(errors.SnapshotLoadError)).Wrap(err)
	}

	if data == "" {
		s.logger.WarnContext(ctx, "no snapshot found, starting fresh", logger.Field{
			Key:   "sessionID",
			Value: sessionID,
		})
		return nil, nil
	}

	var snapshot snapshotv1.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "sessionID",
			Value: sessionID,
		})
		return nil, errors.NewTracer(string(errors.SnapshotUnmarshalError)).Wrap(err)
	}

	return &snapshot, nil
}

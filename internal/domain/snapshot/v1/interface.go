package snapshotv1

import (
	"context"
)

// Store defines the interface for persisting and recovering replica
// snapshots.
type Store interface {
	// Load fetches the snapshot for a session. It returns (nil, nil)
	// when no snapshot exists yet.
	Load(ctx context.Context, sessionID string) (*Snapshot, error)
	// Store persists the snapshot for a session, replacing any previous
	// one.
	Store(ctx context.Context, sessionID string, snapshot *Snapshot) error
}

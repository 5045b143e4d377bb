package replica

import "time"

// Options tunes snapshotting behavior.
type Options struct {
	// SnapshotInterval is how often the snapshot manager wakes up.
	SnapshotInterval time.Duration
	// SnapshotOffsetDelta is the minimum number of newly applied feed
	// messages before another snapshot is worth writing.
	SnapshotOffsetDelta int64
}

// DefaultOptions returns the default snapshotting options.
func DefaultOptions() *Options {
	return &Options{
		SnapshotInterval:    30 * time.Second,
		SnapshotOffsetDelta: 100,
	}
}

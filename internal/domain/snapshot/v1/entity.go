package snapshotv1

import (
	ledgerv1 "github.com/Leeps-Lab/etf-cda/internal/domain/ledger/v1"
	orderv1 "github.com/Leeps-Lab/etf-cda/internal/domain/order/v1"
)

// Snapshot represents the full replica state at a specific point in the
// confirmation feed, used to bootstrap mid-session joins.
type Snapshot struct {
	// FeedOffset is the offset of the last feed message folded into
	// this snapshot. Replay resumes at FeedOffset + 1.
	FeedOffset int64 `json:"feed_offset"`

	Bids   []orderv1.Order `json:"bids"`
	Asks   []orderv1.Order `json:"asks"`
	Trades []orderv1.Trade `json:"trades"`

	// Holdings fields marshal inline alongside the book state.
	ledgerv1.Holdings
}

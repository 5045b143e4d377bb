package ledger

import (
	"sync"

	ledgerv1 "github.com/Leeps-Lab/etf-cda/internal/domain/ledger/v1"
)

// Ledger tracks the local participant's settled and available cash and
// asset positions. Mutations arrive from confirmed exchange events and
// are applied unconditionally; balances may go negative when the
// session rules allow shorting.
type Ledger struct {
	mu sync.RWMutex

	settledAssets   map[string]int64
	availableAssets map[string]int64
	settledCash   int64
	availableCash int64
}

// NewLedger creates a ledger holding the given starting positions for
// each asset in assets.
func NewLedger(assets []string, startingCash int64, startingAssets int64) *Ledger {
	l := &Ledger{
		settledAssets:   make(map[string]int64, len(assets)),
		availableAssets: make(map[string]int64, len(assets)),
		settledCash:     startingCash,
		availableCash:   startingCash,
	}

	for _, name := range assets {
		l.settledAssets[name] = startingAssets
		l.availableAssets[name] = startingAssets
	}

	return l
}

// Reserve earmarks funds backing a newly entered order.
func (l *Ledger) Reserve(price, volume int64, isBid bool, assetName string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if isBid {
		l.availableCash -= price * volume
	} else {
		l.availableAssets[assetName] -= volume
	}
}

// Release returns a reservation, mirroring Reserve.
func (l *Ledger) Release(price, volume int64, isBid bool, assetName string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if isBid {
		l.availableCash += price * volume
	} else {
		l.availableAssets[assetName] += volume
	}
}

// Settle applies an executed trade to both settled and available
// holdings. A bid pays price*volume cash and receives volume units of
// the asset; an ask is the mirror image.
func (l *Ledger) Settle(price, volume int64, isBid bool, assetName string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cost := price * volume
	if isBid {
		l.settledCash -= cost
		l.availableCash -= cost
		l.settledAssets[assetName] += volume
		l.availableAssets[assetName] += volume
	} else {
		l.settledCash += cost
		l.availableCash += cost
		l.settledAssets[assetName] -= volume
		l.availableAssets[assetName] -= volume
	}
}

// CheckAvailable reports whether the available balance could fund the
// order. Advisory only: the exchange is the authority, and its
// rejections arrive back through the feed.
func (l *Ledger) CheckAvailable(price, volume int64, isBid bool, assetName string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if isBid {
		return l.availableCash >= price*volume
	}
	return l.availableAssets[assetName] >= volume
}

// Holdings returns a copy of the current positions.
func (l *Ledger) Holdings() ledgerv1.Holdings {
	l.mu.RLock()
	defer l.mu.RUnlock()

	h := ledgerv1.Holdings{
		SettledAssets:   make(map[string]int64, len(l.settledAssets)),
		AvailableAssets: make(map[string]int64, len(l.availableAssets)),
		SettledCash:     l.settledCash,
		AvailableCash:   l.availableCash,
	}
	for name, v := range l.settledAssets {
		h.SettledAssets[name] = v
	}
	for name, v := range l.availableAssets {
		h.AvailableAssets[name] = v
	}

	return h
}

// Restore replaces all positions wholesale from a snapshot.
func (l *Ledger) Restore(h ledgerv1.Holdings) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.settledCash = h.SettledCash
	l.availableCash = h.AvailableCash
	l.settledAssets = make(map[string]int64, len(h.SettledAssets))
	for name, v := range h.SettledAssets {
		l.settledAssets[name] = v
	}
	l.availableAssets = make(map[string]int64, len(h.AvailableAssets))
	for name, v := range h.AvailableAssets {
		l.availableAssets[name] = v
	}
}

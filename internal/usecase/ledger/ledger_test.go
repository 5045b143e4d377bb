package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedger_StartingPositions(t *testing.T) {
	l := NewLedger([]string{"A", "B"}, 100, 10)

	h := l.Holdings()
	assert.Equal(t, int64(100), h.SettledCash)
	assert.Equal(t, int64(100), h.AvailableCash)
	assert.Equal(t, int64(10), h.SettledAssets["A"])
	assert.Equal(t, int64(10), h.AvailableAssets["B"])
}

func TestLedger_ReserveRelease_Bid(t *testing.T) {
	l := NewLedger([]string{"A"}, 100, 10)

	l.Reserve(5, 2, true, "A")
	h := l.Holdings()
	assert.Equal(t, int64(90), h.AvailableCash)
	assert.Equal(t, int64(100), h.SettledCash)
	assert.Equal(t, int64(10), h.AvailableAssets["A"])

	l.Release(5, 2, true, "A")
	h = l.Holdings()
	assert.Equal(t, int64(100), h.AvailableCash)
}

func TestLedger_ReserveRelease_Ask(t *testing.T) {
	l := NewLedger([]string{"A"}, 100, 10)

	l.Reserve(5, 3, false, "A")
	h := l.Holdings()
	assert.Equal(t, int64(7), h.AvailableAssets["A"])
	assert.Equal(t, int64(10), h.SettledAssets["A"])
	assert.Equal(t, int64(100), h.AvailableCash)

	l.Release(5, 3, false, "A")
	assert.Equal(t, int64(10), l.Holdings().AvailableAssets["A"])
}

func TestLedger_Settle(t *testing.T) {
	t.Run("bid pays cash and gains asset", func(t *testing.T) {
		l := NewLedger([]string{"A"}, 100, 10)

		l.Settle(5, 2, true, "A")
		h := l.Holdings()
		assert.Equal(t, int64(90), h.SettledCash)
		assert.Equal(t, int64(90), h.AvailableCash)
		assert.Equal(t, int64(12), h.SettledAssets["A"])
		assert.Equal(t, int64(12), h.AvailableAssets["A"])
	})

	t.Run("ask gains cash and pays asset", func(t *testing.T) {
		l := NewLedger([]string{"A"}, 100, 10)

		l.Settle(5, 2, false, "A")
		h := l.Holdings()
		assert.Equal(t, int64(110), h.SettledCash)
		assert.Equal(t, int64(110), h.AvailableCash)
		assert.Equal(t, int64(8), h.SettledAssets["A"])
		assert.Equal(t, int64(8), h.AvailableAssets["A"])
	})
}

func TestLedger_MakerReleaseThenSettle(t *testing.T) {
	// A resting bid that fills: the full reservation is released, then
	// the traded volume settles. Available cash ends where settled
	// cash does.
	l := NewLedger([]string{"A"}, 100, 10)

	l.Reserve(5, 2, true, "A")
	assert.Equal(t, int64(90), l.Holdings().AvailableCash)

	l.Release(5, 2, true, "A")
	l.Settle(5, 2, true, "A")

	h := l.Holdings()
	assert.Equal(t, int64(90), h.SettledCash)
	assert.Equal(t, int64(90), h.AvailableCash)
	assert.Equal(t, int64(12), h.SettledAssets["A"])
}

func TestLedger_SelfTrade(t *testing.T) {
	// Crossing with yourself settles both directions and nets to zero.
	l := NewLedger([]string{"A"}, 100, 10)

	l.Settle(5, 2, true, "A")
	l.Settle(5, 2, false, "A")

	h := l.Holdings()
	assert.Equal(t, int64(100), h.SettledCash)
	assert.Equal(t, int64(100), h.AvailableCash)
	assert.Equal(t, int64(10), h.SettledAssets["A"])
	assert.Equal(t, int64(10), h.AvailableAssets["A"])
}

func TestLedger_CheckAvailable(t *testing.T) {
	l := NewLedger([]string{"A"}, 100, 10)

	assert.True(t, l.CheckAvailable(10, 10, true, "A"))
	assert.False(t, l.CheckAvailable(10, 11, true, "A"))
	assert.True(t, l.CheckAvailable(1, 10, false, "A"))
	assert.False(t, l.CheckAvailable(1, 11, false, "A"))
}

func TestLedger_Restore(t *testing.T) {
	l := NewLedger([]string{"A"}, 100, 10)

	snapshot := l.Holdings()
	snapshot.SettledCash = 55
	snapshot.AvailableCash = 50
	snapshot.SettledAssets["A"] = 3

	l.Restore(snapshot)

	h := l.Holdings()
	assert.Equal(t, int64(55), h.SettledCash)
	assert.Equal(t, int64(50), h.AvailableCash)
	assert.Equal(t, int64(3), h.SettledAssets["A"])

	// Restore copies, later snapshot mutation does not leak in.
	snapshot.SettledCash = 0
	assert.Equal(t, int64(55), l.Holdings().SettledCash)
}

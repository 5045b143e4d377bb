package replica

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leeps-Lab/etf-cda/pkg/config"
	"github.com/Leeps-Lab/etf-cda/pkg/logger"

	bookv1 "github.com/Leeps-Lab/etf-cda/internal/domain/book/v1"
	eventv1 "github.com/Leeps-Lab/etf-cda/internal/domain/event/v1"
	feedv1 "github.com/Leeps-Lab/etf-cda/internal/domain/feed/v1"
	orderv1 "github.com/Leeps-Lab/etf-cda/internal/domain/order/v1"
	snapshotv1 "github.com/Leeps-Lab/etf-cda/internal/domain/snapshot/v1"
	"github.com/Leeps-Lab/etf-cda/internal/usecase/book"
	"github.com/Leeps-Lab/etf-cda/internal/usecase/ledger"
)

// fakeFeedReader feeds messages from a channel, blocking like a real
// Kafka reader when empty.
type fakeFeedReader struct {
	messages chan feedv1.Message
	offset   int64
}

func newFakeFeedReader() *fakeFeedReader {
	return &fakeFeedReader{messages: make(chan feedv1.Message, 16)}
}

func (f *fakeFeedReader) ReadMessage(ctx context.Context) (kafka.Message, feedv1.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, feedv1.Message{}, ctx.Err()
	case msg := <-f.messages:
		f.offset++
		return kafka.Message{Offset: f.offset}, msg, nil
	}
}

func (f *fakeFeedReader) SetOffset(offset int64) error { return nil }
func (f *fakeFeedReader) Close() error                 { return nil }
func (f *fakeFeedReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	return nil
}

// fakeSnapshotStore keeps snapshots in memory.
type fakeSnapshotStore struct {
	mu        sync.Mutex
	snapshots map[string]*snapshotv1.Snapshot
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{snapshots: make(map[string]*snapshotv1.Snapshot)}
}

func (f *fakeSnapshotStore) Load(ctx context.Context, sessionID string) (*snapshotv1.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshots[sessionID], nil
}

func (f *fakeSnapshotStore) Store(ctx context.Context, sessionID string, snapshot *snapshotv1.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[sessionID] = snapshot
	return nil
}

func newTestReplica(t *testing.T, participantID string) (*Replica, *[]eventv1.Event) {
	t.Helper()

	log, err := logger.NewLogger()
	require.NoError(t, err)

	cfg := &config.Config{
		ParticipantID:  participantID,
		SessionID:      "session-1",
		Assets:         []string{"A"},
		StartingCash:   100,
		StartingAssets: 10,
	}

	books := map[string]bookv1.Book{
		"A": book.NewBook("A", log),
	}
	ldg := ledger.NewLedger(cfg.Assets, cfg.StartingCash, cfg.StartingAssets)

	r, err := NewReplica(books, ldg, newFakeFeedReader(), newFakeSnapshotStore(), log, cfg)
	require.NoError(t, err)

	events := &[]eventv1.Event{}
	r.Subscribe(func(e eventv1.Event) {
		*events = append(*events, e)
	})

	return r, events
}

func enterMessage(o orderv1.Order) feedv1.Message {
	return feedv1.Message{Type: feedv1.MessageTypeConfirmEnter, Enter: &o}
}

func tradeMessage(tr orderv1.Trade) feedv1.Message {
	return feedv1.Message{Type: feedv1.MessageTypeConfirmTrade, Trade: &tr}
}

func cancelMessage(o orderv1.Order) feedv1.Message {
	return feedv1.Message{Type: feedv1.MessageTypeConfirmCancel, Cancel: &o}
}

func makeOrder(id, pcode string, bid bool, price, volume, ts int64) orderv1.Order {
	return orderv1.Order{
		ID:            id,
		ParticipantID: pcode,
		AssetName:     "A",
		IsBid:         bid,
		Price:         price,
		Volume:        volume,
		Timestamp:     ts,
	}
}

func TestReplica_ApplyEnter_LocalBidReservesCash(t *testing.T) {
	r, events := newTestReplica(t, "alice")

	r.Apply(enterMessage(makeOrder("b1", "alice", true, 5, 2, 10)))

	h := r.Holdings()
	assert.Equal(t, int64(90), h.AvailableCash)
	assert.Equal(t, int64(100), h.SettledCash)

	require.Len(t, *events, 1)
	assert.Equal(t, eventv1.KindConfirmOrderEnter, (*events)[0].Kind)
	assert.Equal(t, "b1", (*events)[0].Order.ID)
}

func TestReplica_ApplyEnter_ForeignOrderNoReservation(t *testing.T) {
	r, events := newTestReplica(t, "alice")

	r.Apply(enterMessage(makeOrder("b1", "bob", true, 5, 2, 10)))

	h := r.Holdings()
	assert.Equal(t, int64(100), h.AvailableCash)
	assert.Len(t, r.Bids("A"), 1)
	assert.Len(t, *events, 1)
}

func TestReplica_ApplyEnter_DuplicateIgnored(t *testing.T) {
	r, events := newTestReplica(t, "alice")

	r.Apply(enterMessage(makeOrder("b1", "alice", true, 5, 2, 10)))
	r.Apply(enterMessage(makeOrder("b1", "alice", true, 5, 2, 10)))

	assert.Equal(t, int64(90), r.Holdings().AvailableCash)
	assert.Len(t, r.Bids("A"), 1)
	assert.Len(t, *events, 1)
}

func TestReplica_ApplyTrade_LocalMakerBid(t *testing.T) {
	r, events := newTestReplica(t, "alice")

	r.Apply(enterMessage(makeOrder("b1", "alice", true, 5, 2, 10)))

	tr := orderv1.Trade{
		Timestamp: 20,
		AssetName: "A",
		TakingOrder: orderv1.TradedOrder{
			Order:        makeOrder("a1", "bob", false, 5, 2, 20),
			TradedVolume: 2,
		},
		MakingOrders: []orderv1.TradedOrder{
			{Order: makeOrder("b1", "alice", true, 5, 2, 10), TradedVolume: 2},
		},
	}
	r.Apply(tradeMessage(tr))

	h := r.Holdings()
	assert.Equal(t, int64(90), h.SettledCash)
	assert.Equal(t, int64(90), h.AvailableCash)
	assert.Equal(t, int64(12), h.SettledAssets["A"])
	assert.Equal(t, int64(12), h.AvailableAssets["A"])

	assert.Empty(t, r.Bids("A"))
	assert.Len(t, r.Trades("A"), 1)

	require.Len(t, *events, 2)
	assert.Equal(t, eventv1.KindConfirmTrade, (*events)[1].Kind)
}

func TestReplica_ApplyTrade_LocalMakerPartialFill(t *testing.T) {
	r, _ := newTestReplica(t, "alice")

	r.Apply(enterMessage(makeOrder("b1", "alice", true, 5, 3, 10)))
	assert.Equal(t, int64(85), r.Holdings().AvailableCash)

	// Only 2 of 3 units trade; the remainder's reservation is released
	// because the order leaves the book entirely.
	tr := orderv1.Trade{
		Timestamp: 20,
		AssetName: "A",
		TakingOrder: orderv1.TradedOrder{
			Order:        makeOrder("a1", "bob", false, 5, 2, 20),
			TradedVolume: 2,
		},
		MakingOrders: []orderv1.TradedOrder{
			{Order: makeOrder("b1", "alice", true, 5, 3, 10), TradedVolume: 2},
		},
	}
	r.Apply(tradeMessage(tr))

	h := r.Holdings()
	assert.Equal(t, int64(90), h.SettledCash)
	assert.Equal(t, int64(90), h.AvailableCash)
	assert.Equal(t, int64(12), h.SettledAssets["A"])
}

func TestReplica_ApplyTrade_LocalTakerSettlesAtMakerPrice(t *testing.T) {
	r, _ := newTestReplica(t, "bob")

	// Two foreign bids at different prices rest in the book.
	r.Apply(enterMessage(makeOrder("b1", "alice", true, 6, 1, 10)))
	r.Apply(enterMessage(makeOrder("b2", "carol", true, 5, 1, 11)))

	// Bob's ask sweeps both; each fill settles at that maker's price.
	tr := orderv1.Trade{
		Timestamp: 20,
		AssetName: "A",
		TakingOrder: orderv1.TradedOrder{
			Order:        makeOrder("a1", "bob", false, 5, 2, 20),
			TradedVolume: 2,
		},
		MakingOrders: []orderv1.TradedOrder{
			{Order: makeOrder("b1", "alice", true, 6, 1, 10), TradedVolume: 1},
			{Order: makeOrder("b2", "carol", true, 5, 1, 11), TradedVolume: 1},
		},
	}
	r.Apply(tradeMessage(tr))

	h := r.Holdings()
	assert.Equal(t, int64(111), h.SettledCash)
	assert.Equal(t, int64(111), h.AvailableCash)
	assert.Equal(t, int64(8), h.SettledAssets["A"])
	assert.Equal(t, int64(8), h.AvailableAssets["A"])
}

func TestReplica_ApplyTrade_DuplicateDeliveryIsNoOp(t *testing.T) {
	r, events := newTestReplica(t, "alice")

	r.Apply(enterMessage(makeOrder("b1", "alice", true, 5, 2, 10)))

	tr := orderv1.Trade{
		Timestamp: 20,
		AssetName: "A",
		TakingOrder: orderv1.TradedOrder{
			Order:        makeOrder("a1", "bob", false, 5, 2, 20),
			TradedVolume: 2,
		},
		MakingOrders: []orderv1.TradedOrder{
			{Order: makeOrder("b1", "alice", true, 5, 2, 10), TradedVolume: 2},
		},
	}
	r.Apply(tradeMessage(tr))
	before := r.Holdings()

	r.Apply(tradeMessage(tr))

	assert.Equal(t, before, r.Holdings())
	assert.Len(t, r.Trades("A"), 1)
	assert.Len(t, *events, 2)
}

func TestReplica_ApplyTrade_SelfTradeNetsToZero(t *testing.T) {
	r, _ := newTestReplica(t, "alice")

	r.Apply(enterMessage(makeOrder("b1", "alice", true, 5, 2, 10)))

	tr := orderv1.Trade{
		Timestamp: 20,
		AssetName: "A",
		TakingOrder: orderv1.TradedOrder{
			Order:        makeOrder("a1", "alice", false, 5, 2, 20),
			TradedVolume: 2,
		},
		MakingOrders: []orderv1.TradedOrder{
			{Order: makeOrder("b1", "alice", true, 5, 2, 10), TradedVolume: 2},
		},
	}
	r.Apply(tradeMessage(tr))

	h := r.Holdings()
	assert.Equal(t, int64(100), h.SettledCash)
	assert.Equal(t, int64(100), h.AvailableCash)
	assert.Equal(t, int64(10), h.SettledAssets["A"])
	assert.Equal(t, int64(10), h.AvailableAssets["A"])
}

func TestReplica_ApplyCancel(t *testing.T) {
	r, events := newTestReplica(t, "alice")

	r.Apply(enterMessage(makeOrder("b1", "alice", true, 5, 2, 10)))
	r.Apply(cancelMessage(makeOrder("b1", "alice", true, 5, 2, 10)))

	h := r.Holdings()
	assert.Equal(t, int64(100), h.AvailableCash)
	assert.Empty(t, r.Bids("A"))

	require.Len(t, *events, 2)
	assert.Equal(t, eventv1.KindConfirmOrderCancel, (*events)[1].Kind)
}

func TestReplica_ApplyCancel_AfterFillNoRelease(t *testing.T) {
	r, events := newTestReplica(t, "alice")

	r.Apply(enterMessage(makeOrder("b1", "alice", true, 5, 2, 10)))

	tr := orderv1.Trade{
		Timestamp: 20,
		AssetName: "A",
		TakingOrder: orderv1.TradedOrder{
			Order:        makeOrder("a1", "bob", false, 5, 2, 20),
			TradedVolume: 2,
		},
		MakingOrders: []orderv1.TradedOrder{
			{Order: makeOrder("b1", "alice", true, 5, 2, 10), TradedVolume: 2},
		},
	}
	r.Apply(tradeMessage(tr))
	before := r.Holdings()

	// A cancel raced with the fill; the order is long gone.
	r.Apply(cancelMessage(makeOrder("b1", "alice", true, 5, 2, 10)))

	assert.Equal(t, before, r.Holdings())
	assert.Len(t, *events, 2)
}

func TestReplica_ApplyError_FilteredByParticipant(t *testing.T) {
	r, events := newTestReplica(t, "alice")

	r.Apply(feedv1.Message{
		Type:  feedv1.MessageTypeError,
		Error: &feedv1.ErrorPayload{ParticipantID: "bob", Message: "Order rejected: insufficient available cash"},
	})
	assert.Empty(t, *events)

	r.Apply(feedv1.Message{
		Type:  feedv1.MessageTypeError,
		Error: &feedv1.ErrorPayload{ParticipantID: "alice", Message: "Order rejected: insufficient available cash"},
	})
	require.Len(t, *events, 1)
	assert.Equal(t, eventv1.KindError, (*events)[0].Kind)
	assert.Contains(t, (*events)[0].Message, "insufficient available cash")
}

func TestReplica_ApplyEnter_UnknownAssetRejected(t *testing.T) {
	r, events := newTestReplica(t, "alice")

	order := makeOrder("b1", "alice", true, 5, 2, 10)
	order.AssetName = "Z"
	r.Apply(enterMessage(order))

	assert.Equal(t, int64(100), r.Holdings().AvailableCash)
	assert.Empty(t, *events)
}

func TestReplica_SnapshotRoundTrip(t *testing.T) {
	log, err := logger.NewLogger()
	require.NoError(t, err)

	cfg := &config.Config{
		ParticipantID:  "alice",
		SessionID:      "session-1",
		Assets:         []string{"A"},
		StartingCash:   100,
		StartingAssets: 10,
	}
	store := newFakeSnapshotStore()

	books := map[string]bookv1.Book{"A": book.NewBook("A", log)}
	ldg := ledger.NewLedger(cfg.Assets, cfg.StartingCash, cfg.StartingAssets)
	r, err := NewReplica(books, ldg, newFakeFeedReader(), store, log, cfg)
	require.NoError(t, err)

	r.Apply(enterMessage(makeOrder("b1", "alice", true, 5, 2, 10)))
	r.setFeedOffset(7)
	r.ctx = context.Background()
	r.createAndStoreSnapshot()

	// A second replica bootstraps from the stored snapshot.
	books2 := map[string]bookv1.Book{"A": book.NewBook("A", log)}
	ldg2 := ledger.NewLedger(cfg.Assets, cfg.StartingCash, cfg.StartingAssets)
	r2, err := NewReplica(books2, ldg2, newFakeFeedReader(), store, log, cfg)
	require.NoError(t, err)

	assert.Equal(t, int64(7), r2.FeedOffset())
	assert.Len(t, r2.Bids("A"), 1)
	assert.Equal(t, int64(90), r2.Holdings().AvailableCash)
}

func TestReplica_StartStop(t *testing.T) {
	r, events := newTestReplica(t, "alice")
	reader := newFakeFeedReader()
	r.feedReader = reader

	require.NoError(t, r.Start(context.Background()))

	reader.messages <- enterMessage(makeOrder("b1", "alice", true, 5, 2, 10))

	assert.Eventually(t, func() bool {
		return len(r.Bids("A")) == 1
	}, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Stop(ctx))

	assert.NotEmpty(t, *events)
}

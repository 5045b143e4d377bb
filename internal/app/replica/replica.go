package replica

import (
	"context"
	"sync"
	"time"

	"github.com/Leeps-Lab/etf-cda/pkg/config"
	"github.com/Leeps-Lab/etf-cda/pkg/logger"

	bookv1 "github.com/Leeps-Lab/etf-cda/internal/domain/book/v1"
	eventv1 "github.com/Leeps-Lab/etf-cda/internal/domain/event/v1"
	feedv1 "github.com/Leeps-Lab/etf-cda/internal/domain/feed/v1"
	ledgerv1 "github.com/Leeps-Lab/etf-cda/internal/domain/ledger/v1"
	orderv1 "github.com/Leeps-Lab/etf-cda/internal/domain/order/v1"
	snapshotv1 "github.com/Leeps-Lab/etf-cda/internal/domain/snapshot/v1"
)

// Replica folds the exchange confirmation feed into a local mirror of
// the order books and the local participant's ledger. It never matches
// orders or mutates state on its own authority: every change is a
// replay of something the exchange already confirmed.
type Replica struct {
	books         map[string]bookv1.Book
	ledger        ledgerv1.Ledger
	feedReader    feedv1.FeedReader
	snapshotStore snapshotv1.Store
	logger        *logger.Logger
	config        *config.Config

	mu                 sync.RWMutex
	feedOffset         int64
	lastSnapshotOffset int64

	subscribersMu sync.RWMutex
	subscribers   []func(eventv1.Event)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	snapshotInterval    time.Duration
	snapshotOffsetDelta int64
}

// NewReplica creates a replica with the provided dependencies. One book
// per configured asset is expected in books. The snapshot for the
// configured session, if any, is loaded during construction.
func NewReplica(
	books map[string]bookv1.Book,
	ledger ledgerv1.Ledger,
	feedReader feedv1.FeedReader,
	snapshotStore snapshotv1.Store,
	log *logger.Logger,
	cfg *config.Config,
) (*Replica, error) {
	return NewReplicaWithOptions(books, ledger, feedReader, snapshotStore, log, cfg, DefaultOptions())
}

// NewReplicaWithOptions creates a replica with custom snapshotting
// options.
func NewReplicaWithOptions(
	books map[string]bookv1.Book,
	ledger ledgerv1.Ledger,
	feedReader feedv1.FeedReader,
	snapshotStore snapshotv1.Store,
	log *logger.Logger,
	cfg *config.Config,
	options *Options,
) (*Replica, error) {
	r := &Replica{
		books:         books,
		ledger:        ledger,
		feedReader:    feedReader,
		snapshotStore: snapshotStore,
		logger:        log,
		config:        cfg,

		snapshotInterval:    options.SnapshotInterval,
		snapshotOffsetDelta: options.SnapshotOffsetDelta,
		feedOffset:          -1,
	}

	if err := r.loadSnapshot(context.Background()); err != nil {
		return nil, err
	}

	return r, nil
}

// Subscribe registers a callback invoked after each applied feed
// message. Callbacks run on the feed processor goroutine and must not
// block. Subscribe before Start.
func (r *Replica) Subscribe(fn func(eventv1.Event)) {
	r.subscribersMu.Lock()
	defer r.subscribersMu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

// Start launches the feed processor and the snapshot manager.
func (r *Replica) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(2)
	go r.runFeedProcessor()
	go r.runSnapshotManager()

	r.logger.Info("replica started",
		logger.Field{Key: "sessionID", Value: r.config.SessionID},
		logger.Field{Key: "participantID", Value: r.config.ParticipantID},
	)

	return nil
}

// Stop gracefully shuts down the replica.
func (r *Replica) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("replica stopped gracefully")
		return nil
	case <-ctx.Done():
		r.logger.Warn("replica stop timeout exceeded")
		return ctx.Err()
	}
}

// runFeedProcessor reads and applies feed messages in a single
// goroutine, preserving the feed's total order.
func (r *Replica) runFeedProcessor() {
	defer r.wg.Done()

	r.logger.Info("starting feed processor", logger.Field{
		Key:   "sessionID",
		Value: r.config.SessionID,
	})

	currentOffset := r.getFeedOffset()
	if currentOffset > 0 {
		currentOffset++
	}

	if err := r.feedReader.SetOffset(currentOffset); err != nil {
		r.logger.Error(err, logger.Field{
			Key:   "action",
			Value: "set_feed_offset",
		})
	}

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Info("feed processor shutting down")
			r.feedReader.Close()
			return
		default:
			msg, decoded, err := r.feedReader.ReadMessage(r.ctx)
			if err != nil {
				r.logger.ErrorContext(r.ctx, err, logger.Field{
					Key:   "action",
					Value: "read_feed_message",
				})
				time.Sleep(100 * time.Millisecond)
				continue
			}

			if err := r.feedReader.CommitMessages(r.ctx, msg); err != nil {
				r.logger.ErrorContext(r.ctx, err, logger.Field{
					Key:   "action",
					Value: "commit_feed_message",
				})
			}

			r.Apply(decoded)
			r.setFeedOffset(msg.Offset)
		}
	}
}

// runSnapshotManager writes snapshots when enough new feed messages
// have been applied since the last one.
func (r *Replica) runSnapshotManager() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.snapshotInterval)
	defer ticker.Stop()

	r.logger.Info("starting snapshot manager")

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Info("snapshot manager shutting down")
			return
		case <-ticker.C:
			if r.shouldCreateSnapshot() {
				r.createAndStoreSnapshot()
			}
		}
	}
}

// Apply folds one decoded feed message into local state and notifies
// subscribers of the resulting change, if any.
func (r *Replica) Apply(msg feedv1.Message) {
	switch msg.Type {
	case feedv1.MessageTypeConfirmEnter:
		r.applyEnter(*msg.Enter)
	case feedv1.MessageTypeConfirmTrade:
		r.applyTrade(*msg.Trade)
	case feedv1.MessageTypeConfirmCancel:
		r.applyCancel(*msg.Cancel)
	case feedv1.MessageTypeError:
		r.applyError(*msg.Error)
	default:
		r.logger.Warn("unhandled feed message type", logger.Field{
			Key:   "type",
			Value: msg.Type,
		})
	}
}

func (r *Replica) applyEnter(order orderv1.Order) {
	book, ok := r.books[order.AssetName]
	if !ok {
		r.logger.Warn("enter for unknown asset rejected",
			logger.Field{Key: "asset", Value: order.AssetName},
			logger.Field{Key: "orderID", Value: order.ID},
		)
		return
	}

	if !book.Insert(order) {
		// Duplicate delivery, already applied.
		return
	}

	if order.ParticipantID == r.config.ParticipantID {
		r.ledger.Reserve(order.Price, order.Volume, order.IsBid, order.AssetName)
	}

	r.emit(eventv1.Event{
		Kind:  eventv1.KindConfirmOrderEnter,
		Order: &order,
	})
}

func (r *Replica) applyTrade(trade orderv1.Trade) {
	book, ok := r.books[trade.AssetName]
	if !ok {
		r.logger.Warn("trade for unknown asset rejected",
			logger.Field{Key: "asset", Value: trade.AssetName},
			logger.Field{Key: "tradeTimestamp", Value: trade.Timestamp},
		)
		return
	}

	applied := book.ApplyTrade(trade)
	if len(applied) == 0 {
		r.logger.Warn("trade matched no resting orders, treating as duplicate",
			logger.Field{Key: "asset", Value: trade.AssetName},
			logger.Field{Key: "tradeTimestamp", Value: trade.Timestamp},
		)
		return
	}

	localTaker := trade.TakingOrder.ParticipantID == r.config.ParticipantID
	for _, mo := range applied {
		if mo.ParticipantID == r.config.ParticipantID {
			// The full reservation comes back before the fill settles,
			// so partial fills release the unfilled remainder too.
			r.ledger.Release(mo.Price, mo.Volume, mo.IsBid, trade.AssetName)
			r.ledger.Settle(mo.Price, mo.TradedVolume, mo.IsBid, trade.AssetName)
		}
		if localTaker {
			// The taker settles at each making order's price.
			r.ledger.Settle(mo.Price, mo.TradedVolume, trade.TakingOrder.IsBid, trade.AssetName)
		}
	}

	r.emit(eventv1.Event{
		Kind:  eventv1.KindConfirmTrade,
		Trade: &trade,
	})
}

func (r *Replica) applyCancel(order orderv1.Order) {
	book, ok := r.books[order.AssetName]
	if !ok {
		r.logger.Warn("cancel for unknown asset rejected",
			logger.Field{Key: "asset", Value: order.AssetName},
			logger.Field{Key: "orderID", Value: order.ID},
		)
		return
	}

	removed, ok := book.Remove(order.ID, order.IsBid)
	if !ok {
		// The order already traded away; nothing to release.
		r.logger.Warn("cancel for order not in book",
			logger.Field{Key: "asset", Value: order.AssetName},
			logger.Field{Key: "orderID", Value: order.ID},
		)
		return
	}

	if removed.ParticipantID == r.config.ParticipantID {
		r.ledger.Release(removed.Price, removed.Volume, removed.IsBid, removed.AssetName)
	}

	r.emit(eventv1.Event{
		Kind:  eventv1.KindConfirmOrderCancel,
		Order: &removed,
	})
}

func (r *Replica) applyError(payload feedv1.ErrorPayload) {
	if payload.ParticipantID != r.config.ParticipantID {
		return
	}

	r.logger.Warn("exchange rejection", logger.Field{
		Key:   "message",
		Value: payload.Message,
	})

	r.emit(eventv1.Event{
		Kind:    eventv1.KindError,
		Message: payload.Message,
	})
}

func (r *Replica) emit(event eventv1.Event) {
	r.subscribersMu.RLock()
	defer r.subscribersMu.RUnlock()

	for _, fn := range r.subscribers {
		fn(event)
	}
}

// Bids returns the resting bids for an asset, best price first. Unknown
// assets return nil.
func (r *Replica) Bids(assetName string) []orderv1.Order {
	book, ok := r.books[assetName]
	if !ok {
		return nil
	}
	return book.Bids()
}

// Asks returns the resting asks for an asset, best price first.
func (r *Replica) Asks(assetName string) []orderv1.Order {
	book, ok := r.books[assetName]
	if !ok {
		return nil
	}
	return book.Asks()
}

// Trades returns the trade history for an asset in timestamp order.
func (r *Replica) Trades(assetName string) []orderv1.Trade {
	book, ok := r.books[assetName]
	if !ok {
		return nil
	}
	return book.Trades()
}

// Holdings returns the local participant's current positions.
func (r *Replica) Holdings() ledgerv1.Holdings {
	return r.ledger.Holdings()
}

// CheckAvailable reports whether the local participant's available
// balance could fund an order.
func (r *Replica) CheckAvailable(price, volume int64, isBid bool, assetName string) bool {
	return r.ledger.CheckAvailable(price, volume, isBid, assetName)
}

func (r *Replica) shouldCreateSnapshot() bool {
	r.mu.RLock()
	currentOffset := r.feedOffset
	lastSnapshotOffset := r.lastSnapshotOffset
	r.mu.RUnlock()

	if currentOffset <= 0 {
		return false
	}

	return currentOffset-lastSnapshotOffset >= r.snapshotOffsetDelta
}

func (r *Replica) createAndStoreSnapshot() {
	currentOffset := r.getFeedOffset()

	snapshot := &snapshotv1.Snapshot{
		FeedOffset: currentOffset,
		Holdings:   r.ledger.Holdings(),
	}
	for _, book := range r.books {
		snapshot.Bids = append(snapshot.Bids, book.Bids()...)
		snapshot.Asks = append(snapshot.Asks, book.Asks()...)
		snapshot.Trades = append(snapshot.Trades, book.Trades()...)
	}

	if err := r.snapshotStore.Store(r.ctx, r.config.SessionID, snapshot); err != nil {
		r.logger.ErrorContext(r.ctx, err, logger.Field{
			Key:   "action",
			Value: "store_snapshot",
		})
		return
	}

	r.setLastSnapshotOffset(currentOffset)
}

func (r *Replica) loadSnapshot(ctx context.Context) error {
	snapshot, err := r.snapshotStore.Load(ctx, r.config.SessionID)
	if err != nil {
		return err
	}

	if snapshot == nil {
		return nil
	}

	for assetName, book := range r.books {
		var bids, asks []orderv1.Order
		var trades []orderv1.Trade
		for _, o := range snapshot.Bids {
			if o.AssetName == assetName {
				bids = append(bids, o)
			}
		}
		for _, o := range snapshot.Asks {
			if o.AssetName == assetName {
				asks = append(asks, o)
			}
		}
		for _, tr := range snapshot.Trades {
			if tr.AssetName == assetName {
				trades = append(trades, tr)
			}
		}
		book.Restore(bids, asks, trades)
	}

	r.ledger.Restore(snapshot.Holdings)

	r.mu.Lock()
	r.feedOffset = snapshot.FeedOffset
	r.lastSnapshotOffset = snapshot.FeedOffset
	r.mu.Unlock()

	r.logger.Info("replica restored from snapshot", logger.Field{
		Key:   "feedOffset",
		Value: snapshot.FeedOffset,
	})

	return nil
}

func (r *Replica) getFeedOffset() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.feedOffset
}

func (r *Replica) setFeedOffset(offset int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedOffset = offset
}

func (r *Replica) setLastSnapshotOffset(offset int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSnapshotOffset = offset
}

// FeedOffset returns the offset of the last applied feed message.
func (r *Replica) FeedOffset() int64 {
	return r.getFeedOffset()
}

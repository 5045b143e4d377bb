// session-feeder publishes a synthetic stream of exchange confirmation
// events to the feed topic, for exercising a replica without a live
// exchange. It keeps a tiny book of its own so the cancels and trades
// it emits always reference orders it previously confirmed.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/segmentio/kafka-go"

	feedv1 "github.com/Leeps-Lab/etf-cda/internal/domain/feed/v1"
	orderv1 "github.com/Leeps-Lab/etf-cda/internal/domain/order/v1"
)

type feeder struct {
	bids []orderv1.Order
	asks []orderv1.Order

	assetName    string
	participants []string
	basePrice    int64
	priceSpread  int64
	maxVolume    int64
}

func (f *feeder) randomOrder() orderv1.Order {
	isBid := rand.Intn(2) == 0

	price := f.basePrice - f.priceSpread/2 + rand.Int63n(f.priceSpread)
	if price <= 0 {
		price = 1
	}

	return orderv1.Order{
		ID:            ulid.Make().String(),
		ParticipantID: f.participants[rand.Intn(len(f.participants))],
		AssetName:     f.assetName,
		IsBid:         isBid,
		Price:         price,
		Volume:        1 + rand.Int63n(f.maxVolume),
		Timestamp:     time.Now().UnixNano(),
	}
}

// next produces the next confirmation message: mostly enters, with
// trades whenever the synthetic book crosses and occasional cancels.
func (f *feeder) next() feedv1.Envelope {
	// Cross the book first: a trade is the only legal outcome of a
	// crossed state.
	if len(f.bids) > 0 && len(f.asks) > 0 {
		bid, ask := f.bids[0], f.asks[0]
		if bid.Price >= ask.Price {
			return f.emitTrade(bid, ask)
		}
	}

	if rand.Float64() < 0.15 && len(f.bids)+len(f.asks) > 0 {
		return f.emitCancel()
	}

	order := f.randomOrder()
	if order.IsBid {
		f.bids = insertOrder(f.bids, order)
	} else {
		f.asks = insertOrder(f.asks, order)
	}

	return envelope(feedv1.MessageTypeConfirmEnter, order)
}

func (f *feeder) emitTrade(bid, ask orderv1.Order) feedv1.Envelope {
	// The older order makes, the newer one takes, at the maker's price.
	maker, taker := bid, ask
	if ask.Timestamp < bid.Timestamp {
		maker, taker = ask, bid
	}

	volume := maker.Volume
	if taker.Volume < volume {
		volume = taker.Volume
	}

	f.bids = removeOrder(f.bids, bid.ID)
	f.asks = removeOrder(f.asks, ask.ID)

	trade := orderv1.Trade{
		Timestamp: time.Now().UnixNano(),
		AssetName: f.assetName,
		TakingOrder: orderv1.TradedOrder{
			Order:        taker,
			TradedVolume: volume,
		},
		MakingOrders: []orderv1.TradedOrder{
			{Order: maker, TradedVolume: volume},
		},
	}

	return envelope(feedv1.MessageTypeConfirmTrade, trade)
}

func (f *feeder) emitCancel() feedv1.Envelope {
	if len(f.bids) > 0 && (len(f.asks) == 0 || rand.Intn(2) == 0) {
		idx := rand.Intn(len(f.bids))
		order := f.bids[idx]
		f.bids = removeOrder(f.bids, order.ID)
		return envelope(feedv1.MessageTypeConfirmCancel, order)
	}

	idx := rand.Intn(len(f.asks))
	order := f.asks[idx]
	f.asks = removeOrder(f.asks, order.ID)
	return envelope(feedv1.MessageTypeConfirmCancel, order)
}

func insertOrder(side []orderv1.Order, order orderv1.Order) []orderv1.Order {
	idx := len(side)
	for i := range side {
		if order.HigherPriority(&side[i]) {
			idx = i
			break
		}
	}
	side = append(side, orderv1.Order{})
	copy(side[idx+1:], side[idx:])
	side[idx] = order
	return side
}

func removeOrder(side []orderv1.Order, orderID string) []orderv1.Order {
	for i := range side {
		if side[i].ID == orderID {
			return append(side[:i], side[i+1:]...)
		}
	}
	return side
}

func envelope(messageType feedv1.MessageType, payload any) feedv1.Envelope {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("Failed to marshal %s payload: %v", messageType, err)
	}
	return feedv1.Envelope{Type: messageType, Payload: raw}
}

func main() {
	var (
		brokers      = flag.String("brokers", "localhost:9092", "Kafka broker addresses (comma-separated)")
		topic        = flag.String("topic", "market-feed", "Kafka feed topic name")
		delay        = flag.Duration("delay", 100*time.Millisecond, "Delay between events")
		count        = flag.Int("count", 1000, "Number of events to publish")
		assetName    = flag.String("asset", "A", "Asset name for all orders")
		participants = flag.String("participants", "alice,bob,carol", "Participant codes (comma-separated)")
		basePrice    = flag.Int64("base-price", 100, "Base price for orders")
		priceSpread  = flag.Int64("price-spread", 20, "Price spread range")
		maxVolume    = flag.Int64("max-volume", 5, "Maximum order volume")
	)
	flag.Parse()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(*brokers, ",")...),
		Topic:        *topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	defer writer.Close()

	f := &feeder{
		assetName:    *assetName,
		participants: strings.Split(*participants, ","),
		basePrice:    *basePrice,
		priceSpread:  *priceSpread,
		maxVolume:    *maxVolume,
	}

	ctx := context.Background()
	log.Printf("Publishing %d events to broker %s, topic %s", *count, *brokers, *topic)

	enters, trades, cancels := 0, 0, 0
	for i := 0; i < *count; i++ {
		env := f.next()

		value, err := json.Marshal(env)
		if err != nil {
			log.Printf("Failed to marshal event %d: %v", i+1, err)
			continue
		}

		msg := kafka.Message{
			Key:   []byte(ulid.Make().String()),
			Value: value,
			Time:  time.Now(),
		}

		if err := writer.WriteMessages(ctx, msg); err != nil {
			log.Printf("Failed to send event %d (%s): %v", i+1, env.Type, err)
			continue
		}

		switch env.Type {
		case feedv1.MessageTypeConfirmEnter:
			enters++
		case feedv1.MessageTypeConfirmTrade:
			trades++
		case feedv1.MessageTypeConfirmCancel:
			cancels++
		}

		if (i+1)%100 == 0 || i == *count-1 {
			log.Printf("Sent event %d/%d: %s | book: %d bids, %d asks",
				i+1, *count, env.Type, len(f.bids), len(f.asks))
		}

		if i < *count-1 {
			time.Sleep(*delay)
		}
	}

	log.Printf("--- Summary ---")
	log.Printf("Total Events: %d", enters+trades+cancels)
	log.Printf("Enters: %d", enters)
	log.Printf("Trades: %d", trades)
	log.Printf("Cancels: %d", cancels)
}

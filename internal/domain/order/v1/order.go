package orderv1

// Order represents a single resting order as confirmed by the exchange.
// Prices and volumes are integral, matching the session's currency and
// asset units on the wire.
type Order struct {
	ID            string `json:"order_id"`
	ParticipantID string `json:"pcode"`
	AssetName     string `json:"asset_name"`
	IsBid         bool   `json:"is_bid"`
	Price         int64  `json:"price"`
	Volume        int64  `json:"volume"`
	Timestamp     int64  `json:"timestamp"`
}

// Cost returns the cash required to fully fund the order.
func (o *Order) Cost() int64 {
	return o.Price * o.Volume
}

// HigherPriority reports whether o takes precedence over other in the
// book. Better price wins; on equal price the earlier timestamp wins.
// Both orders must be on the same side.
func (o *Order) HigherPriority(other *Order) bool {
	if o.Price != other.Price {
		if o.IsBid {
			return o.Price > other.Price
		}
		return o.Price < other.Price
	}
	return o.Timestamp < other.Timestamp
}

// TradedOrder is an order annotated with the volume it traded in a
// particular match. TradedVolume may be less than Volume on a partial
// fill.
type TradedOrder struct {
	Order
	TradedVolume int64 `json:"traded_volume"`
}

// Trade represents one confirmed match: a single taking order crossed
// against one or more resting making orders.
type Trade struct {
	Timestamp    int64         `json:"timestamp"`
	AssetName    string        `json:"asset_name"`
	TakingOrder  TradedOrder   `json:"taking_order"`
	MakingOrders []TradedOrder `json:"making_orders"`
}

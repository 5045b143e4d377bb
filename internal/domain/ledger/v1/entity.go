package ledgerv1

// Holdings is a point-in-time view of a participant's cash and asset
// positions. Settled amounts reflect executed trades only; available
// amounts additionally subtract reservations backing active orders.
type Holdings struct {
	SettledAssets   map[string]int64 `json:"settled_assets"`
	AvailableAssets map[string]int64 `json:"available_assets"`
	SettledCash     int64            `json:"settled_cash"`
	AvailableCash   int64            `json:"available_cash"`
}

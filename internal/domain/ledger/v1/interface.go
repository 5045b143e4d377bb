package ledgerv1

// Ledger tracks the local participant's settled and available holdings.
// All mutations are driven by confirmed exchange events; the ledger
// never rejects them.
type Ledger interface {
	// Reserve earmarks funds for an active order: cash for a bid,
	// asset units for an ask.
	Reserve(price, volume int64, isBid bool, assetName string)
	// Release returns a reservation made by Reserve with the same
	// arguments.
	Release(price, volume int64, isBid bool, assetName string)
	// Settle moves both settled and available holdings for an executed
	// trade: a bid pays cash and gains the asset, an ask the reverse.
	Settle(price, volume int64, isBid bool, assetName string)
	// CheckAvailable reports whether available holdings could fund an
	// order before it is sent to the exchange. Advisory only.
	CheckAvailable(price, volume int64, isBid bool, assetName string) bool
	// Holdings returns a copy of the current positions.
	Holdings() Holdings
	// Restore replaces all positions wholesale from a snapshot.
	Restore(h Holdings)
}

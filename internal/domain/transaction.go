package domain

import "time"

// Transaction is an immutable record of one trade or portfolio event.
// Transactions are append-only: they are never mutated or deleted once
// recorded by the ledger.
type Transaction struct {
	ID          string          // Unique identifier (UUID)
	Symbol      string          // Instrument symbol
	Quantity    float64         // Signed fill quantity
	Price       float64         // Fill price
	Kind        InstrumentKind  // Instrument kind of the fill
	Venue       string          // Exchange the fill occurred on
	TxKind      TransactionKind // buy, sell, add, remove or hedge
	Timestamp   time.Time       // Time the transaction was recorded
	RealizedPnL *float64        // Realized P&L, set only for reducing/closing fills
	Note        string          // Free-text note
}

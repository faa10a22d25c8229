package ports

import (
	"context"

	"quanthedge/internal/domain"
)

// TransactionRepository persists the ledger's transaction stream.
// It is a write-only journal: the in-memory ledger remains the sole owner of
// live portfolio state and never reads persisted rows back.
type TransactionRepository interface {
	// Append saves one transaction record.
	Append(ctx context.Context, tx *domain.Transaction) error
	// RecentBySymbol retrieves the most recent transactions for a symbol, up
	// to a limit, ordered by timestamp descending.
	RecentBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Transaction, error)
}

package ledger

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"quanthedge/internal/domain"
	"quanthedge/internal/ports"
	"quanthedge/internal/pricing"
	"quanthedge/internal/risk"
)

// Fill describes one executed trade to be applied to the ledger.
type Fill struct {
	Symbol   string
	Quantity float64 // Signed: positive buys, negative sells
	Price    float64
	Kind     domain.InstrumentKind
	Venue    string
	Option   *domain.OptionInfo // Required when Kind == Option
	Hedge    bool               // Marks the transaction as a hedge execution
	Note     string
}

// Ledger owns the portfolio's positions and its append-only transaction
// history. It is the only mutable state in the engine: all mutation goes
// through ApplyFill (single-writer), while readers get consistent snapshot
// copies behind a read lock and never observe a partially-applied fill.
type Ledger struct {
	mu           sync.RWMutex
	positions    map[string]*domain.Position
	transactions []domain.Transaction

	logger ports.Logger
	repo   ports.TransactionRepository // optional journal, may be nil
	nowFn  func() time.Time
}

// New creates an empty ledger. repo may be nil to disable journaling.
func New(logger ports.Logger, repo ports.TransactionRepository) (*Ledger, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for ledger")
	}
	return &Ledger{
		positions: make(map[string]*domain.Position),
		logger:    logger,
		repo:      repo,
		nowFn:     time.Now,
	}, nil
}

// ApplyFill applies one trade to the portfolio using average-cost accounting.
//
// No position: open one at the fill price. Same-sign fill: blend the entry
// price by quantity weight. Opposite-sign fill: realize
// (price - entry) * min(|fill|, |position|), signed by position direction;
// a fill larger than the position flips into a new position at the fill
// price for the remainder.
func (l *Ledger) ApplyFill(ctx context.Context, f Fill) error {
	if f.Symbol == "" {
		return fmt.Errorf("%w: fill symbol is empty", ports.ErrValidation)
	}
	if f.Quantity == 0 {
		return fmt.Errorf("%w: fill quantity cannot be zero", ports.ErrValidation)
	}
	if f.Price <= 0 {
		return fmt.Errorf("%w: fill price must be positive, got %f", ports.ErrValidation, f.Price)
	}
	if f.Kind == domain.Option && f.Option == nil {
		return fmt.Errorf("%w: option fill requires option metadata", ports.ErrValidation)
	}

	l.mu.Lock()
	recorded := l.applyLocked(f)
	l.mu.Unlock()

	for i := range recorded {
		l.journal(ctx, &recorded[i])
	}
	return nil
}

// applyLocked mutates the position map and appends transactions.
// Caller holds the write lock. Returns the transactions recorded.
func (l *Ledger) applyLocked(f Fill) []domain.Transaction {
	now := l.nowFn()
	pos, exists := l.positions[f.Symbol]

	if !exists {
		l.positions[f.Symbol] = &domain.Position{
			Symbol:     f.Symbol,
			Quantity:   f.Quantity,
			EntryPrice: f.Price,
			Kind:       f.Kind,
			Venue:      f.Venue,
			Option:     f.Option,
			OpenedAt:   now,
		}
		return []domain.Transaction{l.record(f, f.Quantity, nil, openTxKind(f), now)}
	}

	sameSign := (pos.Quantity > 0) == (f.Quantity > 0)
	if sameSign {
		total := pos.Quantity + f.Quantity
		pos.EntryPrice = (pos.Quantity*pos.EntryPrice + f.Quantity*f.Price) / total
		pos.Quantity = total
		return []domain.Transaction{l.record(f, f.Quantity, nil, increaseTxKind(f), now)}
	}

	closed := math.Min(math.Abs(f.Quantity), math.Abs(pos.Quantity))
	direction := 1.0
	if pos.Quantity < 0 {
		direction = -1.0
	}
	pnl := (f.Price - pos.EntryPrice) * closed * direction

	remainder := math.Abs(f.Quantity) - math.Abs(pos.Quantity)
	switch {
	case remainder < 0: // partial close
		pos.Quantity += f.Quantity
		return []domain.Transaction{l.record(f, f.Quantity, &pnl, reduceTxKind(f), now)}
	case remainder == 0: // full close
		delete(l.positions, f.Symbol)
		return []domain.Transaction{l.record(f, f.Quantity, &pnl, domain.TxRemove, now)}
	default: // flip: close out, then open the remainder the other way
		delete(l.positions, f.Symbol)
		closing := -pos.Quantity
		closeTx := l.record(f, closing, &pnl, domain.TxRemove, now)

		flipQty := f.Quantity - closing
		l.positions[f.Symbol] = &domain.Position{
			Symbol:     f.Symbol,
			Quantity:   flipQty,
			EntryPrice: f.Price,
			Kind:       f.Kind,
			Venue:      f.Venue,
			Option:     f.Option,
			OpenedAt:   now,
		}
		openTx := l.record(f, flipQty, nil, openTxKind(f), now)
		return []domain.Transaction{closeTx, openTx}
	}
}

// record appends one transaction. Caller holds the write lock.
func (l *Ledger) record(f Fill, qty float64, pnl *float64, kind domain.TransactionKind, now time.Time) domain.Transaction {
	tx := domain.Transaction{
		ID:          uuid.NewString(),
		Symbol:      f.Symbol,
		Quantity:    qty,
		Price:       f.Price,
		Kind:        f.Kind,
		Venue:       f.Venue,
		TxKind:      kind,
		Timestamp:   now,
		RealizedPnL: pnl,
		Note:        f.Note,
	}
	l.transactions = append(l.transactions, tx)
	return tx
}

func (l *Ledger) journal(ctx context.Context, tx *domain.Transaction) {
	if l.repo == nil {
		return
	}
	if err := l.repo.Append(ctx, tx); err != nil {
		// The in-memory ledger stays authoritative; a journal failure is not fatal.
		l.logger.Error(ctx, err, "failed to journal transaction",
			map[string]interface{}{"txID": tx.ID, "symbol": tx.Symbol})
	}
}

func openTxKind(f Fill) domain.TransactionKind {
	if f.Hedge {
		return domain.TxHedge
	}
	return domain.TxAdd
}

func increaseTxKind(f Fill) domain.TransactionKind {
	if f.Hedge {
		return domain.TxHedge
	}
	if f.Quantity > 0 {
		return domain.TxBuy
	}
	return domain.TxSell
}

func reduceTxKind(f Fill) domain.TransactionKind {
	if f.Quantity < 0 {
		return domain.TxSell
	}
	return domain.TxBuy
}

// Position returns a copy of the position for a symbol, or nil if none.
func (l *Ledger) Position(symbol string) *domain.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()
	pos, ok := l.positions[symbol]
	if !ok {
		return nil
	}
	cp := *pos
	return &cp
}

// Positions returns a snapshot copy of all open positions.
func (l *Ledger) Positions() []*domain.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*domain.Position, 0, len(l.positions))
	for _, pos := range l.positions {
		cp := *pos
		out = append(out, &cp)
	}
	return out
}

// Transactions returns a snapshot copy of the full transaction history,
// oldest first.
func (l *Ledger) Transactions() []domain.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// UnrealizedPnL sums (mark - entry) * quantity across open positions.
// Positions without a mark price are skipped.
func (l *Ledger) UnrealizedPnL(prices map[string]float64) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := 0.0
	for _, pos := range l.positions {
		if px, ok := prices[pos.Symbol]; ok && px > 0 {
			total += pos.UnrealizedPnL(px)
		}
	}
	return total
}

// RealizedPnL sums the realized P&L of all recorded transactions.
func (l *Ledger) RealizedPnL() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := 0.0
	for i := range l.transactions {
		if pnl := l.transactions[i].RealizedPnL; pnl != nil {
			total += *pnl
		}
	}
	return total
}

// TotalDelta returns the aggregate portfolio delta at the given prices.
// Options without a known volatility are valued at their intrinsic delta.
func (l *Ledger) TotalDelta(prices map[string]float64) float64 {
	return pricing.PortfolioDelta(l.Positions(), prices, nil, 0, l.nowFn())
}

// TotalNotional sums |quantity * mark| across open positions.
func (l *Ledger) TotalNotional(prices map[string]float64) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := 0.0
	for _, pos := range l.positions {
		if px, ok := prices[pos.Symbol]; ok && px > 0 {
			total += pos.Notional(px)
		}
	}
	return total
}

// VaR95 returns the portfolio 95% Value-at-Risk at the given prices.
func (l *Ledger) VaR95(prices map[string]float64) float64 {
	return risk.VaR95(l.Positions(), prices)
}

// MaxDrawdown reports the maximum peak-to-trough drawdown of an equity curve.
func (l *Ledger) MaxDrawdown(equity []float64) float64 {
	return risk.MaxDrawdown(equity)
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quanthedge/internal/adapters/logger"
	"quanthedge/internal/domain"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(Config{
		DBPath: filepath.Join(t.TempDir(), "journal.db"),
		Logger: logger.NewStdLogger(logger.LevelError),
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTx(symbol string, qty, price float64, kind domain.TransactionKind, ts time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Quantity:  qty,
		Price:     price,
		Kind:      domain.Spot,
		Venue:     "okx",
		TxKind:    kind,
		Timestamp: ts,
	}
}

func TestAppendAndRecentBySymbol(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	first := newTx("BTCUSDT", 1, 40000, domain.TxAdd, base)
	second := newTx("BTCUSDT", 0.5, 42000, domain.TxBuy, base.Add(time.Hour))
	other := newTx("ETHUSDT", 2, 2500, domain.TxAdd, base.Add(2*time.Hour))

	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))
	require.NoError(t, repo.Append(ctx, other))

	txs, err := repo.RecentBySymbol(ctx, "BTCUSDT", 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	// Newest first.
	assert.Equal(t, second.ID, txs[0].ID)
	assert.Equal(t, first.ID, txs[1].ID)
	assert.Equal(t, domain.TxBuy, txs[0].TxKind)
	assert.Equal(t, domain.Spot, txs[0].Kind)
	assert.Equal(t, 42000.0, txs[0].Price)
	assert.Nil(t, txs[0].RealizedPnL)
}

func TestAppendPersistsRealizedPnL(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	pnl := 125.5
	tx := newTx("BTCUSDT", -1, 41000, domain.TxSell, time.Now().UTC())
	tx.RealizedPnL = &pnl
	tx.Note = "partial close"
	require.NoError(t, repo.Append(ctx, tx))

	txs, err := repo.RecentBySymbol(ctx, "BTCUSDT", 1)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.NotNil(t, txs[0].RealizedPnL)
	assert.Equal(t, 125.5, *txs[0].RealizedPnL)
	assert.Equal(t, "partial close", txs[0].Note)
}

func TestRecentBySymbolHonorsLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, newTx("BTCUSDT", 1, 40000, domain.TxAdd, base.Add(time.Duration(i)*time.Minute))))
	}

	txs, err := repo.RecentBySymbol(ctx, "BTCUSDT", 3)
	require.NoError(t, err)
	assert.Len(t, txs, 3)
}

func TestHistoryReturnsOldestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	open := newTx("BTCUSDT", 2, 40000, domain.TxAdd, base)
	reduce := newTx("BTCUSDT", -1, 43000, domain.TxSell, base.Add(time.Hour))
	other := newTx("ETHUSDT", 5, 2500, domain.TxAdd, base.Add(2*time.Hour))

	require.NoError(t, repo.Append(ctx, reduce))
	require.NoError(t, repo.Append(ctx, open))
	require.NoError(t, repo.Append(ctx, other))

	txs, err := repo.History(ctx, "BTCUSDT")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, open.ID, txs[0].ID)
	assert.Equal(t, reduce.ID, txs[1].ID)

	// Replaying signed quantities reproduces the live book.
	var net float64
	for _, tx := range txs {
		net += tx.Quantity
	}
	assert.Equal(t, 1.0, net)
}

func TestRecentBySymbolEmpty(t *testing.T) {
	repo := newTestRepo(t)

	txs, err := repo.RecentBySymbol(context.Background(), "NOPE", 10)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"quanthedge/internal/domain"
	"quanthedge/internal/ports"
)

// Repository implements ports.TransactionRepository using SQLite. The
// journal is append-only: the in-memory ledger stays authoritative and
// rows exist for audit and restart review.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/quanthedge.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("%w: failed to open database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to ping database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// The Go driver benefits from limiting connections with SQLite.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	cfg.Logger.Info(context.Background(), "SQLite transaction journal ready", map[string]interface{}{"path": dbPath})
	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		quantity REAL NOT NULL,
		price REAL NOT NULL,
		kind TEXT NOT NULL,
		venue TEXT NOT NULL,
		tx_kind TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		realized_pnl REAL DEFAULT NULL,
		note TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_symbol_timestamp ON transactions (symbol, timestamp);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// Append journals one transaction.
func (r *Repository) Append(ctx context.Context, tx *domain.Transaction) error {
	const query = `
	INSERT INTO transactions (id, symbol, quantity, price, kind, venue, tx_kind, timestamp, realized_pnl, note)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var pnl sql.NullFloat64
	if tx.RealizedPnL != nil {
		pnl = sql.NullFloat64{Float64: *tx.RealizedPnL, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		tx.ID, tx.Symbol, tx.Quantity, tx.Price, string(tx.Kind), tx.Venue,
		string(tx.TxKind), tx.Timestamp, pnl, tx.Note)
	if err != nil {
		return fmt.Errorf("%w: inserting transaction %s: %v", ports.ErrQueryFailed, tx.ID, err)
	}
	r.logger.Debug(ctx, "Transaction journaled", map[string]interface{}{
		"id":      tx.ID,
		"symbol":  tx.Symbol,
		"tx_kind": string(tx.TxKind),
	})
	return nil
}

// RecentBySymbol retrieves the most recent journaled transactions for
// a symbol, newest first, up to a limit.
func (r *Repository) RecentBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Transaction, error) {
	const query = `
	SELECT id, symbol, quantity, price, kind, venue, tx_kind, timestamp, realized_pnl, note
	FROM transactions
	WHERE symbol = ? ORDER BY timestamp DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying transactions for %s: %v", ports.ErrQueryFailed, symbol, err)
	}
	defer rows.Close()

	txs := make([]*domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction row: %w", err)
		}
		txs = append(txs, tx)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}
	return txs, nil
}

// History retrieves every journaled transaction for a symbol, oldest
// first, so a reporting tool can replay the fill stream into a book.
func (r *Repository) History(ctx context.Context, symbol string) ([]*domain.Transaction, error) {
	const query = `
	SELECT id, symbol, quantity, price, kind, venue, tx_kind, timestamp, realized_pnl, note
	FROM transactions
	WHERE symbol = ? ORDER BY timestamp ASC`

	rows, err := r.db.QueryContext(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: querying history for %s: %v", ports.ErrQueryFailed, symbol, err)
	}
	defer rows.Close()

	txs := make([]*domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction row: %w", err)
		}
		txs = append(txs, tx)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}
	return txs, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	tx := &domain.Transaction{}
	var kind, txKind string
	var pnl sql.NullFloat64
	err := s.Scan(
		&tx.ID, &tx.Symbol, &tx.Quantity, &tx.Price, &kind, &tx.Venue,
		&txKind, &tx.Timestamp, &pnl, &tx.Note)
	if err != nil {
		return nil, err
	}
	tx.Kind = domain.InstrumentKind(kind)
	tx.TxKind = domain.TransactionKind(txKind)
	if pnl.Valid {
		v := pnl.Float64
		tx.RealizedPnL = &v
	}
	return tx, nil
}

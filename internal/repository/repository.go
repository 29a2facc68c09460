package repository

import (
	"context"
	"errors"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

var (
	// ErrNotFound is returned by updates that target a missing row.
	ErrNotFound = errors.New("row not found")
	// ErrDuplicateKey is returned by inserts that collide with an existing row.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Store is a transactional home for the stocks and sales tables.
type Store interface {
	// WithinTx runs fn in a single transaction. The transaction commits when fn
	// returns nil and rolls back otherwise; fn's error is returned unchanged.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close(ctx context.Context) error
}

// Tx exposes the table primitives available inside a transaction.
type Tx interface {
	// FindStock looks an item up by exact name. found is false when no row exists.
	FindStock(ctx context.Context, name string) (item models.StockItem, found bool, err error)
	// ListStocks returns every item ordered by name, byte-wise ascending.
	ListStocks(ctx context.Context) ([]models.StockItem, error)
	InsertStock(ctx context.Context, item models.StockItem) error
	UpdateStock(ctx context.Context, item models.StockItem) error
	DeleteAllStocks(ctx context.Context) error

	// GetOrCreateLedger returns the ledger row for key, inserting a zero row
	// when it is missing. created reports whether the insert happened.
	GetOrCreateLedger(ctx context.Context, key string) (ledger models.SalesLedger, created bool, err error)
	UpdateLedger(ctx context.Context, ledger models.SalesLedger) error
	DeleteAllLedgers(ctx context.Context) error
}

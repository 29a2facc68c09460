package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/repository"
)

// ErrUnsupportedDialect is returned for dialects other than sqlite and postgres.
var ErrUnsupportedDialect = errors.New("unsupported sql dialect")

// Dialect selects the SQL engine behind the store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) driverName() string {
	switch d {
	case DialectSQLite:
		return "sqlite3"
	case DialectPostgres:
		return "postgres"
	default:
		return string(d)
	}
}

const (
	findStockQuery       = "SELECT name, amount FROM stocks WHERE name = ?"
	listStocksQuery      = "SELECT name, amount FROM stocks ORDER BY name"
	insertStockQuery     = "INSERT INTO stocks (name, amount) VALUES (?, ?)"
	updateStockQuery     = "UPDATE stocks SET amount = ? WHERE name = ?"
	deleteStocksQuery    = "DELETE FROM stocks"
	findLedgerQuery      = "SELECT name, total FROM sales WHERE name = ?"
	insertLedgerQuery    = "INSERT INTO sales (name, total) VALUES (?, 0)"
	updateLedgerQuery    = "UPDATE sales SET total = ? WHERE name = ?"
	deleteLedgersQuery   = "DELETE FROM sales"
	postgresRowLock      = " FOR UPDATE"
	postgresBinaryCollat = ` COLLATE "C"`
)

// Store implements repository.Store on top of sqlx.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	logger  *zap.Logger
}

// New wraps an already opened database handle.
func New(db *sqlx.DB, dialect Dialect, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, dialect: dialect, logger: logger}
}

// Open connects to dsn, applies migrations and returns a ready store.
func Open(ctx context.Context, dialect Dialect, dsn string, logger *zap.Logger) (*Store, error) {
	if dialect != DialectSQLite && dialect != DialectPostgres {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, dialect)
	}
	if dialect == DialectSQLite {
		dsn = sqliteDSN(dsn)
	}

	if err := Migrate(dialect, dsn); err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// A single connection serialises writers and avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	return New(db, dialect, logger), nil
}

func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "data.db"
	}
	if strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?_journal_mode=WAL&_busy_timeout=5000"
}

// WithinTx implements repository.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, &sqlTx{tx: tx, dialect: s.dialect}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close implements repository.Store.
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

type sqlTx struct {
	tx      *sqlx.Tx
	dialect Dialect
}

func (t *sqlTx) FindStock(ctx context.Context, name string) (models.StockItem, bool, error) {
	query := findStockQuery
	if t.dialect == DialectPostgres {
		query += postgresRowLock
	}

	var item models.StockItem
	err := t.tx.GetContext(ctx, &item, t.tx.Rebind(query), name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.StockItem{}, false, nil
	}
	if err != nil {
		return models.StockItem{}, false, fmt.Errorf("find stock %s: %w", name, err)
	}
	return item, true, nil
}

func (t *sqlTx) ListStocks(ctx context.Context) ([]models.StockItem, error) {
	query := listStocksQuery
	if t.dialect == DialectPostgres {
		query += postgresBinaryCollat
	}

	var items []models.StockItem
	if err := t.tx.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	return items, nil
}

func (t *sqlTx) InsertStock(ctx context.Context, item models.StockItem) error {
	if _, err := t.tx.ExecContext(ctx, t.tx.Rebind(insertStockQuery), item.Name, item.Amount); err != nil {
		return fmt.Errorf("insert stock %s: %w", item.Name, err)
	}
	return nil
}

func (t *sqlTx) UpdateStock(ctx context.Context, item models.StockItem) error {
	res, err := t.tx.ExecContext(ctx, t.tx.Rebind(updateStockQuery), item.Amount, item.Name)
	if err != nil {
		return fmt.Errorf("update stock %s: %w", item.Name, err)
	}
	return expectOneRow(res, item.Name)
}

func (t *sqlTx) DeleteAllStocks(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, deleteStocksQuery); err != nil {
		return fmt.Errorf("delete stocks: %w", err)
	}
	return nil
}

func (t *sqlTx) GetOrCreateLedger(ctx context.Context, key string) (models.SalesLedger, bool, error) {
	query := findLedgerQuery
	if t.dialect == DialectPostgres {
		query += postgresRowLock
	}

	var ledger models.SalesLedger
	err := t.tx.GetContext(ctx, &ledger, t.tx.Rebind(query), key)
	if err == nil {
		return ledger, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.SalesLedger{}, false, fmt.Errorf("find ledger %s: %w", key, err)
	}

	if _, err := t.tx.ExecContext(ctx, t.tx.Rebind(insertLedgerQuery), key); err != nil {
		return models.SalesLedger{}, false, fmt.Errorf("insert ledger %s: %w", key, err)
	}
	return models.SalesLedger{Name: key}, true, nil
}

func (t *sqlTx) UpdateLedger(ctx context.Context, ledger models.SalesLedger) error {
	res, err := t.tx.ExecContext(ctx, t.tx.Rebind(updateLedgerQuery), ledger.Total, ledger.Name)
	if err != nil {
		return fmt.Errorf("update ledger %s: %w", ledger.Name, err)
	}
	return expectOneRow(res, ledger.Name)
}

func (t *sqlTx) DeleteAllLedgers(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, deleteLedgersQuery); err != nil {
		return fmt.Errorf("delete ledgers: %w", err)
	}
	return nil
}

func expectOneRow(res sql.Result, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", key, repository.ErrNotFound)
	}
	return nil
}

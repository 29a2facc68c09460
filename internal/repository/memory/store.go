package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/repository"
)

// ErrClosed is returned once the store has been closed.
var ErrClosed = errors.New("memory store closed")

// Store keeps both tables in process memory. Transactions are serialised and
// work on a copy that replaces the live tables only on commit.
type Store struct {
	mu     sync.Mutex
	stocks map[string]int64
	ledger map[string]float64
	closed bool
	logger *zap.Logger
}

// NewStore builds an empty in-memory store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		stocks: make(map[string]int64),
		ledger: make(map[string]float64),
		logger: logger,
	}
}

// WithinTx implements repository.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{
		stocks: cloneMap(s.stocks),
		ledger: cloneMap(s.ledger),
	}
	if err := fn(ctx, tx); err != nil {
		s.logger.Debug("transaction rolled back", zap.Error(err))
		return err
	}

	s.stocks = tx.stocks
	s.ledger = tx.ledger
	return nil
}

// Close implements repository.Store.
func (s *Store) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type memTx struct {
	stocks map[string]int64
	ledger map[string]float64
}

func (t *memTx) FindStock(_ context.Context, name string) (models.StockItem, bool, error) {
	amount, ok := t.stocks[name]
	if !ok {
		return models.StockItem{}, false, nil
	}
	return models.StockItem{Name: name, Amount: amount}, true, nil
}

func (t *memTx) ListStocks(_ context.Context) ([]models.StockItem, error) {
	names := make([]string, 0, len(t.stocks))
	for name := range t.stocks {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]models.StockItem, 0, len(names))
	for _, name := range names {
		items = append(items, models.StockItem{Name: name, Amount: t.stocks[name]})
	}
	return items, nil
}

func (t *memTx) InsertStock(_ context.Context, item models.StockItem) error {
	if _, exists := t.stocks[item.Name]; exists {
		return repository.ErrDuplicateKey
	}
	t.stocks[item.Name] = item.Amount
	return nil
}

func (t *memTx) UpdateStock(_ context.Context, item models.StockItem) error {
	if _, exists := t.stocks[item.Name]; !exists {
		return repository.ErrNotFound
	}
	t.stocks[item.Name] = item.Amount
	return nil
}

func (t *memTx) DeleteAllStocks(_ context.Context) error {
	t.stocks = make(map[string]int64)
	return nil
}

func (t *memTx) GetOrCreateLedger(_ context.Context, key string) (models.SalesLedger, bool, error) {
	total, ok := t.ledger[key]
	if ok {
		return models.SalesLedger{Name: key, Total: total}, false, nil
	}
	t.ledger[key] = 0
	return models.SalesLedger{Name: key}, true, nil
}

func (t *memTx) UpdateLedger(_ context.Context, ledger models.SalesLedger) error {
	if _, exists := t.ledger[ledger.Name]; !exists {
		return repository.ErrNotFound
	}
	t.ledger[ledger.Name] = ledger.Total
	return nil
}

func (t *memTx) DeleteAllLedgers(_ context.Context) error {
	t.ledger = make(map[string]float64)
	return nil
}

func cloneMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

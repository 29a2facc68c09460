package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/repository"
)

func TestStoreCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		require.NoError(t, tx.InsertStock(ctx, models.StockItem{Name: "pear", Amount: 2}))
		return tx.InsertStock(ctx, models.StockItem{Name: "Apple", Amount: 5})
	})
	require.NoError(t, err)

	err = store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		items, err := tx.ListStocks(ctx)
		require.NoError(t, err)
		assert.Equal(t, []models.StockItem{{Name: "Apple", Amount: 5}, {Name: "pear", Amount: 2}}, items)
		return nil
	})
	require.NoError(t, err)
}

func TestStoreRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		require.NoError(t, tx.InsertStock(ctx, models.StockItem{Name: "pear", Amount: 2}))
		_, _, err := tx.GetOrCreateLedger(ctx, models.SalesLedgerKey)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		_, found, err := tx.FindStock(ctx, "pear")
		require.NoError(t, err)
		assert.False(t, found)

		_, created, err := tx.GetOrCreateLedger(ctx, models.SalesLedgerKey)
		require.NoError(t, err)
		assert.True(t, created)
		return nil
	})
	require.NoError(t, err)
}

func TestGetOrCreateLedgerReusesRow(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		ledger, created, err := tx.GetOrCreateLedger(ctx, models.SalesLedgerKey)
		require.NoError(t, err)
		assert.True(t, created)
		ledger.Total = 12.5
		return tx.UpdateLedger(ctx, ledger)
	})
	require.NoError(t, err)

	err = store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		ledger, created, err := tx.GetOrCreateLedger(ctx, models.SalesLedgerKey)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, 12.5, ledger.Total)
		return nil
	})
	require.NoError(t, err)
}

func TestInsertAndUpdateGuards(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		assert.ErrorIs(t, tx.UpdateStock(ctx, models.StockItem{Name: "ghost", Amount: 1}), repository.ErrNotFound)
		require.NoError(t, tx.InsertStock(ctx, models.StockItem{Name: "kiwi", Amount: 1}))
		assert.ErrorIs(t, tx.InsertStock(ctx, models.StockItem{Name: "kiwi", Amount: 1}), repository.ErrDuplicateKey)
		assert.ErrorIs(t, tx.UpdateLedger(ctx, models.SalesLedger{Name: "nope"}), repository.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestClosedStoreRejectsTransactions(t *testing.T) {
	store := NewStore(nil)
	require.NoError(t, store.Close(context.Background()))

	err := store.WithinTx(context.Background(), func(context.Context, repository.Tx) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
}

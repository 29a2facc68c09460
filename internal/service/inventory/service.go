package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/domain/validation"
	"github.com/mamadbah2/stockroom/internal/repository"
)

// ErrValidation covers bad names, amounts and prices as well as selling more
// than is in stock. It always maps to a client error.
var ErrValidation = errors.New("validation failed")

// Manager describes the stock and sales operations exposed over HTTP.
type Manager interface {
	ListStocks(ctx context.Context) (map[string]int64, error)
	GetStock(ctx context.Context, name string) (map[string]int64, error)
	AddStock(ctx context.Context, req models.StockRequest) (models.StockItem, error)
	Sell(ctx context.Context, req models.SaleRequest) (SaleResult, error)
	CheckSales(ctx context.Context) (float64, error)
	ClearAll(ctx context.Context) error
}

// SaleResult summarises a committed sale.
type SaleResult struct {
	Item    models.StockItem
	Revenue float64
	Priced  bool
}

// Service implements Manager on top of a transactional store.
type Service struct {
	store  repository.Store
	logger *zap.Logger
}

// NewService wires a new inventory service instance.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// ListStocks returns every stored item keyed by name.
func (s *Service) ListStocks(ctx context.Context) (map[string]int64, error) {
	stocks := make(map[string]int64)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		items, err := tx.ListStocks(ctx)
		if err != nil {
			return err
		}
		for _, item := range items {
			stocks[item.Name] = item.Amount
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stocks, nil
}

// GetStock reports the amount on hand for name. Unknown items report zero.
func (s *Service) GetStock(ctx context.Context, name string) (map[string]int64, error) {
	if !validation.ValidName(name) {
		return nil, fmt.Errorf("%w: name %q", ErrValidation, name)
	}

	var amount int64
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		item, found, err := tx.FindStock(ctx, name)
		if err != nil {
			return err
		}
		if found {
			amount = item.Amount
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return map[string]int64{name: amount}, nil
}

// AddStock restocks an item, creating it on first sight.
func (s *Service) AddStock(ctx context.Context, req models.StockRequest) (models.StockItem, error) {
	name, ok := validation.Name(req.Name)
	if !ok {
		return models.StockItem{}, fmt.Errorf("%w: invalid name", ErrValidation)
	}
	amount, ok := validation.Amount(req.Amount, validation.DefaultAmount)
	if !ok {
		return models.StockItem{}, fmt.Errorf("%w: invalid amount", ErrValidation)
	}

	var stored models.StockItem
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		item, found, err := tx.FindStock(ctx, name)
		if err != nil {
			return err
		}
		if !found {
			stored = models.StockItem{Name: name, Amount: amount}
			return tx.InsertStock(ctx, stored)
		}
		if item.Amount > math.MaxInt64-amount {
			return fmt.Errorf("%w: amount overflows stock of %s", ErrValidation, name)
		}
		item.Amount += amount
		stored = item
		return tx.UpdateStock(ctx, item)
	})
	if err != nil {
		return models.StockItem{}, err
	}

	s.logger.Info("stock added", zap.String("name", name), zap.Int64("delta", amount), zap.Int64("amount", stored.Amount))
	return stored, nil
}

// Sell removes amount units of an item and, when priced, adds price*amount to
// the sales ledger. Both writes commit together.
func (s *Service) Sell(ctx context.Context, req models.SaleRequest) (SaleResult, error) {
	name, ok := validation.Name(req.Name)
	if !ok {
		return SaleResult{}, fmt.Errorf("%w: invalid name", ErrValidation)
	}
	amount, ok := validation.Amount(req.Amount, validation.DefaultAmount)
	if !ok {
		return SaleResult{}, fmt.Errorf("%w: invalid amount", ErrValidation)
	}
	price, priced, ok := validation.NumericPrice(req.Price)
	if !ok {
		return SaleResult{}, fmt.Errorf("%w: invalid price", ErrValidation)
	}

	var result SaleResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		item, found, err := tx.FindStock(ctx, name)
		if err != nil {
			return err
		}
		if !found || item.Amount < amount {
			return fmt.Errorf("%w: insufficient stock of %s", ErrValidation, name)
		}
		// The magnitude check runs after the stock check.
		if priced && !validation.PositivePrice(price) {
			return fmt.Errorf("%w: price must be positive", ErrValidation)
		}

		item.Amount -= amount
		if err := tx.UpdateStock(ctx, item); err != nil {
			return err
		}
		result.Item = item

		if !priced {
			return nil
		}

		ledger, created, err := tx.GetOrCreateLedger(ctx, models.SalesLedgerKey)
		if err != nil {
			return err
		}
		if created {
			s.logger.Debug("sales ledger created")
		}
		result.Revenue = price * float64(amount)
		result.Priced = true
		ledger.Total += result.Revenue
		if math.IsInf(ledger.Total, 0) {
			return fmt.Errorf("%w: sales total overflows", ErrValidation)
		}
		return tx.UpdateLedger(ctx, ledger)
	})
	if err != nil {
		return SaleResult{}, err
	}

	s.logger.Info("stock sold",
		zap.String("name", name),
		zap.Int64("amount", amount),
		zap.Bool("priced", result.Priced),
		zap.Float64("revenue", result.Revenue))
	return result, nil
}

// CheckSales returns the ledger total rounded to two decimals, creating the
// ledger row if it does not exist yet.
func (s *Service) CheckSales(ctx context.Context) (float64, error) {
	var total float64
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		ledger, created, err := tx.GetOrCreateLedger(ctx, models.SalesLedgerKey)
		if err != nil {
			return err
		}
		if created {
			s.logger.Debug("sales ledger created")
		}
		total = ledger.Total
		return nil
	})
	if err != nil {
		return 0, err
	}
	return RoundSales(total), nil
}

// ClearAll deletes every stock row and the sales ledger in one transaction.
func (s *Service) ClearAll(ctx context.Context) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.DeleteAllStocks(ctx); err != nil {
			return err
		}
		return tx.DeleteAllLedgers(ctx)
	})
	if err != nil {
		return err
	}

	s.logger.Info("stocks and sales cleared")
	return nil
}

// RoundSales rounds total to two decimals by formatting its exact binary
// value, so 10.005 (stored as 10.00499...) reports 10.00.
func RoundSales(total float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(total, 'f', 2, 64), 64)
	if err != nil {
		return total
	}
	return rounded
}

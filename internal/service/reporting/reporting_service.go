package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

const timestampLayout = time.RFC3339

// InventoryReader is the read side of the inventory service used for reports.
type InventoryReader interface {
	ListStocks(ctx context.Context) (map[string]int64, error)
	CheckSales(ctx context.Context) (float64, error)
}

// Service builds inventory snapshots for scheduled reports.
type Service struct {
	inventory InventoryReader
	now       func() time.Time
	logger    *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(inventory InventoryReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{inventory: inventory, now: time.Now, logger: logger}
}

// Generate snapshots current stock levels and the sales total.
func (s *Service) Generate(ctx context.Context) (models.InventoryReport, error) {
	stocks, err := s.inventory.ListStocks(ctx)
	if err != nil {
		return models.InventoryReport{}, fmt.Errorf("load stocks: %w", err)
	}

	sales, err := s.inventory.CheckSales(ctx)
	if err != nil {
		return models.InventoryReport{}, fmt.Errorf("load sales: %w", err)
	}

	report := models.InventoryReport{
		GeneratedAt: s.now().UTC(),
		Stocks:      stocks,
		ItemCount:   len(stocks),
		SalesTotal:  sales,
	}
	for _, amount := range stocks {
		report.TotalUnits += amount
	}

	s.logger.Debug("inventory report generated",
		zap.Int("items", report.ItemCount),
		zap.Int64("units", report.TotalUnits),
		zap.Float64("sales", report.SalesTotal))
	return report, nil
}

// Format renders a report as plain text, one item per line in name order.
func Format(report models.InventoryReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Inventory report (%s)\n", report.GeneratedAt.Format(timestampLayout))

	if report.ItemCount == 0 {
		b.WriteString("No items in stock.\n")
	} else {
		names := make([]string, 0, len(report.Stocks))
		for name := range report.Stocks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %d\n", name, report.Stocks[name])
		}
		fmt.Fprintf(&b, "%d items, %d units.\n", report.ItemCount, report.TotalUnits)
	}

	fmt.Fprintf(&b, "Sales: %.2f", report.SalesTotal)
	return b.String()
}

// Row flattens a report into a spreadsheet row: timestamp, items, units, sales.
func Row(report models.InventoryReport) []interface{} {
	return []interface{}{
		report.GeneratedAt.Format(timestampLayout),
		report.ItemCount,
		report.TotalUnits,
		report.SalesTotal,
	}
}

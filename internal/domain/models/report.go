package models

import "time"

// InventoryReport is the periodic snapshot of stock levels and revenue.
type InventoryReport struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Stocks      map[string]int64 `json:"stocks"`
	ItemCount   int              `json:"item_count"`
	TotalUnits  int64            `json:"total_units"`
	SalesTotal  float64          `json:"sales_total"`
}

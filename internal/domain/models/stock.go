package models

// StockItem captures the quantity on hand for a single named item.
type StockItem struct {
	Name   string `bson:"_id" db:"name" json:"name"`
	Amount int64  `bson:"amount" db:"amount" json:"amount"`
}

// Format renders the item the way the API reports it: {name: amount}.
func (s StockItem) Format() map[string]int64 {
	return map[string]int64{s.Name: s.Amount}
}

// SalesLedgerKey is the fixed key of the only ledger row the service uses.
const SalesLedgerKey = "sales"

// SalesLedger holds the running revenue total across all priced sales.
type SalesLedger struct {
	Name  string  `bson:"_id" db:"name" json:"name"`
	Total float64 `bson:"total" db:"total" json:"total"`
}

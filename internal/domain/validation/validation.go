// Package validation holds the syntactic rules for item names, quantities and prices.
// Every function is pure; none of them touch storage.
package validation

import (
	"math"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

const (
	// MaxNameLength is the longest accepted item name.
	MaxNameLength = 8
	// DefaultAmount is used when a request omits the amount.
	DefaultAmount int64 = 1
)

// ValidName reports whether name is 1-8 ASCII letters.
func ValidName(name string) bool {
	if len(name) == 0 || len(name) > MaxNameLength {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// Name validates a decoded name field. Only strings can be names.
func Name(f models.Field) (string, bool) {
	if f.Kind != models.FieldString {
		return "", false
	}
	return f.Str, ValidName(f.Str)
}

// Amount resolves an amount field, substituting def when absent.
// Present values must be JSON integers strictly greater than zero.
func Amount(f models.Field, def int64) (int64, bool) {
	switch f.Kind {
	case models.FieldAbsent:
		return def, def > 0
	case models.FieldInteger:
		return f.Int, f.Int > 0
	default:
		return 0, false
	}
}

// NumericPrice is the type stage of price validation. An absent price is valid
// and reported with present=false.
func NumericPrice(f models.Field) (price float64, present bool, ok bool) {
	switch f.Kind {
	case models.FieldAbsent:
		return 0, false, true
	case models.FieldInteger:
		return float64(f.Int), true, true
	case models.FieldFloat:
		if math.IsNaN(f.Float) || math.IsInf(f.Float, 0) {
			return 0, true, false
		}
		return f.Float, true, true
	default:
		return 0, true, false
	}
}

// PositivePrice is the magnitude stage of price validation.
func PositivePrice(price float64) bool {
	return price > 0
}

// Price runs both price stages.
func Price(f models.Field) (price float64, present bool, ok bool) {
	price, present, ok = NumericPrice(f)
	if !ok || !present {
		return price, present, ok
	}
	return price, true, PositivePrice(price)
}

package models

// FieldKind enumerates the JSON shapes a request field can take.
type FieldKind int

const (
	FieldAbsent FieldKind = iota
	FieldInteger
	FieldFloat
	FieldString
	FieldBool
	FieldOther
)

// Field is a decoded request value tagged with the JSON shape it arrived in.
// Null and missing keys both decode to FieldAbsent.
type Field struct {
	Kind  FieldKind
	Int   int64
	Float float64
	Str   string
}

// Absent reports whether the field was omitted or null.
func (f Field) Absent() bool {
	return f.Kind == FieldAbsent
}

// IntField builds an integer field.
func IntField(v int64) Field {
	return Field{Kind: FieldInteger, Int: v, Float: float64(v)}
}

// FloatField builds a floating-point field.
func FloatField(v float64) Field {
	return Field{Kind: FieldFloat, Float: v}
}

// StringField builds a string field.
func StringField(v string) Field {
	return Field{Kind: FieldString, Str: v}
}

// StockRequest is the body of POST /v1/stocks.
type StockRequest struct {
	Name   Field
	Amount Field
}

// SaleRequest is the body of POST /v1/sales.
type SaleRequest struct {
	Name   Field
	Amount Field
	Price  Field
}

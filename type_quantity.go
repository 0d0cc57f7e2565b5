package portfolio

import "github.com/shopspring/decimal"

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// Quantity is a signed decimal amount of an asset. Positive means an increase
// of holdings, negative a decrease. Exact decimal arithmetic is used
// throughout so tax figures never accumulate binary rounding error.
type Quantity struct {
	value decimal.Decimal
}

func Q[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Quantity {
	return Quantity{value: newDecimal(value)}
}

// ParseQuantity parses a decimal string into a Quantity.
func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{value: d}, nil
}

func (q Quantity) Equal(p Quantity) bool           { return q.value.Equal(p.value) }
func (q Quantity) LessThan(p Quantity) bool        { return q.value.LessThan(p.value) }
func (q Quantity) LessThanOrEqual(p Quantity) bool { return q.value.LessThanOrEqual(p.value) }
func (q Quantity) GreaterThan(p Quantity) bool     { return q.value.GreaterThan(p.value) }
func (q Quantity) Add(p Quantity) Quantity         { return Quantity{value: q.value.Add(p.value)} }
func (q Quantity) Sub(p Quantity) Quantity         { return Quantity{value: q.value.Sub(p.value)} }
func (q Quantity) Mul(p Quantity) Quantity         { return Quantity{value: q.value.Mul(p.value)} }
func (q Quantity) Div(p Quantity) Quantity         { return Quantity{value: q.value.Div(p.value)} }
func (q Quantity) Neg() Quantity                   { return Quantity{value: q.value.Neg()} }
func (q Quantity) Abs() Quantity                   { return Quantity{value: q.value.Abs()} }
func (q Quantity) IsNegative() bool                { return q.value.IsNegative() }
func (q Quantity) IsPositive() bool                { return q.value.IsPositive() }
func (q Quantity) IsZero() bool                    { return q.value.IsZero() }
func (q Quantity) String() string                  { return q.value.String() }

// InexactFloat64 returns the value as a float64 for display purposes only.
func (q Quantity) InexactFloat64() float64 { return q.value.InexactFloat64() }

// Min returns the smaller of q and p.
func (q Quantity) Min(p Quantity) Quantity {
	if q.LessThan(p) {
		return q
	}
	return p
}

// MarshalJSON implements the json.Marshaler interface.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return q.value.MarshalJSON()
}

func (q *Quantity) UnmarshalJSON(decimalBytes []byte) error {
	return q.value.UnmarshalJSON(decimalBytes)
}

package domain

import (
	"github.com/shopspring/decimal"
)

// Money is a decimal amount that travels as a plain JSON number, the way
// the API encodes prices. It decodes both numbers and quoted strings.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps d.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MoneyFromFloat converts an API float.
func MoneyFromFloat(f float64) Money {
	return Money{Decimal: decimal.NewFromFloat(f)}
}

// MustMoney parses s and panics on malformed input. For literals.
func MustMoney(s string) Money {
	return Money{Decimal: decimal.RequireFromString(s)}
}

// Zero is the zero amount.
var Zero = Money{Decimal: decimal.Zero}

// MarshalJSON encodes the amount as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

// Times returns m multiplied by a quantity.
func (m Money) Times(qty int) Money {
	return Money{Decimal: m.Decimal.Mul(decimal.NewFromInt(int64(qty)))}
}

// Cents rounds half away from zero to two places, as the API does.
func (m Money) Cents() Money {
	return Money{Decimal: m.Decimal.Round(2)}
}

// Equal compares amounts by value, so 1.5 equals 1.50.
func (m Money) Equal(o Money) bool {
	return m.Decimal.Equal(o.Decimal)
}

// String formats with exactly two decimals.
func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}

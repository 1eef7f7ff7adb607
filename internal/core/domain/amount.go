package domain

import (
	"github.com/shopspring/decimal"
)

// Amount is a monetary value in the store currency. Integer prices stay
// integers and fractional prices stay exact; no rounding is applied.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

func AmountFromInt(v int64) Amount {
	return Amount{Decimal: decimal.NewFromInt(v)}
}

func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Decimal: d}, nil
}

func (a Amount) Mul(quantity int) Amount {
	return Amount{Decimal: a.Decimal.Mul(decimal.NewFromInt(int64(quantity)))}
}

func (a Amount) Add(b Amount) Amount {
	return Amount{Decimal: a.Decimal.Add(b.Decimal)}
}

func (a Amount) LessThanOrEqual(b Amount) bool {
	return a.Decimal.LessThanOrEqual(b.Decimal)
}

// MarshalJSON writes the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

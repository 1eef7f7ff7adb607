package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInvalidFilter = errors.New("invalid filter")

const (
	FilterCategory = "category"
	FilterMaxPrice = "max_price"
	FilterColor    = "color"
)

// ProductFilter selects catalog entries. Nil fields do not filter.
type ProductFilter struct {
	Category *string
	MaxPrice *Amount
	Color    *string
}

func (f ProductFilter) IsEmpty() bool {
	return f.Category == nil && f.MaxPrice == nil && f.Color == nil
}

func (f ProductFilter) Match(p Product) bool {
	if f.Category != nil && p.Category != *f.Category {
		return false
	}
	if f.MaxPrice != nil && !p.Price.LessThanOrEqual(*f.MaxPrice) {
		return false
	}
	if f.Color != nil && p.Color != *f.Color {
		return false
	}
	return true
}

// ParseProductFilter builds a filter from loosely typed input such as query
// parameters or tool arguments. Unknown keys are ignored and empty strings
// mean "not set": category="" lists every product, not only products whose
// category is the empty string.
func ParseProductFilter(values map[string]any) (ProductFilter, error) {
	var f ProductFilter

	if v, ok := values[FilterCategory]; ok {
		s, err := stringValue(FilterCategory, v)
		if err != nil {
			return ProductFilter{}, err
		}
		if s != "" {
			f.Category = &s
		}
	}

	if v, ok := values[FilterColor]; ok {
		s, err := stringValue(FilterColor, v)
		if err != nil {
			return ProductFilter{}, err
		}
		if s != "" {
			f.Color = &s
		}
	}

	if v, ok := values[FilterMaxPrice]; ok {
		maxPrice, set, err := amountValue(v)
		if err != nil {
			return ProductFilter{}, err
		}
		if set {
			f.MaxPrice = &maxPrice
		}
	}

	return f, nil
}

func stringValue(key string, v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidFilter, key, v)
	}
}

func amountValue(v any) (Amount, bool, error) {
	switch n := v.(type) {
	case nil:
		return Amount{}, false, nil
	case string:
		if n == "" {
			return Amount{}, false, nil
		}
		a, err := ParseAmount(n)
		if err != nil {
			return Amount{}, false, fmt.Errorf("%w: max_price %q is not a number", ErrInvalidFilter, n)
		}
		return a, true, nil
	case json.Number:
		a, err := ParseAmount(n.String())
		if err != nil {
			return Amount{}, false, fmt.Errorf("%w: max_price %q is not a number", ErrInvalidFilter, n)
		}
		return a, true, nil
	case float64:
		return NewAmount(decimal.NewFromFloat(n)), true, nil
	case int:
		return AmountFromInt(int64(n)), true, nil
	case int64:
		return AmountFromInt(n), true, nil
	default:
		return Amount{}, false, fmt.Errorf("%w: max_price must be a number, got %T", ErrInvalidFilter, v)
	}
}

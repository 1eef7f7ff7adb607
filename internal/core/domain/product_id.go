package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductID identifies a catalog entry. Catalogs use either JSON strings or
// JSON numbers for ids, and the two kinds never compare equal: "1" and 1 are
// different products. Numeric ids are kept in canonical form so 1, 1.0 and
// 1e0 name the same product.
type ProductID struct {
	value   string
	numeric bool
}

func StringID(s string) ProductID {
	return ProductID{value: s}
}

func NumericID(n int64) ProductID {
	return ProductID{value: decimal.NewFromInt(n).String(), numeric: true}
}

// ParseNumericID canonicalises a textual number into a numeric id.
func ParseNumericID(s string) (ProductID, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ProductID{}, fmt.Errorf("product id %q is not a number: %w", s, err)
	}
	return ProductID{value: d.String(), numeric: true}, nil
}

func (id ProductID) String() string {
	return id.value
}

func (id ProductID) IsNumeric() bool {
	return id.numeric
}

func (id ProductID) IsZero() bool {
	return id == ProductID{}
}

func (id ProductID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}

	parsed, err := ParseNumericID(string(data))
	if err != nil {
		return fmt.Errorf("product id must be a string or a number, got %s", data)
	}
	*id = parsed
	return nil
}

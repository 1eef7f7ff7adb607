package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []Product {
	return []Product{
		{ID: NumericID(1), Name: "Red Shirt", Price: AmountFromInt(500), Category: "apparel", Color: "red"},
		{ID: NumericID(2), Name: "Blue Mug", Price: AmountFromInt(200), Category: "kitchen", Color: "blue"},
		{ID: StringID("sku-3"), Name: "Plain Sticker", Price: AmountFromInt(20)},
	}
}

func apply(f ProductFilter, products []Product) []string {
	var names []string
	for _, p := range products {
		if f.Match(p) {
			names = append(names, p.Name)
		}
	}
	return names
}

func TestParseProductFilter(t *testing.T) {
	t.Run("empty input is empty filter", func(t *testing.T) {
		f, err := ParseProductFilter(nil)
		require.NoError(t, err)
		assert.True(t, f.IsEmpty())
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		f, err := ParseProductFilter(map[string]any{"size": "XL", "page": 2.0})
		require.NoError(t, err)
		assert.True(t, f.IsEmpty())
	})

	t.Run("empty strings do not filter", func(t *testing.T) {
		f, err := ParseProductFilter(map[string]any{"category": "", "color": "", "max_price": ""})
		require.NoError(t, err)
		assert.True(t, f.IsEmpty())
	})

	t.Run("max_price accepts numbers and numeric strings", func(t *testing.T) {
		for _, v := range []any{200.0, "200", json.Number("200"), 200, int64(200)} {
			f, err := ParseProductFilter(map[string]any{"max_price": v})
			require.NoError(t, err, "value %v", v)
			require.NotNil(t, f.MaxPrice)
			assert.Equal(t, "200", f.MaxPrice.String())
		}
	})

	t.Run("non-numeric max_price is rejected", func(t *testing.T) {
		_, err := ParseProductFilter(map[string]any{"max_price": "cheap"})
		assert.ErrorIs(t, err, ErrInvalidFilter)

		_, err = ParseProductFilter(map[string]any{"max_price": true})
		assert.ErrorIs(t, err, ErrInvalidFilter)
	})

	t.Run("non-string category is rejected", func(t *testing.T) {
		_, err := ParseProductFilter(map[string]any{"category": 7.0})
		assert.ErrorIs(t, err, ErrInvalidFilter)
	})
}

func TestProductFilter_Match(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name   string
		values map[string]any
		want   []string
	}{
		{"no filter", nil, []string{"Red Shirt", "Blue Mug", "Plain Sticker"}},
		{"category", map[string]any{"category": "apparel"}, []string{"Red Shirt"}},
		{"max price inclusive", map[string]any{"max_price": 200.0}, []string{"Blue Mug", "Plain Sticker"}},
		{"color", map[string]any{"color": "blue"}, []string{"Blue Mug"}},
		{"combined with AND", map[string]any{"category": "apparel", "max_price": "400"}, nil},
		{"missing attribute never matches", map[string]any{"color": "green"}, nil},
		{"fractional bound", map[string]any{"max_price": "499.99"}, []string{"Blue Mug", "Plain Sticker"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseProductFilter(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, apply(f, catalog))
		})
	}
}

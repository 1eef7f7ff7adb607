package domain

import "time"

// CurrencyINR is the only currency the store sells in.
const CurrencyINR = "INR"

type LineItem struct {
	ProductID ProductID `json:"product_id"`
	Quantity  *int      `json:"quantity,omitempty"`
}

// Qty returns the requested quantity, 1 when none was given.
func (li LineItem) Qty() int {
	if li.Quantity == nil {
		return 1
	}
	return *li.Quantity
}

// OrderItem is a snapshot of a product taken when the order was built.
type OrderItem struct {
	ID       ProductID `json:"id"`
	Name     string    `json:"name"`
	Price    Amount    `json:"price"`
	Quantity int       `json:"quantity"`
}

func (i OrderItem) Subtotal() Amount {
	return i.Price.Mul(i.Quantity)
}

type Order struct {
	ID        string      `json:"id"`
	Items     []OrderItem `json:"items"`
	Total     Amount      `json:"total"`
	Currency  string      `json:"currency"`
	CreatedAt time.Time   `json:"created_at"`
}

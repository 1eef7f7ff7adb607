package domain

type Product struct {
	ID       ProductID `json:"id"`
	Name     string    `json:"name"`
	Price    Amount    `json:"price"`
	Category string    `json:"category,omitempty"`
	Color    string    `json:"color,omitempty"`
}

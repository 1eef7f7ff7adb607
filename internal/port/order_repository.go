package port

import (
	"context"

	"github.com/rl1809/merchant/internal/core/domain"
)

type OrderRepository interface {
	// AppendOrder persists an order at the end of the order log
	AppendOrder(ctx context.Context, order domain.Order) error

	// ListOrders returns the order log in append order
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/merchant/internal/core/domain"
	"github.com/rl1809/merchant/internal/port"
)

var (
	ErrUnknownProduct  = errors.New("unknown product")
	ErrInvalidPolicy   = errors.New("invalid unresolved item policy")
	ErrInvalidIDFormat = errors.New("invalid order id format")
)

// UnresolvedPolicy decides what happens to a line item whose product is not
// in the catalog.
type UnresolvedPolicy string

const (
	UnresolvedSkip UnresolvedPolicy = "skip"
	UnresolvedFail UnresolvedPolicy = "fail"
)

func ParseUnresolvedPolicy(s string) (UnresolvedPolicy, error) {
	switch UnresolvedPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnresolvedSkip:
		return UnresolvedSkip, nil
	case UnresolvedFail:
		return UnresolvedFail, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// IDGenerator returns a new order id for an order created at now.
type IDGenerator func(now time.Time) string

// UUIDOrderID yields "order-<uuid v7>", unique across calls in the same second.
func UUIDOrderID(now time.Time) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "order-" + id.String()
}

// UnixOrderID yields "order-<unix seconds>". Two orders created in the same
// second get the same id.
func UnixOrderID(now time.Time) string {
	return fmt.Sprintf("order-%d", now.Unix())
}

func ParseIDGenerator(format string) (IDGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "uuid":
		return UUIDOrderID, nil
	case "unix":
		return UnixOrderID, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidIDFormat, format)
	}
}

type OrderOption func(*OrderService)

func WithUnresolvedPolicy(p UnresolvedPolicy) OrderOption {
	return func(s *OrderService) { s.policy = p }
}

func WithIDGenerator(g IDGenerator) OrderOption {
	return func(s *OrderService) { s.newID = g }
}

func WithClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

func WithLogger(log *slog.Logger) OrderOption {
	return func(s *OrderService) { s.log = log }
}

type OrderService struct {
	catalog port.CatalogRepository
	orders  port.OrderRepository
	policy  UnresolvedPolicy
	newID   IDGenerator
	now     func() time.Time
	log     *slog.Logger
}

func NewOrderService(catalog port.CatalogRepository, orders port.OrderRepository, opts ...OrderOption) *OrderService {
	s := &OrderService{
		catalog: catalog,
		orders:  orders,
		policy:  UnresolvedSkip,
		newID:   UUIDOrderID,
		now:     time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder prices lineItems against the catalog and appends the resulting
// order to the order log.
func (s *OrderService) CreateOrder(ctx context.Context, lineItems []domain.LineItem) (domain.Order, error) {
	products, err := s.catalog.LoadProducts(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("load catalog: %w", err)
	}

	lookup := make(map[domain.ProductID]domain.Product, len(products))
	for _, p := range products {
		lookup[p.ID] = p
	}

	items := make([]domain.OrderItem, 0, len(lineItems))
	var total domain.Amount

	for i, li := range lineItems {
		prod, ok := lookup[li.ProductID]
		if !ok {
			if s.policy == UnresolvedFail {
				return domain.Order{}, fmt.Errorf("line item %d: %w: %s", i, ErrUnknownProduct, li.ProductID)
			}
			s.log.DebugContext(ctx, "skipping unresolved line item",
				slog.Int("index", i),
				slog.String("product_id", li.ProductID.String()),
			)
			continue
		}

		item := domain.OrderItem{
			ID:       li.ProductID,
			Name:     prod.Name,
			Price:    prod.Price,
			Quantity: li.Qty(),
		}
		items = append(items, item)
		total = total.Add(item.Subtotal())
	}

	now := s.now()
	order := domain.Order{
		ID:        s.newID(now),
		Items:     items,
		Total:     total,
		Currency:  domain.CurrencyINR,
		CreatedAt: now,
	}

	if err := s.orders.AppendOrder(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("save order %s: %w", order.ID, err)
	}

	s.log.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.Int("items", len(order.Items)),
		slog.Int("requested", len(lineItems)),
		slog.String("total", order.Total.String()),
	)

	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

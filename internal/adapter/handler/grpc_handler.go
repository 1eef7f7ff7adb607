package handler

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/merchant/internal/core/domain"
	"github.com/rl1809/merchant/internal/core/service"
)

const MerchantServiceName = "merchant.v1.MerchantService"

type ListProductsRequest struct {
	Filters map[string]any `json:"filters,omitempty"`
}

type ListProductsResponse struct {
	Products []domain.Product `json:"products"`
}

type CreateOrderRequest struct {
	Items []domain.LineItem `json:"items"`
}

type CreateOrderResponse struct {
	Order domain.Order `json:"order"`
}

type ListOrdersRequest struct{}

type ListOrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

type MerchantServiceServer interface {
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	CreateOrder(context.Context, *CreateOrderRequest) (*CreateOrderResponse, error)
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
}

func RegisterMerchantServiceServer(s grpc.ServiceRegistrar, srv MerchantServiceServer) {
	s.RegisterService(&merchantServiceDesc, srv)
}

var merchantServiceDesc = grpc.ServiceDesc{
	ServiceName: MerchantServiceName,
	HandlerType: (*MerchantServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListProducts",
			Handler:    unaryHandler("ListProducts", MerchantServiceServer.ListProducts),
		},
		{
			MethodName: "CreateOrder",
			Handler:    unaryHandler("CreateOrder", MerchantServiceServer.CreateOrder),
		},
		{
			MethodName: "ListOrders",
			Handler:    unaryHandler("ListOrders", MerchantServiceServer.ListOrders),
		},
	},
	Streams: []grpc.StreamDesc{},
}

func unaryHandler[Req, Resp any](method string, call func(MerchantServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MerchantServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + MerchantServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MerchantServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type GRPCHandler struct {
	catalog *service.CatalogService
	orders  *service.OrderService
	log     *slog.Logger
}

func NewGRPCHandler(catalog *service.CatalogService, orders *service.OrderService, log *slog.Logger) *GRPCHandler {
	if log == nil {
		log = slog.Default()
	}
	return &GRPCHandler{catalog: catalog, orders: orders, log: log}
}

func (h *GRPCHandler) ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error) {
	filter, err := domain.ParseProductFilter(req.Filters)
	if err != nil {
		return nil, h.statusError(ctx, "list products", err)
	}

	products, err := h.catalog.ListProducts(ctx, filter)
	if err != nil {
		return nil, h.statusError(ctx, "list products", err)
	}

	return &ListProductsResponse{Products: products}, nil
}

func (h *GRPCHandler) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	order, err := h.orders.CreateOrder(ctx, req.Items)
	if err != nil {
		return nil, h.statusError(ctx, "create order", err)
	}

	return &CreateOrderResponse{Order: order}, nil
}

func (h *GRPCHandler) ListOrders(ctx context.Context, _ *ListOrdersRequest) (*ListOrdersResponse, error) {
	orders, err := h.orders.ListOrders(ctx)
	if err != nil {
		return nil, h.statusError(ctx, "list orders", err)
	}

	return &ListOrdersResponse{Orders: orders}, nil
}

func (h *GRPCHandler) statusError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidFilter), errors.Is(err, service.ErrUnknownProduct):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	h.log.ErrorContext(ctx, op+" failed", slog.Any("err", err))
	return status.Error(codes.Internal, "internal error")
}

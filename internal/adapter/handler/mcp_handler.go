package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rl1809/merchant/internal/core/domain"
	"github.com/rl1809/merchant/internal/core/service"
)

// ErrorCodeInternalError is the JSON-RPC code for failures on our side.
// Bad tool input is reported as a tool result with isError set so the agent
// can read the message and retry.
const ErrorCodeInternalError = -32603

const (
	ToolListProducts = "list_products"
	ToolCreateOrder  = "create_order"
	ToolListOrders   = "list_orders"
)

// MCPError is returned by tool handlers for internal failures; the framework
// encodes it as a JSON-RPC error.
type MCPError struct {
	Code    int
	Message string
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MCPHandler exposes the catalog and order operations as MCP tools so a
// shopping agent can browse and order.
type MCPHandler struct {
	catalog *service.CatalogService
	orders  *service.OrderService
	log     *slog.Logger
}

func NewMCPHandler(catalog *service.CatalogService, orders *service.OrderService, log *slog.Logger) *MCPHandler {
	if log == nil {
		log = slog.Default()
	}
	return &MCPHandler{catalog: catalog, orders: orders, log: log}
}

func (h *MCPHandler) Register(s *server.MCPServer) {
	s.AddTool(listProductsTool(), h.handleListProducts)
	s.AddTool(createOrderTool(), h.handleCreateOrder)
	s.AddTool(listOrdersTool(), h.handleListOrders)
}

func (h *MCPHandler) handleListProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArguments(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	filter, err := domain.ParseProductFilter(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	products, err := h.catalog.ListProducts(ctx, filter)
	if err != nil {
		return nil, h.internalError(ctx, ToolListProducts, err)
	}

	return jsonResult(products)
}

func (h *MCPHandler) handleCreateOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArguments(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	raw, ok := args["line_items"]
	if !ok {
		return mcp.NewToolResultError("line_items parameter is required"), nil
	}

	// Round-trip through JSON so ids keep their string/number kind.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return mcp.NewToolResultError("invalid line_items"), nil
	}
	var lineItems []domain.LineItem
	if err := json.Unmarshal(encoded, &lineItems); err != nil {
		return mcp.NewToolResultError("invalid line_items: " + err.Error()), nil
	}

	order, err := h.orders.CreateOrder(ctx, lineItems)
	if err != nil {
		if errors.Is(err, service.ErrUnknownProduct) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, h.internalError(ctx, ToolCreateOrder, err)
	}

	return jsonResult(order)
}

func (h *MCPHandler) handleListOrders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	orders, err := h.orders.ListOrders(ctx)
	if err != nil {
		return nil, h.internalError(ctx, ToolListOrders, err)
	}

	return jsonResult(orders)
}

func (h *MCPHandler) internalError(ctx context.Context, tool string, err error) error {
	h.log.ErrorContext(ctx, "tool failed", slog.String("tool", tool), slog.Any("err", err))
	return &MCPError{Code: ErrorCodeInternalError, Message: tool + " failed"}
}

func toolArguments(request mcp.CallToolRequest) (map[string]any, error) {
	if request.Params.Arguments == nil {
		return map[string]any{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil, errors.New("arguments must be an object")
	}
	return args, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, &MCPError{Code: ErrorCodeInternalError, Message: "encode result"}
	}
	return mcp.NewToolResultText(string(data)), nil
}

func listProductsTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolListProducts,
		Description: "List catalog products, optionally filtered by category, maximum price and color",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"category": map[string]any{
					"type":        "string",
					"description": "Exact product category, e.g. apparel",
				},
				"max_price": map[string]any{
					"type":        "number",
					"description": "Keep products priced at or below this amount (INR)",
				},
				"color": map[string]any{
					"type":        "string",
					"description": "Exact product color",
				},
			},
		},
	}
}

func createOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolCreateOrder,
		Description: "Place an order. Line items whose product is not in the catalog are left out of the order",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"line_items": map[string]any{
					"type":        "array",
					"description": "Products to buy",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"product_id": map[string]any{
								"type":        []string{"string", "number"},
								"description": "Catalog product id",
							},
							"quantity": map[string]any{
								"type":        "integer",
								"description": "Units to buy",
								"default":     1,
							},
						},
						"required": []string{"product_id"},
					},
				},
			},
			Required: []string{"line_items"},
		},
	}
}

func listOrdersTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolListOrders,
		Description: "List every order placed so far, oldest first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}
}

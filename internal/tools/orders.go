package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vzeman/biznisweb-mcp-server/internal/biznisweb"
	"github.com/vzeman/biznisweb-mcp-server/internal/logging"
)

// searchFetchLimit is how many recent orders search_orders scans.
const searchFetchLimit = 100

// searchResultLimit caps how many matches search_orders returns.
const searchResultLimit = 20

// OrderAPI is the slice of the BizniWeb client the order tools need.
type OrderAPI interface {
	ListOrders(ctx context.Context, p biznisweb.ListOrdersParams) (*biznisweb.OrderPage, error)
	GetOrder(ctx context.Context, orderNum string) (*biznisweb.OrderDetail, error)
}

// orderSummary is the flat, display-friendly order row the list and search
// tools return.
type orderSummary struct {
	OrderNum   string `json:"order_num"`
	Date       string `json:"date"`
	Customer   string `json:"customer"`
	Email      string `json:"email"`
	Status     string `json:"status"`
	Total      string `json:"total"`
	ItemsCount int    `json:"items_count"`
}

func summarizeOrder(o biznisweb.Order) orderSummary {
	return orderSummary{
		OrderNum:   o.OrderNum,
		Date:       o.PurDate,
		Customer:   o.Customer.DisplayName(),
		Email:      o.Customer.Email,
		Status:     o.Status.Name,
		Total:      strings.TrimSpace(o.Sum.Value.String() + " " + o.Sum.Currency.Code),
		ItemsCount: len(o.Items),
	}
}

// ListOrdersTool returns the list_orders registration: one page of orders,
// newest first, with optional date and status filtering.
func ListOrdersTool(api OrderAPI, logger logging.Logger) Registration {
	tool := mcp.NewTool("list_orders",
		mcp.WithDescription("List orders with optional date filtering"),
		mcp.WithString("from_date",
			mcp.Description("From date in YYYY-MM-DD format"),
		),
		mcp.WithString("to_date",
			mcp.Description("To date in YYYY-MM-DD format"),
		),
		mcp.WithNumber("status",
			mcp.Description("Order status ID"),
		),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(30),
			mcp.Description("Maximum number of orders to return"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := biznisweb.ListOrdersParams{
			Limit: req.GetInt("limit", 30),
		}

		if fromDate := req.GetString("from_date", ""); fromDate != "" {
			t, err := time.Parse("2006-01-02", fromDate)
			if err != nil {
				return ErrorResult(fmt.Sprintf("invalid from_date %q: expected YYYY-MM-DD", fromDate)), nil
			}
			params.NewerFrom = t
		}
		if _, ok := req.GetArguments()["status"]; ok {
			status := req.GetInt("status", 0)
			params.Status = &status
		}

		// The API has no upper-bound parameter, so to_date filters
		// client-side. An unparseable to_date is logged and ignored.
		var toDate time.Time
		if raw := req.GetString("to_date", ""); raw != "" {
			t, err := time.Parse("2006-01-02", raw)
			if err != nil {
				logger.Warn("ignoring invalid to_date", map[string]interface{}{
					"to_date": raw,
				})
			} else {
				toDate = t
			}
		}

		page, err := api.ListOrders(ctx, params)
		if err != nil {
			return ErrorResult(err.Error()), nil
		}

		orders := make([]orderSummary, 0, len(page.Orders))
		for _, o := range page.Orders {
			if !toDate.IsZero() {
				day, err := biznisweb.ParseOrderDate(o.PurDate)
				if err != nil {
					logger.Warn("skipping order with unparseable date", map[string]interface{}{
						"order_num": o.OrderNum,
						"pur_date":  o.PurDate,
					})
					continue
				}
				if day.After(toDate) {
					continue
				}
			}
			orders = append(orders, summarizeOrder(o))
		}

		return JSONResult(map[string]any{
			"orders":      orders,
			"count":       len(orders),
			"has_more":    page.PageInfo.HasNextPage,
			"total_pages": page.PageInfo.TotalPages,
		}), nil
	}

	return Registration{Tool: tool, Handler: handler}
}

// GetOrderTool returns the get_order registration: full detail for one order.
func GetOrderTool(api OrderAPI) Registration {
	tool := mcp.NewTool("get_order",
		mcp.WithDescription("Get detailed information about a specific order"),
		mcp.WithString("order_num",
			mcp.Required(),
			mcp.Description("Order number"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		orderNum := strings.TrimSpace(req.GetString("order_num", ""))
		if orderNum == "" {
			return ErrorResult("order_num is required"), nil
		}

		order, err := api.GetOrder(ctx, orderNum)
		if err != nil {
			if biznisweb.IsNotFound(err) {
				return ErrorResult(fmt.Sprintf("Order %s not found", orderNum)), nil
			}
			return ErrorResult(err.Error()), nil
		}

		return JSONResult(formatOrderDetail(order)), nil
	}

	return Registration{Tool: tool, Handler: handler}
}

func formatOrderDetail(order *biznisweb.OrderDetail) map[string]any {
	items := make([]map[string]any, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]any{
			"name":     item.Label,
			"ean":      item.EAN,
			"quantity": item.Quantity,
			"price":    item.Price.Formatted,
			"tax_rate": item.TaxRate,
		})
	}

	detail := map[string]any{
		"order_num":    order.OrderNum,
		"external_ref": order.ExternalRef,
		"date":         order.PurDate,
		"var_symb":     order.VarSymb,
		"last_change":  order.LastChange,
		"status":       order.Status.Name,
		"customer": map[string]any{
			"name":       order.Customer.DisplayName(),
			"email":      order.Customer.Email,
			"phone":      order.Customer.Phone,
			"company_id": order.Customer.CompanyID,
			"vat_id":     order.Customer.VatID,
		},
		"invoice_address":  formatAddress(order.InvoiceAddress),
		"delivery_address": formatAddress(order.DeliveryAddress),
		"items":            items,
		"total":            order.Sum.Formatted,
	}
	return detail
}

func formatAddress(a *biznisweb.Address) map[string]any {
	if a == nil {
		return nil
	}
	return map[string]any{
		"street":  a.Street,
		"city":    a.City,
		"zip":     a.Zip,
		"country": a.Country,
	}
}

// SearchOrdersTool returns the search_orders registration: substring match of
// the query against order number, customer name and email over the most
// recent orders.
func SearchOrdersTool(api OrderAPI, logger logging.Logger) Registration {
	tool := mcp.NewTool("search_orders",
		mcp.WithDescription("Search orders by customer or order number"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query (customer name or order number)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawQuery := strings.TrimSpace(req.GetString("query", ""))
		if rawQuery == "" {
			return ErrorResult("query is required"), nil
		}
		query := strings.ToLower(rawQuery)

		recent, err := fetchRecent(ctx, api, searchFetchLimit)
		if err != nil {
			return ErrorResult(err.Error()), nil
		}

		results := make([]orderSummary, 0, searchResultLimit)
		for _, o := range recent {
			if len(results) == searchResultLimit {
				break
			}
			if matchesOrder(o, query) {
				results = append(results, summarizeOrder(o))
			}
		}

		return JSONResult(map[string]any{
			"query":   rawQuery,
			"results": results,
			"count":   len(results),
		}), nil
	}

	return Registration{Tool: tool, Handler: handler}
}

// fetchRecent paginates the newest-first feed until max raw orders are
// collected or the feed ends.
func fetchRecent(ctx context.Context, api OrderAPI, max int) ([]biznisweb.Order, error) {
	var (
		orders []biznisweb.Order
		cursor string
	)
	for len(orders) < max {
		page, err := api.ListOrders(ctx, biznisweb.ListOrdersParams{Cursor: cursor})
		if err != nil {
			return nil, err
		}
		orders = append(orders, page.Orders...)
		if !page.PageInfo.HasNextPage || len(page.Orders) == 0 {
			break
		}
		cursor = page.PageInfo.NextCursor
	}
	if len(orders) > max {
		orders = orders[:max]
	}
	return orders, nil
}

func matchesOrder(o biznisweb.Order, query string) bool {
	if strings.Contains(strings.ToLower(o.OrderNum), query) {
		return true
	}
	if strings.Contains(strings.ToLower(o.Customer.DisplayName()), query) {
		return true
	}
	return strings.Contains(strings.ToLower(o.Customer.Email), query)
}

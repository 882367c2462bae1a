package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzeman/biznisweb-mcp-server/internal/biznisweb"
	"github.com/vzeman/biznisweb-mcp-server/internal/logging"
)

// fakeOrderAPI serves scripted pages and a single order detail, recording the
// parameters of every list call.
type fakeOrderAPI struct {
	pages      []biznisweb.OrderPage
	listCalls  []biznisweb.ListOrdersParams
	listErr    error
	detail     *biznisweb.OrderDetail
	detailErr  error
	lastLookup string
}

func (f *fakeOrderAPI) ListOrders(_ context.Context, p biznisweb.ListOrdersParams) (*biznisweb.OrderPage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	idx := len(f.listCalls)
	f.listCalls = append(f.listCalls, p)
	if idx >= len(f.pages) {
		return &biznisweb.OrderPage{}, nil
	}
	page := f.pages[idx]
	return &page, nil
}

func (f *fakeOrderAPI) GetOrder(_ context.Context, orderNum string) (*biznisweb.OrderDetail, error) {
	f.lastLookup = orderNum
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	return f.detail, nil
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the single text payload every handler produces.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "handlers always return text content")
	return text.Text
}

func decodeResult(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), v))
}

func errorPayload(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	var payload map[string]string
	decodeResult(t, res, &payload)
	require.Contains(t, payload, "error")
	return payload["error"]
}

func testOrder(num, date, status, email string, value string, items int) biznisweb.Order {
	return biznisweb.Order{
		OrderNum: num,
		PurDate:  date,
		Status:   biznisweb.OrderStatus{Name: status},
		Customer: biznisweb.Customer{Kind: biznisweb.CustomerEmailOnly, Email: email},
		Sum: biznisweb.Money{
			Value:    biznisweb.NewAmount(decimal.RequireFromString(value)),
			Currency: biznisweb.Currency{Code: "EUR"},
		},
		Items: make([]biznisweb.OrderItem, items),
	}
}

type listPayload struct {
	Orders []struct {
		OrderNum   string `json:"order_num"`
		Date       string `json:"date"`
		Customer   string `json:"customer"`
		Email      string `json:"email"`
		Status     string `json:"status"`
		Total      string `json:"total"`
		ItemsCount int    `json:"items_count"`
	} `json:"orders"`
	Count      int  `json:"count"`
	HasMore    bool `json:"has_more"`
	TotalPages int  `json:"total_pages"`
}

func TestListOrdersToolHappyPath(t *testing.T) {
	api := &fakeOrderAPI{pages: []biznisweb.OrderPage{{
		Orders: []biznisweb.Order{
			testOrder("2024001001", "2024-03-10T08:15:00", "Vybavená", "a@b.sk", "129.90", 2),
			testOrder("2024001000", "2024-03-09", "Odoslaná", "c@d.sk", "10", 1),
		},
		PageInfo: biznisweb.PageInfo{HasNextPage: true, TotalPages: 3},
	}}}
	reg := ListOrdersTool(api, logging.NoOpLogger{})

	res, err := reg.Handler(context.Background(), callRequest(nil))
	require.NoError(t, err)

	var payload listPayload
	decodeResult(t, res, &payload)

	assert.Equal(t, 2, payload.Count)
	assert.True(t, payload.HasMore)
	assert.Equal(t, 3, payload.TotalPages)
	require.Len(t, payload.Orders, 2)
	assert.Equal(t, "2024001001", payload.Orders[0].OrderNum)
	assert.Equal(t, "129.9 EUR", payload.Orders[0].Total)
	assert.Equal(t, "a@b.sk", payload.Orders[0].Email)
	assert.Equal(t, 2, payload.Orders[0].ItemsCount)
}

func TestListOrdersToolForwardsFilters(t *testing.T) {
	api := &fakeOrderAPI{pages: []biznisweb.OrderPage{{}}}
	reg := ListOrdersTool(api, logging.NoOpLogger{})

	_, err := reg.Handler(context.Background(), callRequest(map[string]any{
		"from_date": "2024-03-01",
		"status":    float64(5),
		"limit":     float64(10),
	}))
	require.NoError(t, err)

	require.Len(t, api.listCalls, 1)
	p := api.listCalls[0]
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), p.NewerFrom)
	require.NotNil(t, p.Status)
	assert.Equal(t, 5, *p.Status)
	assert.Equal(t, 10, p.Limit)
}

func TestListOrdersToolStatusAbsentStaysNil(t *testing.T) {
	api := &fakeOrderAPI{pages: []biznisweb.OrderPage{{}}}
	reg := ListOrdersTool(api, logging.NoOpLogger{})

	_, err := reg.Handler(context.Background(), callRequest(nil))
	require.NoError(t, err)

	require.Len(t, api.listCalls, 1)
	assert.Nil(t, api.listCalls[0].Status)
}

func TestListOrdersToolInvalidFromDate(t *testing.T) {
	api := &fakeOrderAPI{}
	reg := ListOrdersTool(api, logging.NoOpLogger{})

	res, err := reg.Handler(context.Background(), callRequest(map[string]any{
		"from_date": "01.03.2024",
	}))
	require.NoError(t, err)

	assert.Contains(t, errorPayload(t, res), "invalid from_date")
	assert.Empty(t, api.listCalls, "a rejected argument must not reach the API")
}

func TestListOrdersToolToDateFiltersClientSide(t *testing.T) {
	api := &fakeOrderAPI{pages: []biznisweb.OrderPage{{
		Orders: []biznisweb.Order{
			testOrder("A1", "2024-03-20", "Vybavená", "a@b.sk", "10", 1),
			testOrder("A2", "2024-03-10", "Vybavená", "a@b.sk", "10", 1),
		},
	}}}
	reg := ListOrdersTool(api, logging.NoOpLogger{})

	res, err := reg.Handler(context.Background(), callRequest(map[string]any{
		"to_date": "2024-03-15",
	}))
	require.NoError(t, err)

	var payload listPayload
	decodeResult(t, res, &payload)
	require.Equal(t, 1, payload.Count)
	assert.Equal(t, "A2", payload.Orders[0].OrderNum)
}

func TestListOrdersToolInvalidToDateIgnored(t *testing.T) {
	api := &fakeOrderAPI{pages: []biznisweb.OrderPage{{
		Orders: []biznisweb.Order{
			testOrder("A1", "2024-03-20", "Vybavená", "a@b.sk", "10", 1),
			testOrder("A2", "2024-03-10", "Vybavená", "a@b.sk", "10", 1),
		},
	}}}
	reg := ListOrdersTool(api, logging.NoOpLogger{})

	res, err := reg.Handler(context.Background(), callRequest(map[string]any{
		"to_date": "not-a-date",
	}))
	require.NoError(t, err)

	var payload listPayload
	decodeResult(t, res, &payload)
	assert.Equal(t, 2, payload.Count)
}

func TestListOrdersToolAPIFailure(t *testing.T) {
	api := &fakeOrderAPI{listErr: errors.New("request failed: connection refused")}
	reg := ListOrdersTool(api, logging.NoOpLogger{})

	res, err := reg.Handler(context.Background(), callRequest(nil))
	require.NoError(t, err, "failures are reported in the payload, never as handler errors")
	assert.Contains(t, errorPayload(t, res), "connection refused")
}

func TestGetOrderToolDetail(t *testing.T) {
	api := &fakeOrderAPI{detail: &biznisweb.OrderDetail{
		OrderNum: "2024001001",
		PurDate:  "2024-03-10T08:15:00",
		VarSymb:  "1001",
		Status:   biznisweb.OrderStatus{Name: "Vybavená"},
		Customer: biznisweb.Customer{
			Kind:        biznisweb.CustomerCompany,
			CompanyName: "ACME s.r.o.",
			Email:       "ceo@acme.sk",
		},
		InvoiceAddress: &biznisweb.Address{City: "Bratislava", Country: "SK"},
		Items: []biznisweb.OrderItem{
			{Label: "Widget", Quantity: json.Number("2")},
		},
		Sum: biznisweb.Money{Formatted: "129,90 €"},
	}}
	reg := GetOrderTool(api)

	res, err := reg.Handler(context.Background(), callRequest(map[string]any{
		"order_num": "2024001001",
	}))
	require.NoError(t, err)

	var payload map[string]any
	decodeResult(t, res, &payload)

	assert.Equal(t, "2024001001", api.lastLookup)
	assert.Equal(t, "2024001001", payload["order_num"])
	assert.Equal(t, "Vybavená", payload["status"])
	assert.Equal(t, "129,90 €", payload["total"])

	customer := payload["customer"].(map[string]any)
	assert.Equal(t, "ACME s.r.o.", customer["name"])

	invoice := payload["invoice_address"].(map[string]any)
	assert.Equal(t, "Bratislava", invoice["city"])
	assert.Nil(t, payload["delivery_address"])

	items := payload["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Widget", items[0].(map[string]any)["name"])
}

func TestGetOrderToolNotFound(t *testing.T) {
	api := &fakeOrderAPI{detailErr: &biznisweb.APIError{
		Op:  "biznisweb.GetOrder",
		Err: biznisweb.ErrOrderNotFound,
	}}
	reg := GetOrderTool(api)

	res, err := reg.Handler(context.Background(), callRequest(map[string]any{
		"order_num": "9999",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Order 9999 not found", errorPayload(t, res))
}

func TestGetOrderToolMissingOrderNum(t *testing.T) {
	reg := GetOrderTool(&fakeOrderAPI{})

	res, err := reg.Handler(context.Background(), callRequest(map[string]any{
		"order_num": "   ",
	}))
	require.NoError(t, err)
	assert.Equal(t, "order_num is required", errorPayload(t, res))
}

type searchPayload struct {
	Query   string `json:"query"`
	Results []struct {
		OrderNum string `json:"order_num"`
		Email    string `json:"email"`
	} `json:"results"`
	Count int `json:"count"`
}

func TestSearchOrdersToolMatches(t *testing.T) {
	person := testOrder("2024001002", "2024-03-09", "Vybavená", "jana@example.com", "10", 1)
	person.Customer = biznisweb.Customer{
		Kind:    biznisweb.CustomerPerson,
		Name:    "Jana",
		Surname: "Nováková",
		Email:   "jana@example.com",
	}

	api := &fakeOrderAPI{pages: []biznisweb.OrderPage{{
		Orders: []biznisweb.Order{
			testOrder("2024001001", "2024-03-10", "Vybavená", "other@example.com", "10", 1),
			person,
		},
	}}}
	reg := SearchOrdersTool(api, logging.NoOpLogger{})

	res, err := reg.Handler(context.Background(), callRequest(map[string]any{
		"query": "NOVÁK",
	}))
	require.NoError(t, err)

	var payload searchPayload
	decodeResult(t, res, &payload)
	assert.Equal(t, "NOVÁK", payload.Query)
	require.Equal(t, 1, payload.Count)
	assert.Equal(t, "2024001002", payload.Results[0].OrderNum)
}

func TestSearchOrdersToolPaginatesAndCaps(t *testing.T) {
	// Four pages of 30 matching orders: the scan stops once 100 raw orders
	// are collected, and only the first 20 matches are returned.
	var pages []biznisweb.OrderPage
	for p := 0; p < 5; p++ {
		orders := make([]biznisweb.Order, 0, 30)
		for i := 0; i < 30; i++ {
			orders = append(orders, testOrder(
				fmt.Sprintf("ORD-%d", p*30+i), "2024-03-10", "Vybavená", "x@y.sk", "1", 1))
		}
		pages = append(pages, biznisweb.OrderPage{
			Orders:   orders,
			PageInfo: biznisweb.PageInfo{HasNextPage: true, NextCursor: fmt.Sprintf("c%d", p+1)},
		})
	}
	api := &fakeOrderAPI{pages: pages}
	reg := SearchOrdersTool(api, logging.NoOpLogger{})

	res, err := reg.Handler(context.Background(), callRequest(map[string]any{
		"query": "ord-",
	}))
	require.NoError(t, err)

	var payload searchPayload
	decodeResult(t, res, &payload)
	assert.Equal(t, 20, payload.Count)
	assert.Len(t, api.listCalls, 4, "scan must stop at the raw fetch limit")
	assert.Equal(t, "c1", api.listCalls[1].Cursor)
}

func TestSearchOrdersToolEmptyQuery(t *testing.T) {
	reg := SearchOrdersTool(&fakeOrderAPI{}, logging.NoOpLogger{})

	res, err := reg.Handler(context.Background(), callRequest(map[string]any{
		"query": "",
	}))
	require.NoError(t, err)
	assert.Equal(t, "query is required", errorPayload(t, res))
}

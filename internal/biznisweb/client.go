// Package biznisweb is the typed client for the BizniWeb GraphQL API.
//
// Each exported method executes one fixed operation document with a bag of
// named variables and decodes the response into an explicit result struct at
// this boundary, so the rest of the server never touches loose maps.
package biznisweb

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/machinebox/graphql"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vzeman/biznisweb-mcp-server/internal/config"
	"github.com/vzeman/biznisweb-mcp-server/internal/logging"
)

const (
	// orderByPurchaseDate is the only sort key the order tools use.
	orderByPurchaseDate = "pur_date"
	// sortDescending yields newest-first feeds, which the statistics
	// aggregator's early-stop relies on.
	sortDescending = "DESC"

	// newerFromLayout is how the API expects DateTime lower bounds.
	newerFromLayout = "2006-01-02T15:04:05"
)

// Client executes BizniWeb GraphQL operations over a shared authenticated
// HTTP connection. Safe for concurrent use.
type Client struct {
	gql    *graphql.Client
	token  string
	logger logging.Logger
}

// NewClient builds a client from the resolved configuration. A missing token
// is not an error here; it is checked lazily on each call, before any network
// attempt, matching the platform's observed credential handling.
func NewClient(cfg *config.Config, logger logging.Logger) *Client {
	httpClient := &http.Client{
		Timeout: cfg.API.Timeout,
		Transport: otelhttp.NewTransport(&http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}),
	}

	gql := graphql.NewClient(cfg.API.URL, graphql.WithHTTPClient(httpClient))
	// The library logs query bodies through this hook; keep them at debug.
	gql.Log = func(s string) {
		logger.Debug("graphql client", map[string]interface{}{"detail": s})
	}

	return &Client{
		gql:    gql,
		token:  cfg.API.Token,
		logger: logger,
	}
}

// ListOrdersParams are the variables of the order list operation.
type ListOrdersParams struct {
	// NewerFrom, when non-zero, is passed as a lower-bound purchase date
	// hint. The API has no upper-bound parameter; callers filter the upper
	// end client-side.
	NewerFrom time.Time
	// Status, when non-nil, filters by numeric status id.
	Status *int
	// Limit is the page size. The API caps it at 30.
	Limit int
	// Cursor is the opaque pagination token from the previous page.
	Cursor string
}

// orderParams mirrors the API's OrderParams input object.
type orderParams struct {
	Limit   int    `json:"limit"`
	OrderBy string `json:"order_by"`
	Sort    string `json:"sort"`
	Cursor  string `json:"cursor,omitempty"`
}

// ListOrders fetches one page of orders sorted by purchase date descending.
func (c *Client) ListOrders(ctx context.Context, p ListOrdersParams) (*OrderPage, error) {
	if c.token == "" {
		return nil, &APIError{Op: "biznisweb.ListOrders", Err: ErrMissingAPIToken}
	}

	limit := p.Limit
	if limit <= 0 || limit > config.DefaultPageSize {
		limit = config.DefaultPageSize
	}

	req := c.newRequest(orderListQuery)
	req.Var("params", orderParams{
		Limit:   limit,
		OrderBy: orderByPurchaseDate,
		Sort:    sortDescending,
		Cursor:  p.Cursor,
	})
	if !p.NewerFrom.IsZero() {
		req.Var("newer_from", p.NewerFrom.Format(newerFromLayout))
	}
	if p.Status != nil {
		req.Var("status", *p.Status)
	}

	var resp struct {
		GetOrderList OrderPage `json:"getOrderList"`
	}
	start := time.Now()
	if err := c.gql.Run(ctx, req, &resp); err != nil {
		c.logger.Error("order list query failed", map[string]interface{}{
			"error":  err.Error(),
			"cursor": p.Cursor,
		})
		return nil, &APIError{Op: "biznisweb.ListOrders", Err: wrapRequest(err)}
	}

	c.logger.Debug("order list page fetched", map[string]interface{}{
		"orders":        len(resp.GetOrderList.Orders),
		"has_next_page": resp.GetOrderList.PageInfo.HasNextPage,
		"latency":       time.Since(start).String(),
	})
	return &resp.GetOrderList, nil
}

// GetOrder fetches one order by its order number. An order absent from the
// response is a normal result and surfaces as ErrOrderNotFound, distinct
// from transport failures.
func (c *Client) GetOrder(ctx context.Context, orderNum string) (*OrderDetail, error) {
	if c.token == "" {
		return nil, &APIError{Op: "biznisweb.GetOrder", Err: ErrMissingAPIToken}
	}

	req := c.newRequest(orderDetailQuery)
	req.Var("orderNum", orderNum)

	var resp struct {
		GetOrder *OrderDetail `json:"getOrder"`
	}
	if err := c.gql.Run(ctx, req, &resp); err != nil {
		c.logger.Error("order detail query failed", map[string]interface{}{
			"error":     err.Error(),
			"order_num": orderNum,
		})
		return nil, &APIError{Op: "biznisweb.GetOrder", Err: wrapRequest(err)}
	}
	if resp.GetOrder == nil {
		return nil, &APIError{Op: "biznisweb.GetOrder", Err: ErrOrderNotFound}
	}
	return resp.GetOrder, nil
}

func (c *Client) newRequest(doc string) *graphql.Request {
	req := graphql.NewRequest(doc)
	req.Header.Set("BW-API-Key", "Token "+c.token)
	return req
}

// wrapRequest tags any transport or GraphQL-level failure with the
// ErrRequestFailed sentinel so callers can classify it.
func wrapRequest(err error) error {
	return fmt.Errorf("%w: %v", ErrRequestFailed, err)
}

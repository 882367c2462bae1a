package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vzeman/biznisweb-mcp-server/internal/stats"
)

// StatisticsAggregator is the slice of the stats package this tool needs.
type StatisticsAggregator interface {
	ResolveWindow(fromDate, toDate string) (stats.Window, error)
	Aggregate(ctx context.Context, w stats.Window) (*stats.Report, error)
}

// statisticsError is the structured failure payload of order_statistics: the
// error plus whatever window had been resolved before the fetch failed.
type statisticsError struct {
	Error  string       `json:"error"`
	Period stats.Period `json:"period"`
}

// OrderStatisticsTool returns the order_statistics registration.
func OrderStatisticsTool(agg StatisticsAggregator) Registration {
	tool := mcp.NewTool("order_statistics",
		mcp.WithDescription("Get order statistics for a date range"),
		mcp.WithString("from_date",
			mcp.Description("From date in YYYY-MM-DD format"),
		),
		mcp.WithString("to_date",
			mcp.Description("To date in YYYY-MM-DD format"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		window, err := agg.ResolveWindow(
			req.GetString("from_date", ""),
			req.GetString("to_date", ""),
		)
		if err != nil {
			return ErrorResult(err.Error()), nil
		}

		report, err := agg.Aggregate(ctx, window)
		if err != nil {
			return JSONResult(statisticsError{
				Error:  fmt.Sprintf("Failed to fetch orders: %v", err),
				Period: window.Period(),
			}), nil
		}

		return JSONResult(report), nil
	}

	return Registration{Tool: tool, Handler: handler}
}

package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzeman/biznisweb-mcp-server/internal/stats"
)

type fakeAggregator struct {
	window     stats.Window
	resolveErr error
	report     *stats.Report
	aggErr     error

	resolvedFrom string
	resolvedTo   string
	aggregated   *stats.Window
}

func (f *fakeAggregator) ResolveWindow(fromDate, toDate string) (stats.Window, error) {
	f.resolvedFrom = fromDate
	f.resolvedTo = toDate
	if f.resolveErr != nil {
		return stats.Window{}, f.resolveErr
	}
	return f.window, nil
}

func (f *fakeAggregator) Aggregate(_ context.Context, w stats.Window) (*stats.Report, error) {
	f.aggregated = &w
	if f.aggErr != nil {
		return nil, f.aggErr
	}
	return f.report, nil
}

func marchWindow() stats.Window {
	return stats.Window{
		From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestOrderStatisticsToolSuccess(t *testing.T) {
	w := marchWindow()
	agg := &fakeAggregator{
		window: w,
		report: &stats.Report{
			Period: w.Period(),
			Summary: stats.Summary{
				TotalOrders:       3,
				ValidOrders:       2,
				ExcludedOrders:    1,
				TotalRevenue:      150.0,
				TotalItems:        4,
				AverageOrderValue: 75.0,
			},
			StatusBreakdown:  map[string]int{"Vybavená": 2},
			DailyStats:       map[string]stats.DayStats{},
			ExcludedStatuses: []string{"Storno"},
		},
	}
	reg := OrderStatisticsTool(agg)

	res, err := reg.Handler(context.Background(), callRequest(map[string]any{
		"from_date": "2024-03-01",
		"to_date":   "2024-03-15",
	}))
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", agg.resolvedFrom)
	assert.Equal(t, "2024-03-15", agg.resolvedTo)
	require.NotNil(t, agg.aggregated)
	assert.Equal(t, w, *agg.aggregated)

	var decoded stats.Report
	decodeResult(t, res, &decoded)
	assert.Equal(t, *agg.report, decoded)
}

func TestOrderStatisticsToolInvalidWindow(t *testing.T) {
	agg := &fakeAggregator{resolveErr: errors.New(`invalid from_date "bad": expected YYYY-MM-DD`)}
	reg := OrderStatisticsTool(agg)

	res, err := reg.Handler(context.Background(), callRequest(map[string]any{
		"from_date": "bad",
	}))
	require.NoError(t, err)

	assert.Contains(t, errorPayload(t, res), "invalid from_date")
	assert.Nil(t, agg.aggregated, "no aggregation on a rejected window")
}

func TestOrderStatisticsToolFetchFailureEchoesPeriod(t *testing.T) {
	agg := &fakeAggregator{
		window: marchWindow(),
		aggErr: errors.New("fetch orders: request failed: connection refused"),
	}
	reg := OrderStatisticsTool(agg)

	res, err := reg.Handler(context.Background(), callRequest(nil))
	require.NoError(t, err)

	var payload struct {
		Error  string       `json:"error"`
		Period stats.Period `json:"period"`
	}
	decodeResult(t, res, &payload)
	assert.Contains(t, payload.Error, "Failed to fetch orders")
	assert.Contains(t, payload.Error, "connection refused")
	assert.Equal(t, stats.Period{From: "2024-03-01", To: "2024-03-15"}, payload.Period)
}

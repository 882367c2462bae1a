package stats

import "time"

// dateLayout is the calendar-date form used for window bounds, period echoes
// and daily bucket keys.
const dateLayout = "2006-01-02"

// Window is the inclusive calendar-date range statistics are computed over.
// Both bounds are truncated to day granularity.
type Window struct {
	From time.Time
	To   time.Time
}

// Period renders the window for the report echo.
func (w Window) Period() Period {
	return Period{
		From: w.From.Format(dateLayout),
		To:   w.To.Format(dateLayout),
	}
}

// Period is the report's echo of the resolved window.
type Period struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Report is the aggregator's output, serialized once per call and discarded.
type Report struct {
	Period           Period              `json:"period"`
	Summary          Summary             `json:"summary"`
	StatusBreakdown  map[string]int      `json:"status_breakdown"`
	DailyStats       map[string]DayStats `json:"daily_stats"`
	ExcludedStatuses []string            `json:"excluded_statuses"`

	// Partial marks a result truncated by the fetch safety ceiling. It is
	// still a normal, non-error result.
	Partial bool `json:"partial,omitempty"`
}

// Summary holds the window-wide totals. ValidOrders + ExcludedOrders always
// equals TotalOrders.
type Summary struct {
	TotalOrders       int     `json:"total_orders"`
	ValidOrders       int     `json:"valid_orders"`
	ExcludedOrders    int     `json:"excluded_orders"`
	TotalRevenue      float64 `json:"total_revenue"`
	TotalItems        int     `json:"total_items"`
	AverageOrderValue float64 `json:"average_order_value"`
}

// DayStats is one calendar day's bucket. A bucket exists only when at least
// one valid order fell on that day.
type DayStats struct {
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
	Items   int     `json:"items"`
}

// Package stats computes order statistics over a calendar-date window by
// paginating the remote order feed and folding pages into per-day and
// per-status aggregates client-side.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vzeman/biznisweb-mcp-server/internal/biznisweb"
	"github.com/vzeman/biznisweb-mcp-server/internal/config"
	"github.com/vzeman/biznisweb-mcp-server/internal/logging"
)

// defaultWindowDays is the trailing default window when the caller supplies
// no date range.
const defaultWindowDays = 30

// unknownStatus is the breakdown key for orders whose status carries no
// display name.
const unknownStatus = "Unknown"

// OrderSource supplies pages of orders newest-first. *biznisweb.Client
// satisfies it.
type OrderSource interface {
	ListOrders(ctx context.Context, p biznisweb.ListOrdersParams) (*biznisweb.OrderPage, error)
}

// Aggregator drives the pagination loop and accumulation. One Aggregate call
// runs strictly sequentially with a single outstanding page request; the
// aggregator itself holds no per-call state and is safe for concurrent use.
type Aggregator struct {
	source       OrderSource
	logger       logging.Logger
	pageSize     int
	maxFetched   int
	excluded     map[string]bool
	excludedList []string
	now          func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithPageSize sets the page size requested from the order feed.
func WithPageSize(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.pageSize = n
		}
	}
}

// WithMaxFetched sets the safety ceiling on raw fetched orders. Hitting it
// produces a partial result, not an error.
func WithMaxFetched(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxFetched = n
		}
	}
}

// WithExcludedStatuses replaces the status exclusion set.
func WithExcludedStatuses(statuses []string) Option {
	return func(a *Aggregator) {
		a.setExcluded(statuses)
	}
}

// WithClock overrides the time source used for default window resolution.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// New builds an Aggregator over the given order source.
func New(source OrderSource, logger logging.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		source:     source,
		logger:     logger,
		pageSize:   config.DefaultPageSize,
		maxFetched: config.DefaultMaxFetched,
		now:        time.Now,
	}
	a.setExcluded(config.DefaultExcludedStatuses)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) setExcluded(statuses []string) {
	a.excludedList = append([]string(nil), statuses...)
	a.excluded = make(map[string]bool, len(statuses))
	for _, s := range statuses {
		a.excluded[s] = true
	}
}

// ResolveWindow turns optional YYYY-MM-DD bounds into a concrete inclusive
// window. Absent bounds default to the trailing 30 days ending now, computed
// at call time.
func (a *Aggregator) ResolveWindow(fromDate, toDate string) (Window, error) {
	today := truncateDay(a.now())
	w := Window{From: today.AddDate(0, 0, -defaultWindowDays), To: today}

	if fromDate != "" {
		t, err := time.Parse(dateLayout, fromDate)
		if err != nil {
			return Window{}, fmt.Errorf("invalid from_date %q: expected YYYY-MM-DD", fromDate)
		}
		w.From = t
	}
	if toDate != "" {
		t, err := time.Parse(dateLayout, toDate)
		if err != nil {
			return Window{}, fmt.Errorf("invalid to_date %q: expected YYYY-MM-DD", toDate)
		}
		w.To = t
	}
	return w, nil
}

// Aggregate fetches every order inside the window and folds it into a
// statistics report.
//
// The loop requests pages sorted by purchase date descending and stops at the
// first order older than the window start: in a descending feed no later
// order can be in range. The feed being strictly sorted is an assumption, not
// something this code defends against; an unsorted feed silently truncates
// the result.
func (a *Aggregator) Aggregate(ctx context.Context, w Window) (*Report, error) {
	a.logger.Info("aggregating order statistics", map[string]interface{}{
		"from": w.From.Format(dateLayout),
		"to":   w.To.Format(dateLayout),
	})

	var (
		buffered     []biznisweb.Order
		cursor       string
		totalFetched int
		done         bool
		partial      bool
	)

	for {
		page, err := a.source.ListOrders(ctx, biznisweb.ListOrdersParams{
			NewerFrom: w.From,
			Limit:     a.pageSize,
			Cursor:    cursor,
		})
		if err != nil {
			return nil, fmt.Errorf("fetch orders: %w", err)
		}

		for _, order := range page.Orders {
			day, err := biznisweb.ParseOrderDate(order.PurDate)
			if err != nil {
				a.logger.Warn("skipping order with unparseable date", map[string]interface{}{
					"order_num": order.OrderNum,
					"pur_date":  order.PurDate,
					"error":     err.Error(),
				})
				continue
			}
			if day.Before(w.From) {
				// Everything after this order in a descending feed
				// is older still; this order itself is out of range.
				done = true
				break
			}
			if day.After(w.To) {
				// Too recent. Older in-range orders may still follow
				// in this same page, so keep scanning.
				continue
			}
			buffered = append(buffered, order)
		}

		totalFetched += len(page.Orders)
		if totalFetched > a.maxFetched {
			a.logger.Warn("fetch ceiling reached, returning partial statistics", map[string]interface{}{
				"total_fetched": totalFetched,
				"ceiling":       a.maxFetched,
			})
			partial = true
			break
		}
		if done || !page.PageInfo.HasNextPage {
			break
		}
		cursor = page.PageInfo.NextCursor
	}

	report := a.fold(buffered, w)
	report.Partial = partial

	a.logger.Info("order statistics computed", map[string]interface{}{
		"total_orders":  report.Summary.TotalOrders,
		"valid_orders":  report.Summary.ValidOrders,
		"total_revenue": report.Summary.TotalRevenue,
		"total_fetched": totalFetched,
		"partial":       partial,
	})
	return report, nil
}

// dayAccum carries one day's running totals during the fold.
type dayAccum struct {
	orders  int
	items   int
	revenue decimal.Decimal
}

// fold accumulates the buffered in-window orders into a report. Orders with
// an excluded status count toward the total but contribute nothing else.
func (a *Aggregator) fold(orders []biznisweb.Order, w Window) *Report {
	var (
		revenue      = decimal.Zero
		totalItems   int
		validOrders  int
		statusCounts = make(map[string]int)
		days         = make(map[string]*dayAccum)
	)

	for _, order := range orders {
		statusName := order.Status.Name
		if a.excluded[statusName] {
			continue
		}

		value := order.Sum.Value
		if !value.Valid() {
			a.logger.Warn("order has non-numeric value, counting as zero", map[string]interface{}{
				"order_num": order.OrderNum,
			})
		}
		amount := value.Decimal()

		revenue = revenue.Add(amount)
		validOrders++

		items := len(order.Items)
		totalItems += items

		if statusName == "" {
			statusName = unknownStatus
		}
		statusCounts[statusName]++

		day, err := biznisweb.ParseOrderDate(order.PurDate)
		if err != nil {
			// The scan phase only buffers parseable dates.
			continue
		}
		key := day.Format(dateLayout)
		bucket, ok := days[key]
		if !ok {
			bucket = &dayAccum{}
			days[key] = bucket
		}
		bucket.orders++
		bucket.items += items
		bucket.revenue = bucket.revenue.Add(amount)
	}

	daily := make(map[string]DayStats, len(days))
	for key, bucket := range days {
		daily[key] = DayStats{
			Orders:  bucket.orders,
			Revenue: bucket.revenue.Round(2).InexactFloat64(),
			Items:   bucket.items,
		}
	}

	average := 0.0
	if validOrders > 0 {
		average = revenue.Div(decimal.NewFromInt(int64(validOrders))).Round(2).InexactFloat64()
	}

	return &Report{
		Period: w.Period(),
		Summary: Summary{
			TotalOrders:       len(orders),
			ValidOrders:       validOrders,
			ExcludedOrders:    len(orders) - validOrders,
			TotalRevenue:      revenue.Round(2).InexactFloat64(),
			TotalItems:        totalItems,
			AverageOrderValue: average,
		},
		StatusBreakdown:  statusCounts,
		DailyStats:       daily,
		ExcludedStatuses: a.excludedList,
	}
}

// truncateDay maps an instant to the UTC midnight of its calendar day, the
// same representation ParseOrderDate and ResolveWindow produce, so window
// comparisons are always between calendar days.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

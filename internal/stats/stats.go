// Package stats derives the dashboard's headline numbers from the live
// order view. Plain aggregation over server-supplied amounts; nothing here
// recomputes prices.
package stats

import (
	"math"
	"time"

	"github.com/codehasanali/rafine-web/internal/upstream"
)

type Summary struct {
	TotalRevenue   float64 `json:"totalRevenue"`
	TotalOrders    int     `json:"totalOrders"`
	TotalCustomers int     `json:"totalCustomers"`

	PeriodRevenue         float64 `json:"periodRevenue"`
	PeriodOrders          int     `json:"periodOrders"`
	PreviousPeriodRevenue float64 `json:"previousPeriodRevenue"`
	PreviousPeriodOrders  int     `json:"previousPeriodOrders"`

	// GrowthRate compares period revenue against the preceding period,
	// in percent with one decimal. A zero comparison base reads as 100.
	GrowthRate float64 `json:"growthRate"`
}

// Summarize aggregates orders into a Summary. The period window ends at now;
// the comparison window is the period immediately before it. Cancelled
// orders never count toward revenue.
func Summarize(orders []upstream.Order, now time.Time, period time.Duration) Summary {
	periodStart := now.Add(-period)
	previousStart := now.Add(-2 * period)

	var summary Summary
	customers := make(map[string]struct{})

	for _, order := range orders {
		summary.TotalOrders++
		if order.User.ID != "" {
			customers[order.User.ID] = struct{}{}
		}
		if order.Status == upstream.StatusCancelled {
			continue
		}

		summary.TotalRevenue += order.FinalAmount

		switch {
		case !order.CreatedAt.Before(periodStart):
			summary.PeriodRevenue += order.FinalAmount
			summary.PeriodOrders++
		case !order.CreatedAt.Before(previousStart):
			summary.PreviousPeriodRevenue += order.FinalAmount
			summary.PreviousPeriodOrders++
		}
	}

	summary.TotalCustomers = len(customers)
	summary.GrowthRate = growthRate(summary.PeriodRevenue, summary.PreviousPeriodRevenue)
	return summary
}

func growthRate(current, previous float64) float64 {
	if previous == 0 {
		return 100
	}
	rate := (current - previous) / previous * 100
	return math.Round(rate*10) / 10
}

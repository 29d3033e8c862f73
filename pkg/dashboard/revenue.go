package dashboard

import (
	"context"
	"fmt"

	"github.com/anagilla/retail-lakehouse-demo/pkg/dataset"
	"github.com/anagilla/retail-lakehouse-demo/pkg/markdown"
	"github.com/anagilla/retail-lakehouse-demo/pkg/query"
)

// RevenueByMonth returns monthly revenue grouped by month and region.
// Region "ALL" or blank applies no region constraint; the month bounds
// are each optional and inclusive. The summary totals the revenue column
// over the returned rows.
func (s *Service) RevenueByMonth(ctx context.Context, region, startMonth, endMonth string) (string, *query.ResultSet) {
	desc, err := s.builder.Build(dataset.MonthlySales, query.FilterSet{
		"region":      region,
		"start_month": startMonth,
		"end_month":   endMonth,
	}, query.SortSpec{}, 0)
	if err != nil {
		return err.Error(), emptyResult()
	}

	outcome := s.run(ctx, desc)
	if outcome.Failed() {
		return failureSummary(outcome.Err), emptyResult()
	}
	rs := outcome.Result

	var total float64
	for i := range rs.Rows {
		if v, ok := query.AsFloat(rs.Value(i, "net_revenue")); ok {
			total += v
		}
	}
	summary := fmt.Sprintf("**Total Revenue**: %s  |  **Rows**: %d",
		markdown.MoneyWhole(total), rs.Count())
	return summary, rs
}

package dashboard

import (
	"context"
	"fmt"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/anagilla/retail-lakehouse-demo/pkg/dataset"
	"github.com/anagilla/retail-lakehouse-demo/pkg/markdown"
	"github.com/anagilla/retail-lakehouse-demo/pkg/query"
)

// ExecutiveSummary returns the quarterly KPI trend, oldest quarter
// first. The summary highlights the most recent quarter when rows exist.
func (s *Service) ExecutiveSummary(ctx context.Context) (string, *query.ResultSet) {
	desc, err := s.builder.Build(dataset.ExecutiveSummary, nil, query.SortSpec{}, 0)
	if err != nil {
		return err.Error(), emptyResult()
	}

	outcome := s.run(ctx, desc)
	if outcome.Failed() {
		return failureSummary(outcome.Err), emptyResult()
	}
	rs := outcome.Result

	summary := "## Executive KPIs"
	if highlights := latestQuarterHighlights(rs); highlights != "" {
		summary += "\n\n" + highlights
	}
	return summary, rs
}

// latestQuarterHighlights summarizes the last row of the quarterly
// trend, or returns "" when there is nothing to highlight.
func latestQuarterHighlights(rs *query.ResultSet) string {
	if rs.Empty() {
		return ""
	}
	last := rs.Count() - 1

	var parts []string
	if orders, ok := query.AsInt(rs.Value(last, "total_orders")); ok {
		parts = append(parts, humanize.Comma(orders)+" orders")
	}
	if revenue, ok := query.AsFloat(rs.Value(last, "gross_order_value")); ok {
		parts = append(parts, markdown.MoneyWhole(revenue)+" gross order value")
	}
	if growth, ok := query.AsFloat(rs.Value(last, "qoq_revenue_growth_pct")); ok {
		parts = append(parts, markdown.Percent(growth)+" QoQ revenue growth")
	}
	if len(parts) == 0 {
		return ""
	}

	quarter := query.AsString(rs.Value(last, "year_quarter"))
	return fmt.Sprintf("Latest quarter %s: %s.", quarter, strings.Join(parts, ", "))
}

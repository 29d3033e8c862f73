package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/anagilla/retail-lakehouse-demo/pkg/dataset"
	"github.com/anagilla/retail-lakehouse-demo/pkg/markdown"
	"github.com/anagilla/retail-lakehouse-demo/pkg/query"
)

// invalidCustomerID is shown when the raw ID does not parse. No query is
// issued in that case.
const invalidCustomerID = "Enter a valid customer ID (integer)."

// ChurnScore is the optional churn enrichment attached to a customer
// profile when the churn dataset knows the customer.
type ChurnScore struct {
	// Probability is a fraction of one, e.g. 0.125 for 12.5%.
	Probability float64
	RiskTier    string
}

// CustomerLookup resolves one customer profile by its raw ID string. The
// summary carries the profile as a markdown attribute table; the result
// set carries the full row for tabular display.
func (s *Service) CustomerLookup(ctx context.Context, rawID string) (string, *query.ResultSet) {
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil {
		return invalidCustomerID, emptyResult()
	}

	desc, err := s.builder.Build(dataset.CustomerProfile, query.FilterSet{
		filterCustomerID: strconv.FormatInt(id, 10),
	}, query.SortSpec{}, 0)
	if err != nil {
		return err.Error(), emptyResult()
	}

	outcome := s.run(ctx, desc)
	if outcome.Failed() {
		return failureSummary(outcome.Err), emptyResult()
	}
	rs := outcome.Result
	if rs.Empty() {
		return fmt.Sprintf("Customer %d not found.", id), rs
	}

	summary := customerSummary(rs)
	if churn := s.churnScore(ctx, id); churn != nil {
		summary += fmt.Sprintf("\n| **Churn Risk** | %s (%s) |",
			markdown.Percent(churn.Probability*100), churn.RiskTier)
	}
	return summary, rs
}

// churnScore fetches the churn enrichment for a customer key. Absence,
// validation failure, and executor failure all yield nil; the profile
// renders without the churn row.
func (s *Service) churnScore(ctx context.Context, id int64) *ChurnScore {
	desc, err := s.builder.Build(dataset.ChurnScores, query.FilterSet{
		filterCustomerID: strconv.FormatInt(id, 10),
	}, query.SortSpec{}, 0)
	if err != nil {
		return nil
	}

	outcome := s.run(ctx, desc)
	if outcome.Failed() {
		slog.Debug("dashboard: churn enrichment unavailable",
			"customer_key", id, slogKeyError, outcome.Err)
		return nil
	}
	rs := outcome.Result
	if rs.Empty() {
		return nil
	}

	probability, ok := query.AsFloat(rs.Value(0, "churn_probability"))
	if !ok {
		return nil
	}
	return &ChurnScore{
		Probability: probability,
		RiskTier:    query.AsString(rs.Value(0, "risk_tier")),
	}
}

// customerSummary renders the profile heading and attribute table from
// the first row. RFM columns may be null for customers with no orders;
// those cells render blank.
func customerSummary(rs *query.ResultSet) string {
	get := func(column string) string { return markdown.Cell(rs.Value(0, column)) }

	var b strings.Builder
	fmt.Fprintf(&b, "## Customer #%s — %s\n\n", get("customer_key"), get("customer_name"))
	b.WriteString("| Attribute | Value |\n")
	b.WriteString("|---|---|\n")

	attr := func(label, value string) {
		fmt.Fprintf(&b, "| **%s** | %s |\n", label, value)
	}
	attr("Segment", get("market_segment"))
	attr("Region", fmt.Sprintf("%s (%s)", get("region_name"), get("nation_name")))
	attr("Balance Tier", get("balance_tier"))
	attr("RFM Segment", get("rfm_segment"))
	attr("RFM Score", fmt.Sprintf("%s (R:%s F:%s M:%s)",
		get("rfm_score"), get("r_score"), get("f_score"), get("m_score")))
	attr("Lifetime Value", moneyCell(rs.Value(0, "lifetime_value")))
	attr("Total Orders", get("total_orders"))
	attr("Avg Order Value", moneyCell(rs.Value(0, "avg_order_value")))
	attr("Recency (days)", get("recency_days"))

	return strings.TrimRight(b.String(), "\n")
}

// moneyCell formats a numeric cell as dollars and cents, or blank when
// the cell is null.
func moneyCell(v any) string {
	f, ok := query.AsFloat(v)
	if !ok {
		return ""
	}
	return markdown.Money(f)
}

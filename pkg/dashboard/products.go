package dashboard

import (
	"context"
	"fmt"

	"github.com/anagilla/retail-lakehouse-demo/pkg/dataset"
	"github.com/anagilla/retail-lakehouse-demo/pkg/query"
)

// defaultProductSort orders product groups when the caller names no
// sort column.
const defaultProductSort = "net_revenue"

// TopProducts returns the best product groups by one of the sortable
// metrics, descending. topN falls back to the dataset default when zero
// and is clamped to the dataset's limit range.
func (s *Service) TopProducts(ctx context.Context, sortBy string, topN int) (string, *query.ResultSet) {
	if sortBy == "" {
		sortBy = defaultProductSort
	}

	desc, err := s.builder.Build(dataset.ProductPerformance, nil,
		query.SortSpec{Column: sortBy, Descending: true}, topN)
	if err != nil {
		return err.Error(), emptyResult()
	}

	outcome := s.run(ctx, desc)
	if outcome.Failed() {
		return failureSummary(outcome.Err), emptyResult()
	}

	summary := fmt.Sprintf("**Top %d product groups by %s**", desc.Limit(), sortBy)
	return summary, outcome.Result
}

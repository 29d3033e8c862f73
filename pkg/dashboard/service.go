// Package dashboard implements the read-only analytics operations behind
// the dashboard surfaces. Each operation validates its inputs through the
// query builder, runs at most the queries it names, and returns a
// displayable markdown summary next to the tabular result. Operations
// never return errors for query or validation problems; those become the
// summary text so every caller state renders.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/anagilla/retail-lakehouse-demo/pkg/query"
)

const slogKeyError = "error"

// filterCustomerID names the customer key filter shared by the profile
// and churn datasets.
const filterCustomerID = "customer_id"

// Executor runs built descriptors against the warehouse.
type Executor interface {
	Execute(ctx context.Context, desc *query.Descriptor, timeout time.Duration) query.Outcome
}

// Service exposes the dashboard operations. It holds no per-call state;
// methods are safe to call concurrently.
type Service struct {
	builder  *query.Builder
	executor Executor
	timeout  time.Duration
}

// New creates a dashboard service. A zero timeout defers to the
// executor's own default.
func New(builder *query.Builder, executor Executor, timeout time.Duration) *Service {
	return &Service{
		builder:  builder,
		executor: executor,
		timeout:  timeout,
	}
}

// Builder exposes the underlying query builder, which carries the
// dataset registry for listing surfaces.
func (s *Service) Builder() *query.Builder {
	return s.builder
}

func (s *Service) run(ctx context.Context, desc *query.Descriptor) query.Outcome {
	return s.executor.Execute(ctx, desc, s.timeout)
}

// failureSummary renders an executor failure as display text.
func failureSummary(detail *query.ErrorDetail) string {
	return fmt.Sprintf("Query failed (%s): %s", detail.Kind, detail.Message)
}

// emptyResult is returned alongside validation and failure summaries so
// callers always receive a renderable table.
func emptyResult() *query.ResultSet {
	return query.NewResultSet(nil)
}

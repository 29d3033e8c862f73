package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anagilla/retail-lakehouse-demo/pkg/dataset"
)

// Limit clamp bounds applied to every descriptor.
const (
	minLimit = 1
	maxLimit = 1000
)

// FilterSet maps filter names to raw user-supplied values. Blank values
// mean "no constraint" and contribute no clause.
type FilterSet map[string]string

// SortSpec names a sort column and direction. The zero value applies the
// dataset's default sort.
type SortSpec struct {
	Column     string
	Descending bool
}

// Clause is one validated predicate: a registry-owned column, an operator,
// and a typed bind value.
type Clause struct {
	Column string
	Op     dataset.Op
	Value  any
}

// Descriptor is an immutable validated query. Identifiers come from the
// dataset registry, values are typed bind parameters. Construct one with
// Builder.Build; render it with SQL.
type Descriptor struct {
	dataset string
	from    string
	columns []string
	clauses []Clause
	groupBy []string
	orderBy []string
	limit   int
}

// Dataset returns the logical dataset name.
func (d *Descriptor) Dataset() string {
	return d.dataset
}

// Clauses returns the validated predicate clauses in declaration order.
func (d *Descriptor) Clauses() []Clause {
	clauses := make([]Clause, len(d.clauses))
	copy(clauses, d.clauses)
	return clauses
}

// OrderBy returns the "column ASC|DESC" sort entries.
func (d *Descriptor) OrderBy() []string {
	entries := make([]string, len(d.orderBy))
	copy(entries, d.orderBy)
	return entries
}

// Limit returns the clamped row limit.
func (d *Descriptor) Limit() int {
	return d.limit
}

// Builder validates caller input against the dataset registry and produces
// descriptors. It is stateless and safe for concurrent use.
type Builder struct {
	registry *dataset.Registry
}

// NewBuilder creates a Builder over the given registry.
func NewBuilder(reg *dataset.Registry) *Builder {
	return &Builder{registry: reg}
}

// Registry returns the dataset registry the builder validates against.
func (b *Builder) Registry() *dataset.Registry {
	return b.registry
}

// Build validates the inputs and returns a descriptor ready for execution.
// Validation failures return a *ValidationError and never reach the
// warehouse. A limit of 0 applies the dataset default; any other limit is
// clamped into the allowed range rather than rejected.
func (b *Builder) Build(datasetName string, filters FilterSet, sortSpec SortSpec, limit int) (*Descriptor, error) {
	ds, ok := b.registry.Get(datasetName)
	if !ok {
		return nil, &ValidationError{
			Kind:    UnknownDataset,
			Name:    datasetName,
			Message: fmt.Sprintf("Unknown dataset %q.", datasetName),
		}
	}

	clauses, err := buildClauses(ds, filters)
	if err != nil {
		return nil, err
	}

	orderBy, err := buildOrderBy(ds, sortSpec)
	if err != nil {
		return nil, err
	}

	return &Descriptor{
		dataset: ds.Name,
		from:    ds.From,
		columns: ds.Columns,
		clauses: clauses,
		groupBy: ds.GroupBy,
		orderBy: orderBy,
		limit:   clampLimit(ds, limit),
	}, nil
}

// buildClauses turns present, non-blank filters into typed predicate
// clauses in the dataset's declaration order.
func buildClauses(ds *dataset.Dataset, filters FilterSet) ([]Clause, error) {
	if name, ok := unknownFilter(ds, filters); ok {
		return nil, &ValidationError{
			Kind:    InvalidFilter,
			Name:    name,
			Message: fmt.Sprintf("Unknown filter %q for dataset %q.", name, ds.Name),
		}
	}

	clauses := make([]Clause, 0, len(filters))
	for _, f := range ds.Filters {
		raw, ok := filters[f.Name]
		if !ok {
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" || (f.Wildcard != "" && raw == f.Wildcard) {
			continue
		}

		value, err := f.Parse(raw)
		if err != nil {
			return nil, &ValidationError{
				Kind:    InvalidFilter,
				Name:    f.Name,
				Message: err.Error(),
			}
		}
		clauses = append(clauses, Clause{Column: f.Column, Op: f.Op, Value: value})
	}
	return clauses, nil
}

// unknownFilter returns the lexically-first filter name not declared by the
// dataset, so the error is deterministic regardless of map iteration order.
func unknownFilter(ds *dataset.Dataset, filters FilterSet) (string, bool) {
	var names []string
	for name := range filters {
		if _, ok := ds.Filter(name); !ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	return names[0], true
}

// buildOrderBy resolves the sort specification against the dataset's
// allow-list. An empty column applies the dataset default.
func buildOrderBy(ds *dataset.Dataset, spec SortSpec) ([]string, error) {
	if spec.Column == "" {
		return ds.DefaultSort, nil
	}
	if !ds.CanSort(spec.Column) {
		return nil, &ValidationError{
			Kind:    InvalidSort,
			Name:    spec.Column,
			Message: fmt.Sprintf("Cannot sort %q by %q.", ds.Name, spec.Column),
		}
	}

	dir := "ASC"
	if spec.Descending {
		dir = "DESC"
	}
	return []string{spec.Column + " " + dir}, nil
}

// clampLimit clamps the limit into [minLimit, maxLimit], tightened by the
// dataset's own max. Zero applies the dataset default before clamping.
func clampLimit(ds *dataset.Dataset, limit int) int {
	if limit == 0 {
		limit = ds.DefaultLimit
	}

	upper := maxLimit
	if ds.MaxLimit > 0 && ds.MaxLimit < upper {
		upper = ds.MaxLimit
	}

	switch {
	case limit < minLimit:
		return minLimit
	case limit > upper:
		return upper
	default:
		return limit
	}
}

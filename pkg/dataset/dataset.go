// Package dataset defines the allow-listed logical datasets the dashboard
// is permitted to query. Every identifier that reaches generated SQL
// (relations, select expressions, filter columns, sort columns) comes from
// this registry, never from user input.
package dataset

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FilterType identifies the semantic type a filter value must satisfy.
type FilterType string

// Supported filter value types.
const (
	// TypeIntegerID accepts base-10 integers, bound as int64.
	TypeIntegerID FilterType = "integer_id"

	// TypeMonth accepts YYYY-MM date buckets, bound as strings.
	TypeMonth FilterType = "month"

	// TypeCategory accepts members of the filter's enumerated value set.
	TypeCategory FilterType = "category"
)

// Op is the comparison operator a filter contributes to the WHERE clause.
type Op string

// Supported clause operators.
const (
	OpEq     Op = "eq"
	OpGtOrEq Op = "gte"
	OpLtOrEq Op = "lte"
)

// monthPattern matches YYYY-MM date buckets.
var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Filter declares one allow-listed filter on a dataset.
type Filter struct {
	Name   string     `yaml:"name"`
	Column string     `yaml:"column"`
	Type   FilterType `yaml:"type"`
	Op     Op         `yaml:"op"`

	// Values enumerates the accepted members for TypeCategory filters.
	Values []string `yaml:"values,omitempty"`

	// Wildcard is a category value meaning "no constraint" (e.g. "ALL").
	Wildcard string `yaml:"wildcard,omitempty"`
}

// Parse validates a raw value against the filter's semantic type and returns
// the typed value to bind. Blank values are handled by the caller and never
// reach Parse.
func (f Filter) Parse(raw string) (any, error) {
	switch f.Type {
	case TypeIntegerID:
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %q is not an integer", f.Name, raw)
		}
		return id, nil
	case TypeMonth:
		if !monthPattern.MatchString(raw) {
			return nil, fmt.Errorf("filter %q: %q is not a YYYY-MM month", f.Name, raw)
		}
		return raw, nil
	case TypeCategory:
		for _, v := range f.Values {
			if raw == v {
				return raw, nil
			}
		}
		return nil, fmt.Errorf("filter %q: %q is not one of %s", f.Name, raw, strings.Join(f.Values, ", "))
	default:
		return nil, fmt.Errorf("filter %q: unknown type %q", f.Name, f.Type)
	}
}

// Dataset describes one queryable logical dataset: the physical relation it
// reads, the select expressions it projects, and the filters and sort
// columns a caller may reference.
type Dataset struct {
	Name string `yaml:"name"`

	// From is the relation the dataset reads. It may contain a {catalog}
	// token replaced at registration time.
	From string `yaml:"from"`

	// Columns are the select expressions, registry-owned and safe to
	// interpolate.
	Columns []string `yaml:"columns"`

	// Filters are the allow-listed filters in declaration order. Clause
	// order in built queries follows this order.
	Filters []Filter `yaml:"filters,omitempty"`

	// Sortable lists the output columns a caller may sort by.
	Sortable []string `yaml:"sortable,omitempty"`

	GroupBy []string `yaml:"group_by,omitempty"`

	// DefaultSort holds "column ASC|DESC" entries applied when the caller
	// requests no sort. Empty means no ORDER BY clause.
	DefaultSort []string `yaml:"default_sort,omitempty"`

	DefaultLimit int `yaml:"default_limit,omitempty"`
	MaxLimit     int `yaml:"max_limit,omitempty"`
}

// Filter returns the declared filter with the given name.
func (d *Dataset) Filter(name string) (Filter, bool) {
	for _, f := range d.Filters {
		if f.Name == name {
			return f, true
		}
	}
	return Filter{}, false
}

// CanSort reports whether the column is in the dataset's sort allow-list.
func (d *Dataset) CanSort(column string) bool {
	for _, c := range d.Sortable {
		if c == column {
			return true
		}
	}
	return false
}

// validate checks the dataset definition for required fields.
func (d *Dataset) validate() error {
	if d.Name == "" {
		return fmt.Errorf("dataset name is required")
	}
	if d.From == "" {
		return fmt.Errorf("dataset %q: from is required", d.Name)
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("dataset %q: at least one column is required", d.Name)
	}
	for _, f := range d.Filters {
		if err := validateFilter(d.Name, f); err != nil {
			return err
		}
	}
	if d.MaxLimit > 0 && d.DefaultLimit > d.MaxLimit {
		return fmt.Errorf("dataset %q: default_limit %d exceeds max_limit %d", d.Name, d.DefaultLimit, d.MaxLimit)
	}
	return nil
}

// validateFilter checks one filter declaration.
func validateFilter(dataset string, f Filter) error {
	if f.Name == "" {
		return fmt.Errorf("dataset %q: filter name is required", dataset)
	}
	if f.Column == "" {
		return fmt.Errorf("dataset %q: filter %q: column is required", dataset, f.Name)
	}
	switch f.Type {
	case TypeIntegerID, TypeMonth, TypeCategory:
	default:
		return fmt.Errorf("dataset %q: filter %q: unknown type %q", dataset, f.Name, f.Type)
	}
	switch f.Op {
	case OpEq, OpGtOrEq, OpLtOrEq:
	default:
		return fmt.Errorf("dataset %q: filter %q: unknown op %q", dataset, f.Name, f.Op)
	}
	if f.Type == TypeCategory && len(f.Values) == 0 {
		return fmt.Errorf("dataset %q: filter %q: category filters require values", dataset, f.Name)
	}
	return nil
}

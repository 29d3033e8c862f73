// Package query builds validated query descriptors from user-supplied
// filters and defines the normalized result contract shared by the
// warehouse executor and the dashboard operations.
package query

import "fmt"

// ErrorKind classifies a query execution failure.
type ErrorKind string

// Execution failure kinds, detected during or after the warehouse call.
const (
	ConnectionError ErrorKind = "connection_error"
	AuthError       ErrorKind = "auth_error"
	TimeoutError    ErrorKind = "timeout_error"
	ExecutionError  ErrorKind = "execution_error"
)

// ErrorDetail describes a query execution failure.
type ErrorDetail struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Dataset string    `json:"dataset"`
}

// Error implements the error interface.
func (e *ErrorDetail) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ResultSet is the normalized result of one query execution. Cell values
// are restricted to string, int64, float64, or nil; the executor coerces
// everything else before the ResultSet is returned. A ResultSet is created
// fresh per execution and treated as read-only once returned.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewResultSet creates an empty ResultSet with the given column names.
func NewResultSet(columns []string) *ResultSet {
	return &ResultSet{Columns: columns, Rows: [][]any{}}
}

// Count returns the number of rows.
func (r *ResultSet) Count() int {
	return len(r.Rows)
}

// Empty reports whether the ResultSet has no rows.
func (r *ResultSet) Empty() bool {
	return len(r.Rows) == 0
}

// ColumnIndex returns the position of the named column, or -1.
func (r *ResultSet) ColumnIndex(name string) int {
	for i, c := range r.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at the given row for the named column, or nil when
// the row or column does not exist.
func (r *ResultSet) Value(row int, column string) any {
	if row < 0 || row >= len(r.Rows) {
		return nil
	}
	i := r.ColumnIndex(column)
	if i < 0 || i >= len(r.Rows[row]) {
		return nil
	}
	return r.Rows[row][i]
}

// Outcome is the tagged result of a query execution: exactly one of Result
// or Err is set. Callers must check Failed before touching either payload.
type Outcome struct {
	Result *ResultSet   `json:"result,omitempty"`
	Err    *ErrorDetail `json:"error,omitempty"`
}

// Success wraps a ResultSet in a successful Outcome.
func Success(rs *ResultSet) Outcome {
	return Outcome{Result: rs}
}

// Failure wraps an ErrorDetail in a failed Outcome.
func Failure(detail *ErrorDetail) Outcome {
	return Outcome{Err: detail}
}

// Failed reports whether the outcome carries an error.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

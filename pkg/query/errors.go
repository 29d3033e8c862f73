package query

// ValidationKind classifies a build-time validation failure.
type ValidationKind string

// Validation failure kinds, detected before any network call.
const (
	UnknownDataset ValidationKind = "unknown_dataset"
	InvalidFilter  ValidationKind = "invalid_filter"
	InvalidSort    ValidationKind = "invalid_sort"
)

// ValidationError reports a caller-input problem found while building a
// descriptor. Message is suitable for direct display to the user.
type ValidationError struct {
	Kind    ValidationKind
	Name    string // offending filter or sort column, when applicable
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

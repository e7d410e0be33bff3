package refdata

// Result is the broad catch-and-report outcome at the query boundary: either
// populated rows, or none plus a diagnostic describing why the query produced
// nothing. A Result never carries both.
type Result[T any] struct {
	Rows       []T
	Diagnostic string
}

// Report wraps a query outcome into a Result. On error the rows are replaced
// with an empty slice and the error text becomes the diagnostic; a failed
// query never surfaces as an error to the rendering layer.
func Report[T any](rows []T, err error) Result[T] {
	if err != nil {
		return Result[T]{Rows: []T{}, Diagnostic: err.Error()}
	}
	if rows == nil {
		rows = []T{}
	}
	return Result[T]{Rows: rows}
}

package fallback

import "github.com/ericfisherdev/mybitbucket/internal/domain/model"

// Result is the outcome of one call for record type T: success, or failure
// with the errors the server reported. Unlike the flat record shape it keeps
// a failure with zero reported errors distinguishable from a success.
type Result[T model.Record] struct {
	errs   []model.Error
	failed bool
}

// Failed wraps the errors extracted from a failed call.
func Failed[T model.Record](errs []model.Error) Result[T] {
	return Result[T]{errs: errs, failed: true}
}

// ResultOf classifies a flat record: one carrying errors is a failure.
func ResultOf[T model.Record](v T) Result[T] {
	if v.HasErrors() {
		return Failed[T](v.ErrorList())
	}
	return Result[T]{}
}

// IsFailure reports whether the result came from a failed call.
func (r Result[T]) IsFailure() bool { return r.failed }

// Errors returns the extracted errors; nil on success.
func (r Result[T]) Errors() []model.Error { return r.errs }

package fallback

import (
	"errors"

	"github.com/ericfisherdev/mybitbucket/internal/domain/model"
)

// ErrNilFailure is returned when a fallback is invoked without a failure.
// The transport layer only calls fallbacks for failed exchanges.
var ErrNilFailure = errors.New("fallback invoked without a failure")

// Failure is a failed exchange as seen by a fallback: only its raw body.
type Failure interface {
	FailureText() string
}

// Fallback converts a failure into a value of the operation's declared
// return type, or propagates a fatal extraction error. It runs exactly once
// per failed call and never retries.
type Fallback[T any] func(Failure) (T, error)

// OnError returns a Fallback that recovers the failure's errors and hands
// them to build.
func OnError[T model.Record](build func([]model.Error) T) Fallback[T] {
	return func(f Failure) (T, error) {
		var zero T

		result, err := Recover[T](f)
		if err != nil {
			return zero, err
		}

		return build(result.Errors()), nil
	}
}

// Fallbacks registered per declared return type.
var (
	BranchOnError             Fallback[model.Branch]             = OnError(BranchFromErrors)
	TagOnError                Fallback[model.Tag]                = OnError(TagFromErrors)
	RepositoryOnError         Fallback[model.Repository]         = OnError(RepositoryFromErrors)
	ProjectOnError            Fallback[model.Project]            = OnError(ProjectFromErrors)
	PullRequestOnError        Fallback[model.PullRequest]        = OnError(PullRequestFromErrors)
	MergeStatusOnError        Fallback[model.MergeStatus]        = OnError(MergeStatusFromErrors)
	PullRequestCommentOnError Fallback[model.PullRequestComment] = OnError(PullRequestCommentFromErrors)
)

// FalseOnError is the fallback for boolean operations such as deletes: any
// failure yields false. The body is not inspected.
func FalseOnError(f Failure) (bool, error) {
	if f == nil {
		return false, ErrNilFailure
	}
	return false, nil
}

// For returns the fallback registered for record type T. The transport
// resolves every record-returning operation through it.
func For[T model.Record]() Fallback[T] {
	var (
		zero T
		fb   any
	)

	switch any(zero).(type) {
	case model.Branch:
		fb = BranchOnError
	case model.Tag:
		fb = TagOnError
	case model.Repository:
		fb = RepositoryOnError
	case model.Project:
		fb = ProjectOnError
	case model.PullRequest:
		fb = PullRequestOnError
	case model.MergeStatus:
		fb = MergeStatusOnError
	case model.PullRequestComment:
		fb = PullRequestCommentOnError
	}

	return fb.(Fallback[T])
}

// Recover extracts the failure's errors into a failed Result. Every
// registered fallback goes through it.
func Recover[T model.Record](f Failure) (Result[T], error) {
	if f == nil {
		return Result[T]{}, ErrNilFailure
	}

	errs, err := ExtractErrors(f.FailureText())
	if err != nil {
		return Result[T]{}, err
	}

	return Failed[T](errs), nil
}

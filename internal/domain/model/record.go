package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidRecord is returned by New when a required field is missing
	// or an enumerated field holds an unknown value.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrMixedRecord is returned by New when a record carries errors while
	// also holding real data. A record is either complete or a sentinel.
	ErrMixedRecord = errors.New("record mixes real data with errors")
)

// validate is the package-level validator instance. It caches struct
// metadata and is safe for concurrent use.
var validate = newValidator()

// newValidator registers the "linetype" and "filetype" tags for the diff
// enums alongside the built-in tags.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	enums := map[string]func(string) bool{
		"linetype": func(s string) bool { return LineType(s).Valid() },
		"filetype": func(s string) bool { return FileType(s).Valid() },
	}
	for tag, valid := range enums {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}

	return v
}

// Record is the closed set of records returned by client operations. Each
// carries a trailing Errors list that is empty on success and non-empty
// only on sentinels built from a failed call.
type Record interface {
	Branch | Tag | Repository | Project | PullRequest | MergeStatus | PullRequestComment

	HasErrors() bool
	ErrorList() []Error
	isNeutral() bool
}

// New is the single construction entry point for every Record. It checks
// field constraints and rejects values that mix real fields with errors.
func New[T Record](v T) (T, error) {
	var zero T

	if err := validate.Struct(v); err != nil {
		return zero, fmt.Errorf("%w: %T: %s", ErrInvalidRecord, v, describeValidation(err))
	}

	if v.HasErrors() && !v.isNeutral() {
		return zero, fmt.Errorf("%w: %T", ErrMixedRecord, v)
	}

	return v, nil
}

// ValidateCommentRequest checks a create-comment body before it is sent.
func ValidateCommentRequest(req CommentRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: comment request: %s", ErrInvalidRecord, describeValidation(err))
	}
	return nil
}

// describeValidation flattens validator errors into "field tag" pairs.
func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Namespace()+" is required")
		case "linetype", "filetype":
			parts = append(parts, fmt.Sprintf("%s has unknown value %q", fe.Namespace(), fe.Value()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

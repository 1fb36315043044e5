package model

import "strings"

// Error is one problem reported by the Bitbucket server in the "errors"
// array of a failure body. Each field is independently nullable; a nil
// pointer means the server sent null (or nothing), which is distinct from
// an empty string.
type Error struct {
	Context       *string `json:"context"`
	Message       *string `json:"message"`
	ExceptionName *string `json:"exceptionName"`
}

// NewError builds an Error from its three nullable fields. It never fails.
func NewError(context, message, exceptionName *string) Error {
	return Error{
		Context:       context,
		Message:       message,
		ExceptionName: exceptionName,
	}
}

// GetContext returns the Context field if it's non-nil, zero value otherwise.
func (e Error) GetContext() string {
	if e.Context == nil {
		return ""
	}
	return *e.Context
}

// GetMessage returns the Message field if it's non-nil, zero value otherwise.
func (e Error) GetMessage() string {
	if e.Message == nil {
		return ""
	}
	return *e.Message
}

// GetExceptionName returns the ExceptionName field if it's non-nil, zero value otherwise.
func (e Error) GetExceptionName() string {
	if e.ExceptionName == nil {
		return ""
	}
	return *e.ExceptionName
}

// String renders the error as "ExceptionName: message (context)", omitting
// absent parts.
func (e Error) String() string {
	var b strings.Builder
	if e.ExceptionName != nil {
		b.WriteString(*e.ExceptionName)
		if e.Message != nil {
			b.WriteString(": ")
		}
	}
	if e.Message != nil {
		b.WriteString(*e.Message)
	}
	if e.Context != nil {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("(" + *e.Context + ")")
	}
	return b.String()
}

// Ptr returns a pointer to v. It is a convenience for populating the
// nullable fields of wire records.
func Ptr[T any](v T) *T {
	return &v
}

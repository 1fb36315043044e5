package model

import "time"

// Page is one page of a paged Bitbucket collection.
type Page[T any] struct {
	Start         int  `json:"start"`
	Size          int  `json:"size"`
	Limit         int  `json:"limit"`
	IsLastPage    bool `json:"isLastPage"`
	NextPageStart *int `json:"nextPageStart"`
	Values        []T  `json:"values"`
}

// FailureRecord is a journal entry for one call that came back as a sentinel.
type FailureRecord struct {
	ID         int64
	Operation  string // e.g. "get_pull_request".
	Record     string // Record type name, e.g. "PullRequest".
	Resource   string // Human-readable resource path.
	Errors     []Error
	OccurredAt time.Time
}

// PrimaryMessage returns the message of the first error, which is the one
// shown to end users.
func (f FailureRecord) PrimaryMessage() string {
	if len(f.Errors) == 0 {
		return ""
	}
	return f.Errors[0].GetMessage()
}

package fallback

import "github.com/ericfisherdev/mybitbucket/internal/domain/model"

// Sentinel builders. Each fills every real field with the record's neutral
// default and places errs verbatim; none of them can fail. Identifiers use
// -1 rather than 0 because 0 is not guaranteed to be absent from real data.

// BranchFromErrors builds a Branch sentinel.
func BranchFromErrors(errs []model.Error) model.Branch {
	return model.Branch{
		IsDefault: false,
		Errors:    errs,
	}
}

// TagFromErrors builds a Tag sentinel.
func TagFromErrors(errs []model.Error) model.Tag {
	return model.Tag{Errors: errs}
}

// RepositoryFromErrors builds a Repository sentinel.
func RepositoryFromErrors(errs []model.Error) model.Repository {
	return model.Repository{
		ID:       -1,
		Forkable: false,
		Public:   false,
		Errors:   errs,
	}
}

// ProjectFromErrors builds a Project sentinel.
func ProjectFromErrors(errs []model.Error) model.Project {
	return model.Project{
		ID:     -1,
		Public: false,
		Errors: errs,
	}
}

// PullRequestFromErrors builds a PullRequest sentinel.
func PullRequestFromErrors(errs []model.Error) model.PullRequest {
	return model.PullRequest{
		ID:          -1,
		Version:     -1,
		Open:        false,
		Closed:      false,
		CreatedDate: 0,
		UpdatedDate: 0,
		Locked:      false,
		Errors:      errs,
	}
}

// MergeStatusFromErrors builds a MergeStatus sentinel.
func MergeStatusFromErrors(errs []model.Error) model.MergeStatus {
	return model.MergeStatus{
		CanMerge:   false,
		Conflicted: false,
		Errors:     errs,
	}
}

// PullRequestCommentFromErrors builds a PullRequestComment sentinel.
func PullRequestCommentFromErrors(errs []model.Error) model.PullRequestComment {
	return model.PullRequestComment{
		CreatedDate: 0,
		UpdatedDate: 0,
		Errors:      errs,
	}
}

package driven

import (
	"context"

	"github.com/ericfisherdev/mybitbucket/internal/domain/model"
)

// CommentListOptions selects a page of diff comments.
type CommentListOptions struct {
	Path  string // File path the comments are anchored to. Required by the server.
	Start int
	Limit int
}

// BitbucketClient defines the driven port for the Bitbucket Server REST API.
//
// Record-returning methods never report remote API failures as errors: the
// returned record carries them in its Errors list instead. A non-nil error
// means the exchange itself failed or the failure body was unreadable.
type BitbucketClient interface {
	// Read methods

	GetProject(ctx context.Context, projectKey string) (model.Project, error)
	GetRepository(ctx context.Context, projectKey, repoSlug string) (model.Repository, error)
	GetDefaultBranch(ctx context.Context, projectKey, repoSlug string) (model.Branch, error)
	GetTag(ctx context.Context, projectKey, repoSlug, tagName string) (model.Tag, error)
	GetPullRequest(ctx context.Context, projectKey, repoSlug string, prID int) (model.PullRequest, error)
	GetMergeStatus(ctx context.Context, projectKey, repoSlug string, prID int) (model.MergeStatus, error)
	GetPullRequestComment(ctx context.Context, projectKey, repoSlug string, prID, commentID int) (model.PullRequestComment, error)
	// ListPullRequestComments returns one page of comments anchored to opts.Path.
	// Failures are returned as errors; pages have no sentinel form.
	ListPullRequestComments(ctx context.Context, projectKey, repoSlug string, prID int, opts CommentListOptions) (model.Page[model.PullRequestComment], error)

	// Write methods

	CreatePullRequestComment(ctx context.Context, projectKey, repoSlug string, prID int, req model.CommentRequest) (model.PullRequestComment, error)
	// DeletePullRequestComment reports whether the comment was deleted.
	// version must match the comment's current version.
	DeletePullRequestComment(ctx context.Context, projectKey, repoSlug string, prID, commentID, version int) (bool, error)
}

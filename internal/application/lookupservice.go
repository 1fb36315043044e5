package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ericfisherdev/mybitbucket/internal/domain/fallback"
	"github.com/ericfisherdev/mybitbucket/internal/domain/model"
	"github.com/ericfisherdev/mybitbucket/internal/domain/port/driven"
)

// Operation names used in the journal and as metric labels.
const (
	OpGetProject        = "get_project"
	OpGetRepository     = "get_repository"
	OpGetDefaultBranch  = "get_default_branch"
	OpGetTag            = "get_tag"
	OpGetPullRequest    = "get_pull_request"
	OpGetMergeStatus    = "get_merge_status"
	OpGetComment        = "get_pull_request_comment"
	OpCreateComment     = "create_pull_request_comment"
	OpDeleteComment     = "delete_pull_request_comment"
	OpListComments      = "list_pull_request_comments"
	defaultFailureLimit = 50
)

// LookupService fronts the Bitbucket client. Records come back in their
// flat shape; every sentinel is journalled and counted before it is
// returned. Journal problems are logged and never surface to callers.
type LookupService struct {
	client    driven.BitbucketClient
	failures  driven.FailureStore
	fallbacks *prometheus.CounterVec
	now       func() time.Time
}

// NewLookupService creates a LookupService. failures may be nil to disable
// the journal. The fallback counter is registered with reg; a nil reg
// leaves it unregistered.
func NewLookupService(client driven.BitbucketClient, failures driven.FailureStore, reg prometheus.Registerer) *LookupService {
	return &LookupService{
		client:   client,
		failures: failures,
		fallbacks: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "mybitbucket_fallbacks_total",
			Help: "Bitbucket calls that returned a sentinel record instead of data.",
		}, []string{"record", "operation"}),
		now: time.Now,
	}
}

// Project looks up a project by key.
func (s *LookupService) Project(ctx context.Context, projectKey string) (model.Project, error) {
	v, err := s.client.GetProject(ctx, projectKey)
	return observe(ctx, s, OpGetProject, projectKey, v, err)
}

// Repository looks up a repository.
func (s *LookupService) Repository(ctx context.Context, projectKey, repoSlug string) (model.Repository, error) {
	v, err := s.client.GetRepository(ctx, projectKey, repoSlug)
	return observe(ctx, s, OpGetRepository, repoResource(projectKey, repoSlug), v, err)
}

// DefaultBranch looks up a repository's default branch.
func (s *LookupService) DefaultBranch(ctx context.Context, projectKey, repoSlug string) (model.Branch, error) {
	v, err := s.client.GetDefaultBranch(ctx, projectKey, repoSlug)
	return observe(ctx, s, OpGetDefaultBranch, repoResource(projectKey, repoSlug), v, err)
}

// Tag looks up a tag by name.
func (s *LookupService) Tag(ctx context.Context, projectKey, repoSlug, tagName string) (model.Tag, error) {
	v, err := s.client.GetTag(ctx, projectKey, repoSlug, tagName)
	return observe(ctx, s, OpGetTag, repoResource(projectKey, repoSlug)+"@"+tagName, v, err)
}

// PullRequest looks up a pull request.
func (s *LookupService) PullRequest(ctx context.Context, projectKey, repoSlug string, prID int) (model.PullRequest, error) {
	v, err := s.client.GetPullRequest(ctx, projectKey, repoSlug, prID)
	return observe(ctx, s, OpGetPullRequest, prResource(projectKey, repoSlug, prID), v, err)
}

// MergeStatus checks whether a pull request can be merged.
func (s *LookupService) MergeStatus(ctx context.Context, projectKey, repoSlug string, prID int) (model.MergeStatus, error) {
	v, err := s.client.GetMergeStatus(ctx, projectKey, repoSlug, prID)
	return observe(ctx, s, OpGetMergeStatus, prResource(projectKey, repoSlug, prID), v, err)
}

// Comment looks up a pull request comment with its replies.
func (s *LookupService) Comment(ctx context.Context, projectKey, repoSlug string, prID, commentID int) (model.PullRequestComment, error) {
	v, err := s.client.GetPullRequestComment(ctx, projectKey, repoSlug, prID, commentID)
	resource := fmt.Sprintf("%s/comments/%d", prResource(projectKey, repoSlug, prID), commentID)
	return observe(ctx, s, OpGetComment, resource, v, err)
}

// CreateComment posts a new comment.
func (s *LookupService) CreateComment(ctx context.Context, projectKey, repoSlug string, prID int, req model.CommentRequest) (model.PullRequestComment, error) {
	v, err := s.client.CreatePullRequestComment(ctx, projectKey, repoSlug, prID, req)
	return observe(ctx, s, OpCreateComment, prResource(projectKey, repoSlug, prID), v, err)
}

// Comments returns one page of comments on a file path.
func (s *LookupService) Comments(ctx context.Context, projectKey, repoSlug string, prID int, opts driven.CommentListOptions) (model.Page[model.PullRequestComment], error) {
	page, err := s.client.ListPullRequestComments(ctx, projectKey, repoSlug, prID, opts)
	if err != nil {
		return page, fmt.Errorf("%s %s: %w", OpListComments, prResource(projectKey, repoSlug, prID), err)
	}
	return page, nil
}

// DeleteComment deletes a comment. A false result is counted but not
// journalled: the failure body is not inspected, so there are no errors to
// keep.
func (s *LookupService) DeleteComment(ctx context.Context, projectKey, repoSlug string, prID, commentID, version int) (bool, error) {
	ok, err := s.client.DeletePullRequestComment(ctx, projectKey, repoSlug, prID, commentID, version)
	if err != nil {
		return false, err
	}
	if !ok {
		s.fallbacks.WithLabelValues("bool", OpDeleteComment).Inc()
		slog.Info("comment not deleted",
			"resource", prResource(projectKey, repoSlug, prID),
			"comment_id", commentID,
			"version", version,
		)
	}
	return ok, nil
}

// RecentFailures returns the newest journal entries. An empty list is
// returned when the journal is disabled.
func (s *LookupService) RecentFailures(ctx context.Context, limit int) ([]model.FailureRecord, error) {
	if s.failures == nil {
		return []model.FailureRecord{}, nil
	}
	if limit <= 0 {
		limit = defaultFailureLimit
	}
	return s.failures.ListRecent(ctx, limit)
}

// FailureCounts returns journalled failures per record type.
func (s *LookupService) FailureCounts(ctx context.Context) (map[string]int, error) {
	if s.failures == nil {
		return map[string]int{}, nil
	}
	return s.failures.CountByRecord(ctx)
}

// observe journals and counts v when it is a sentinel. Errors pass through.
func observe[T model.Record](ctx context.Context, s *LookupService, op, resource string, v T, err error) (T, error) {
	if err != nil {
		return v, fmt.Errorf("%s %s: %w", op, resource, err)
	}
	result := fallback.ResultOf(v)
	if !result.IsFailure() {
		return v, nil
	}

	record := recordName(v)
	s.fallbacks.WithLabelValues(record, op).Inc()

	rec := model.FailureRecord{
		Operation:  op,
		Record:     record,
		Resource:   resource,
		Errors:     result.Errors(),
		OccurredAt: s.now(),
	}

	slog.Info("bitbucket returned errors",
		"operation", op,
		"resource", resource,
		"errors", len(rec.Errors),
		"message", rec.PrimaryMessage(),
	)

	if s.failures != nil {
		if _, jerr := s.failures.Record(ctx, rec); jerr != nil {
			slog.Error("failed to journal failure", "operation", op, "resource", resource, "error", jerr)
		}
	}

	return v, nil
}

// recordName returns the unqualified type name of a record, e.g. "Branch".
func recordName(v any) string {
	name := fmt.Sprintf("%T", v)
	return name[strings.LastIndex(name, ".")+1:]
}

func repoResource(projectKey, repoSlug string) string {
	return projectKey + "/" + repoSlug
}

func prResource(projectKey, repoSlug string, prID int) string {
	return fmt.Sprintf("%s/%s#%d", projectKey, repoSlug, prID)
}

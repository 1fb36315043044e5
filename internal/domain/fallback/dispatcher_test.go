package fallback_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/mybitbucket/internal/domain/fallback"
	"github.com/ericfisherdev/mybitbucket/internal/domain/model"
)

// textFailure is a Failure carrying a fixed body.
type textFailure string

func (f textFailure) FailureText() string { return string(f) }

const notFoundBody = `{"errors":[{"context":null,"message":"No such pull request","exceptionName":"NotFoundException"}]}`

func TestPullRequestCommentOnError_NotFound(t *testing.T) {
	comment, err := fallback.PullRequestCommentOnError(textFailure(notFoundBody))

	require.NoError(t, err)
	require.Len(t, comment.Errors, 1)
	assert.Nil(t, comment.Errors[0].Context)
	assert.Equal(t, "No such pull request", comment.Errors[0].GetMessage())
	assert.Equal(t, "NotFoundException", comment.Errors[0].GetExceptionName())
	assert.Nil(t, comment.ID)
	assert.Nil(t, comment.Text)
	assert.Nil(t, comment.Comments)
	assert.True(t, comment.HasErrors())
}

func TestRegisteredFallbacks_BuildTypedSentinels(t *testing.T) {
	f := textFailure(notFoundBody)

	branch, err := fallback.BranchOnError(f)
	require.NoError(t, err)
	assert.Nil(t, branch.ID)
	assert.False(t, branch.IsDefault)
	assert.Len(t, branch.Errors, 1)

	tag, err := fallback.TagOnError(f)
	require.NoError(t, err)
	assert.Nil(t, tag.Hash)
	assert.Len(t, tag.Errors, 1)

	repo, err := fallback.RepositoryOnError(f)
	require.NoError(t, err)
	assert.Equal(t, -1, repo.ID)
	assert.Len(t, repo.Errors, 1)

	project, err := fallback.ProjectOnError(f)
	require.NoError(t, err)
	assert.Equal(t, -1, project.ID)
	assert.Len(t, project.Errors, 1)

	pr, err := fallback.PullRequestOnError(f)
	require.NoError(t, err)
	assert.Equal(t, -1, pr.ID)
	assert.Equal(t, -1, pr.Version)
	assert.Len(t, pr.Errors, 1)

	merge, err := fallback.MergeStatusOnError(f)
	require.NoError(t, err)
	assert.False(t, merge.CanMerge)
	assert.Len(t, merge.Errors, 1)
}

func TestFallback_EmptyErrorsStillBuildsSentinel(t *testing.T) {
	repo, err := fallback.RepositoryOnError(textFailure(`{"errors":[]}`))

	require.NoError(t, err)
	assert.Equal(t, -1, repo.ID)
	assert.NotNil(t, repo.Errors)
	assert.Empty(t, repo.Errors)
}

func TestFallback_PropagatesMalformedPayload(t *testing.T) {
	_, err := fallback.ProjectOnError(textFailure("<html>502 Bad Gateway</html>"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, fallback.ErrMalformedFailurePayload))

	var payloadErr *fallback.PayloadError
	require.True(t, errors.As(err, &payloadErr))
	assert.Equal(t, "<html>502 Bad Gateway</html>", payloadErr.Raw)
}

func TestFallback_NilFailure(t *testing.T) {
	_, err := fallback.BranchOnError(nil)
	assert.ErrorIs(t, err, fallback.ErrNilFailure)

	ok, err := fallback.FalseOnError(nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, fallback.ErrNilFailure)
}

func TestFalseOnError_IgnoresBody(t *testing.T) {
	ok, err := fallback.FalseOnError(textFailure("not even json"))

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFor_ResolvesEveryRecordType(t *testing.T) {
	f := textFailure(notFoundBody)
	errs, err := fallback.ExtractErrors(notFoundBody)
	require.NoError(t, err)

	branch, err := fallback.For[model.Branch]()(f)
	require.NoError(t, err)
	assert.Equal(t, fallback.BranchFromErrors(errs), branch)

	tag, err := fallback.For[model.Tag]()(f)
	require.NoError(t, err)
	assert.Equal(t, fallback.TagFromErrors(errs), tag)

	repo, err := fallback.For[model.Repository]()(f)
	require.NoError(t, err)
	assert.Equal(t, fallback.RepositoryFromErrors(errs), repo)

	project, err := fallback.For[model.Project]()(f)
	require.NoError(t, err)
	assert.Equal(t, fallback.ProjectFromErrors(errs), project)

	pr, err := fallback.For[model.PullRequest]()(f)
	require.NoError(t, err)
	assert.Equal(t, fallback.PullRequestFromErrors(errs), pr)

	merge, err := fallback.For[model.MergeStatus]()(f)
	require.NoError(t, err)
	assert.Equal(t, fallback.MergeStatusFromErrors(errs), merge)

	comment, err := fallback.For[model.PullRequestComment]()(f)
	require.NoError(t, err)
	assert.Equal(t, fallback.PullRequestCommentFromErrors(errs), comment)
}

func TestFor_PropagatesMalformedPayload(t *testing.T) {
	_, err := fallback.For[model.Branch]()(textFailure("Service Unavailable"))
	assert.ErrorIs(t, err, fallback.ErrMalformedFailurePayload)

	_, err = fallback.For[model.MergeStatus]()(nil)
	assert.ErrorIs(t, err, fallback.ErrNilFailure)
}

func TestFallback_SentinelsAreNotShared(t *testing.T) {
	first, err := fallback.BranchOnError(textFailure(notFoundBody))
	require.NoError(t, err)
	second, err := fallback.BranchOnError(textFailure(notFoundBody))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotSame(t, &first.Errors[0], &second.Errors[0])
}

func TestFallback_ConcurrentUse(t *testing.T) {
	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for range goroutines {
		go func() {
			defer wg.Done()
			c, err := fallback.PullRequestCommentOnError(textFailure(notFoundBody))
			assert.NoError(t, err)
			assert.Len(t, c.Errors, 1)
		}()
	}

	wg.Wait()
}

func TestRecover_KeepsEmptyFailureDistinct(t *testing.T) {
	result, err := fallback.Recover[model.Repository](textFailure(`{"errors":[]}`))

	require.NoError(t, err)
	assert.True(t, result.IsFailure())
	assert.NotNil(t, result.Errors())
	assert.Empty(t, result.Errors())
}

func TestRecover_PropagatesFatalErrors(t *testing.T) {
	_, err := fallback.Recover[model.Tag](textFailure(`{"foo":1}`))
	assert.ErrorIs(t, err, fallback.ErrMissingErrorsArray)

	_, err = fallback.Recover[model.Tag](nil)
	assert.ErrorIs(t, err, fallback.ErrNilFailure)
}

func TestResultOf_ClassifiesFlatRecords(t *testing.T) {
	genuine := model.Project{Key: model.Ptr("PRJ"), ID: 7, Name: model.Ptr("Project")}

	ok := fallback.ResultOf(genuine)
	assert.False(t, ok.IsFailure())
	assert.Nil(t, ok.Errors())

	errs := []model.Error{model.NewError(nil, model.Ptr("Project PRJ does not exist"), nil)}
	failed := fallback.ResultOf(fallback.ProjectFromErrors(errs))
	assert.True(t, failed.IsFailure())
	assert.Equal(t, errs, failed.Errors())
}

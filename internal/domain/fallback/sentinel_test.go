package fallback_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/mybitbucket/internal/domain/fallback"
	"github.com/ericfisherdev/mybitbucket/internal/domain/model"
)

func sampleErrors() []model.Error {
	return []model.Error{
		model.NewError(nil, model.Ptr("Repository not found"), model.Ptr("NoSuchRepositoryException")),
		model.NewError(model.Ptr("slug"), nil, nil),
	}
}

// errorSets covers the empty list and a populated one for every builder.
var errorSets = map[string][]model.Error{
	"empty":     {},
	"populated": sampleErrors(),
}

func TestSentinels_NeutralDefaults(t *testing.T) {
	for name, errs := range errorSets {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, model.Branch{Errors: errs}, fallback.BranchFromErrors(errs))
			assert.Equal(t, model.Tag{Errors: errs}, fallback.TagFromErrors(errs))
			assert.Equal(t, model.Repository{ID: -1, Errors: errs}, fallback.RepositoryFromErrors(errs))
			assert.Equal(t, model.Project{ID: -1, Errors: errs}, fallback.ProjectFromErrors(errs))
			assert.Equal(t, model.PullRequest{ID: -1, Version: -1, Errors: errs}, fallback.PullRequestFromErrors(errs))
			assert.Equal(t, model.MergeStatus{Errors: errs}, fallback.MergeStatusFromErrors(errs))
			assert.Equal(t, model.PullRequestComment{Errors: errs}, fallback.PullRequestCommentFromErrors(errs))
		})
	}
}

func TestSentinels_ErrorsRoundTrip(t *testing.T) {
	errs := sampleErrors()

	assert.Equal(t, errs, fallback.BranchFromErrors(errs).ErrorList())
	assert.Equal(t, errs, fallback.TagFromErrors(errs).ErrorList())
	assert.Equal(t, errs, fallback.RepositoryFromErrors(errs).ErrorList())
	assert.Equal(t, errs, fallback.ProjectFromErrors(errs).ErrorList())
	assert.Equal(t, errs, fallback.PullRequestFromErrors(errs).ErrorList())
	assert.Equal(t, errs, fallback.MergeStatusFromErrors(errs).ErrorList())

	comment := fallback.PullRequestCommentFromErrors(errs)
	require.Len(t, comment.Errors, 2)
	assert.Same(t, &errs[0], &comment.Errors[0], "errors are placed verbatim, not copied")
}

func TestSentinels_PassConstructionChecks(t *testing.T) {
	errs := sampleErrors()

	_, err := model.New(fallback.BranchFromErrors(errs))
	assert.NoError(t, err)
	_, err = model.New(fallback.TagFromErrors(errs))
	assert.NoError(t, err)
	_, err = model.New(fallback.RepositoryFromErrors(errs))
	assert.NoError(t, err)
	_, err = model.New(fallback.ProjectFromErrors(errs))
	assert.NoError(t, err)
	_, err = model.New(fallback.PullRequestFromErrors(errs))
	assert.NoError(t, err)
	_, err = model.New(fallback.MergeStatusFromErrors(errs))
	assert.NoError(t, err)
	_, err = model.New(fallback.PullRequestCommentFromErrors(errs))
	assert.NoError(t, err)
}

func TestRepositorySentinel_DistinguishableFromRealRepository(t *testing.T) {
	sentinel := fallback.RepositoryFromErrors([]model.Error{})

	assert.Equal(t, -1, sentinel.ID)
	assert.False(t, sentinel.Forkable)
	assert.False(t, sentinel.Public)
	assert.False(t, sentinel.HasErrors())

	var genuine model.Repository
	require.NoError(t, json.Unmarshal([]byte(`{"slug":"r","id":0,"name":"r","forkable":false,"public":false}`), &genuine))
	assert.NotEqual(t, sentinel.ID, genuine.ID)
}

func TestCommentSentinel_WireShape(t *testing.T) {
	comment := fallback.PullRequestCommentFromErrors([]model.Error{
		model.NewError(nil, model.Ptr("No such pull request"), model.Ptr("NotFoundException")),
	})

	data, err := json.Marshal(comment)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"properties": null,
		"id": null,
		"version": null,
		"text": null,
		"author": null,
		"createdDate": 0,
		"updatedDate": 0,
		"comments": null,
		"anchor": null,
		"permittedOperations": null,
		"errors": [{"context": null, "message": "No such pull request", "exceptionName": "NotFoundException"}]
	}`, string(data))
}

package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/mybitbucket/internal/domain/model"
)

func validAnchor() model.Anchor {
	return model.Anchor{
		FromHash: "a1b2c3",
		ToHash:   "d4e5f6",
		Line:     12,
		LineType: model.LineTypeAdded,
		FileType: model.FileTypeTo,
		Path:     "basic_branching/file.txt",
	}
}

func TestNew_AcceptsCompleteRecord(t *testing.T) {
	anchor := validAnchor()
	comment := model.PullRequestComment{
		ID:      model.Ptr(1),
		Version: model.Ptr(0),
		Text:    model.Ptr("in diff comment"),
		Anchor:  &anchor,
	}

	got, err := model.New(comment)

	require.NoError(t, err)
	assert.Equal(t, comment, got)
}

func TestNew_RejectsInvalidNestedAnchor(t *testing.T) {
	anchor := validAnchor()
	anchor.LineType = "SIDEWAYS"

	_, err := model.New(model.PullRequestComment{ID: model.Ptr(1), Anchor: &anchor})

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidRecord))
	assert.Contains(t, err.Error(), "LineType")
}

func TestNew_ValidatesRepliesAtDepth(t *testing.T) {
	bad := validAnchor()
	bad.Path = ""

	deep := model.PullRequestComment{ID: model.Ptr(3), Anchor: &bad}
	root := model.PullRequestComment{
		ID: model.Ptr(1),
		Comments: []model.PullRequestComment{
			{ID: model.Ptr(2), Comments: []model.PullRequestComment{deep}},
		},
	}

	_, err := model.New(root)
	assert.ErrorIs(t, err, model.ErrInvalidRecord)
}

func TestNew_RejectsMixedRecord(t *testing.T) {
	repo := model.Repository{
		Slug:   model.Ptr("rep_2"),
		ID:     -1,
		Errors: []model.Error{model.NewError(nil, model.Ptr("boom"), nil)},
	}

	_, err := model.New(repo)

	assert.ErrorIs(t, err, model.ErrMixedRecord)
}

func TestValidateCommentRequest(t *testing.T) {
	assert.NoError(t, model.ValidateCommentRequest(model.CommentRequest{
		Text:   "A text here",
		Anchor: &model.CommentAnchor{Line: 1, LineType: model.LineTypeAdded, FileType: model.FileTypeTo},
	}))
	assert.ErrorIs(t, model.ValidateCommentRequest(model.CommentRequest{}), model.ErrInvalidRecord)
}

func TestValidateCommentRequest_RejectsUnknownEnums(t *testing.T) {
	tests := []struct {
		name   string
		anchor model.CommentAnchor
	}{
		{"lowercase line type", model.CommentAnchor{Line: 1, LineType: "added", FileType: model.FileTypeTo}},
		{"unknown file type", model.CommentAnchor{Line: 1, LineType: model.LineTypeContext, FileType: "BOTH"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := model.ValidateCommentRequest(model.CommentRequest{Text: "x", Anchor: &tt.anchor})
			assert.ErrorIs(t, err, model.ErrInvalidRecord)
		})
	}
}

func TestPullRequestComment_WireNamesRoundTrip(t *testing.T) {
	const body = `{
		"properties": {"repositoryId": 1},
		"id": 1,
		"version": 0,
		"text": "in diff comment",
		"author": {"name": "admin", "emailAddress": "admin@example.com", "id": 1, "displayName": "Administrator", "active": true, "slug": "admin", "type": "NORMAL"},
		"createdDate": 1474899035880,
		"updatedDate": 1474899035880,
		"comments": [{
			"properties": null, "id": 2, "version": 0, "text": "reply", "author": null,
			"createdDate": 1474899035881, "updatedDate": 1474899035881,
			"comments": [], "anchor": null, "permittedOperations": null
		}],
		"anchor": {"fromHash": "a1", "toHash": "b2", "line": 1, "lineType": "ADDED", "fileType": "TO", "path": "basic_branching/file.txt"},
		"permittedOperations": {"editable": true, "deletable": true}
	}`

	var comment model.PullRequestComment
	require.NoError(t, json.Unmarshal([]byte(body), &comment))

	assert.Equal(t, 1, comment.GetID())
	assert.Equal(t, "in diff comment", comment.GetText())
	assert.Equal(t, "admin", comment.Author.GetName())
	require.Len(t, comment.Comments, 1)
	assert.Equal(t, "reply", comment.Comments[0].GetText())
	assert.Equal(t, model.LineTypeAdded, comment.Anchor.LineType)
	assert.True(t, comment.PermittedOperations.Deletable)
	assert.Nil(t, comment.Errors)
	assert.Equal(t, int64(1474899035880), comment.CreatedAt().UnixMilli())

	data, err := json.Marshal(comment)
	require.NoError(t, err)

	var again model.PullRequestComment
	require.NoError(t, json.Unmarshal(data, &again))
	assert.Equal(t, comment, again)
	assert.NotContains(t, string(data), `"errors"`)
}

func TestError_String(t *testing.T) {
	full := model.NewError(model.Ptr("slug"), model.Ptr("bad slug"), model.Ptr("ValidationException"))
	assert.Equal(t, "ValidationException: bad slug (slug)", full.String())

	onlyMessage := model.NewError(nil, model.Ptr("gone"), nil)
	assert.Equal(t, "gone", onlyMessage.String())

	assert.Equal(t, "", model.Error{}.String())
}

func TestEnums_Valid(t *testing.T) {
	assert.True(t, model.LineTypeContext.Valid())
	assert.False(t, model.LineType("added").Valid())
	assert.True(t, model.FileTypeFrom.Valid())
	assert.False(t, model.FileType("BOTH").Valid())
}

func TestFailureRecord_PrimaryMessage(t *testing.T) {
	rec := model.FailureRecord{Errors: []model.Error{
		model.NewError(nil, model.Ptr("first"), nil),
		model.NewError(nil, model.Ptr("second"), nil),
	}}

	assert.Equal(t, "first", rec.PrimaryMessage())
	assert.Equal(t, "", model.FailureRecord{}.PrimaryMessage())
}

package model

import "time"

// Anchor identifies the diff location a pull request comment is attached to.
type Anchor struct {
	FromHash string   `json:"fromHash" validate:"required"`
	ToHash   string   `json:"toHash"   validate:"required"`
	Line     int      `json:"line"     validate:"gte=0"`
	LineType LineType `json:"lineType" validate:"required,linetype"`
	FileType FileType `json:"fileType" validate:"required,filetype"`
	Path     string   `json:"path"     validate:"required"`
}

// Properties is the opaque key/value bag Bitbucket attaches to comments.
type Properties map[string]any

// PermittedOperations lists what the authenticated user may do with a comment.
type PermittedOperations struct {
	Editable  bool `json:"editable"`
	Deletable bool `json:"deletable"`
}

// PullRequestComment is a comment on a pull request diff. Replies nest in
// Comments to arbitrary depth, in the order the server returned them.
type PullRequestComment struct {
	Properties          Properties           `json:"properties"`
	ID                  *int                 `json:"id"`
	Version             *int                 `json:"version"`
	Text                *string              `json:"text"`
	Author              *User                `json:"author"`
	CreatedDate         int64                `json:"createdDate"` // Epoch millis.
	UpdatedDate         int64                `json:"updatedDate"` // Epoch millis.
	Comments            []PullRequestComment `json:"comments"            validate:"omitempty,dive"`
	Anchor              *Anchor              `json:"anchor"`
	PermittedOperations *PermittedOperations `json:"permittedOperations"`
	Errors              []Error              `json:"errors,omitempty"`
}

// GetID returns the ID field if it's non-nil, zero value otherwise.
func (c PullRequestComment) GetID() int {
	if c.ID == nil {
		return 0
	}
	return *c.ID
}

// GetVersion returns the Version field if it's non-nil, zero value otherwise.
func (c PullRequestComment) GetVersion() int {
	if c.Version == nil {
		return 0
	}
	return *c.Version
}

// GetText returns the Text field if it's non-nil, zero value otherwise.
func (c PullRequestComment) GetText() string {
	if c.Text == nil {
		return ""
	}
	return *c.Text
}

// CreatedAt converts CreatedDate to a time.Time.
func (c PullRequestComment) CreatedAt() time.Time {
	return time.UnixMilli(c.CreatedDate).UTC()
}

// UpdatedAt converts UpdatedDate to a time.Time.
func (c PullRequestComment) UpdatedAt() time.Time {
	return time.UnixMilli(c.UpdatedDate).UTC()
}

// HasErrors reports whether the comment is a sentinel carrying remote errors.
func (c PullRequestComment) HasErrors() bool { return len(c.Errors) > 0 }

// ErrorList returns the errors carried by the comment.
func (c PullRequestComment) ErrorList() []Error { return c.Errors }

func (c PullRequestComment) isNeutral() bool {
	return c.Properties == nil &&
		c.ID == nil &&
		c.Version == nil &&
		c.Text == nil &&
		c.Author == nil &&
		c.CreatedDate == 0 &&
		c.UpdatedDate == 0 &&
		c.Comments == nil &&
		c.Anchor == nil &&
		c.PermittedOperations == nil
}

// CommentAnchor is the request-side anchor sent when creating a diff comment.
// Unlike Anchor it carries no commit hashes; the server fills those in.
type CommentAnchor struct {
	Line     int      `json:"line"     validate:"gte=0"`
	LineType LineType `json:"lineType" validate:"required,linetype"`
	FileType FileType `json:"fileType" validate:"required,filetype"`
	Path     string   `json:"path"`
}

// CommentRequest is the body of a create-comment call.
type CommentRequest struct {
	Text   string         `json:"text"             validate:"required"`
	Anchor *CommentAnchor `json:"anchor,omitempty"`
}

package model

// Branch is a branch ref, as returned by the default-branch endpoint.
type Branch struct {
	ID              *string `json:"id"`
	DisplayID       *string `json:"displayId"`
	Type            *string `json:"type"`
	LatestCommit    *string `json:"latestCommit"`
	LatestChangeset *string `json:"latestChangeset"`
	IsDefault       bool    `json:"isDefault"`
	Errors          []Error `json:"errors,omitempty"`
}

// GetDisplayID returns the DisplayID field if it's non-nil, zero value otherwise.
func (b Branch) GetDisplayID() string {
	if b.DisplayID == nil {
		return ""
	}
	return *b.DisplayID
}

// HasErrors reports whether the branch is a sentinel carrying remote errors.
func (b Branch) HasErrors() bool { return len(b.Errors) > 0 }

// ErrorList returns the errors carried by the branch.
func (b Branch) ErrorList() []Error { return b.Errors }

func (b Branch) isNeutral() bool {
	return b.ID == nil &&
		b.DisplayID == nil &&
		b.Type == nil &&
		b.LatestCommit == nil &&
		b.LatestChangeset == nil &&
		!b.IsDefault
}

// Tag is a tag ref.
type Tag struct {
	ID              *string `json:"id"`
	DisplayID       *string `json:"displayId"`
	Type            *string `json:"type"`
	LatestCommit    *string `json:"latestCommit"`
	LatestChangeset *string `json:"latestChangeset"`
	Hash            *string `json:"hash"`
	Errors          []Error `json:"errors,omitempty"`
}

// GetDisplayID returns the DisplayID field if it's non-nil, zero value otherwise.
func (t Tag) GetDisplayID() string {
	if t.DisplayID == nil {
		return ""
	}
	return *t.DisplayID
}

// HasErrors reports whether the tag is a sentinel carrying remote errors.
func (t Tag) HasErrors() bool { return len(t.Errors) > 0 }

// ErrorList returns the errors carried by the tag.
func (t Tag) ErrorList() []Error { return t.Errors }

func (t Tag) isNeutral() bool {
	return t.ID == nil &&
		t.DisplayID == nil &&
		t.Type == nil &&
		t.LatestCommit == nil &&
		t.LatestChangeset == nil &&
		t.Hash == nil
}

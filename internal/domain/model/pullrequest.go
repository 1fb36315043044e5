package model

// User is a Bitbucket user account.
type User struct {
	Name         *string `json:"name"`
	EmailAddress *string `json:"emailAddress"`
	ID           int     `json:"id"`
	DisplayName  *string `json:"displayName"`
	Active       bool    `json:"active"`
	Slug         *string `json:"slug"`
	Type         *string `json:"type"`
}

// GetName returns the Name field if it's non-nil, zero value otherwise.
func (u *User) GetName() string {
	if u == nil || u.Name == nil {
		return ""
	}
	return *u.Name
}

// Person is a user in a pull request role (author, reviewer or participant).
type Person struct {
	User     *User   `json:"user"`
	Role     *string `json:"role"`
	Approved bool    `json:"approved"`
	Status   *string `json:"status"`
}

// Reference is one end (source or target) of a pull request.
type Reference struct {
	ID           *string     `json:"id"`
	DisplayID    *string     `json:"displayId"`
	LatestCommit *string     `json:"latestCommit"`
	Repository   *Repository `json:"repository"`
}

// PullRequest is a Bitbucket pull request.
type PullRequest struct {
	ID           int        `json:"id"`
	Version      int        `json:"version"`
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	State        *string    `json:"state"`
	Open         bool       `json:"open"`
	Closed       bool       `json:"closed"`
	CreatedDate  int64      `json:"createdDate"` // Epoch millis.
	UpdatedDate  int64      `json:"updatedDate"` // Epoch millis.
	FromRef      *Reference `json:"fromRef"`
	ToRef        *Reference `json:"toRef"`
	Locked       bool       `json:"locked"`
	Author       *Person    `json:"author"`
	Reviewers    []Person   `json:"reviewers"`
	Participants []Person   `json:"participants"`
	Links        *Links     `json:"links"`
	Errors       []Error    `json:"errors,omitempty"`
}

// GetTitle returns the Title field if it's non-nil, zero value otherwise.
func (pr PullRequest) GetTitle() string {
	if pr.Title == nil {
		return ""
	}
	return *pr.Title
}

// HasErrors reports whether the pull request is a sentinel carrying remote errors.
func (pr PullRequest) HasErrors() bool { return len(pr.Errors) > 0 }

// ErrorList returns the errors carried by the pull request.
func (pr PullRequest) ErrorList() []Error { return pr.Errors }

func (pr PullRequest) isNeutral() bool {
	return pr.ID == -1 &&
		pr.Version == -1 &&
		pr.Title == nil &&
		pr.Description == nil &&
		pr.State == nil &&
		!pr.Open &&
		!pr.Closed &&
		pr.CreatedDate == 0 &&
		pr.UpdatedDate == 0 &&
		pr.FromRef == nil &&
		pr.ToRef == nil &&
		!pr.Locked &&
		pr.Author == nil &&
		pr.Reviewers == nil &&
		pr.Participants == nil &&
		pr.Links == nil
}

// MergeVeto is a reason the server refuses to merge a pull request.
type MergeVeto struct {
	SummaryMessage  string `json:"summaryMessage"`
	DetailedMessage string `json:"detailedMessage"`
}

// MergeStatus reports whether a pull request can be merged.
type MergeStatus struct {
	CanMerge   bool        `json:"canMerge"`
	Conflicted bool        `json:"conflicted"`
	Vetoes     []MergeVeto `json:"vetoes"`
	Errors     []Error     `json:"errors,omitempty"`
}

// HasErrors reports whether the merge status is a sentinel carrying remote errors.
func (m MergeStatus) HasErrors() bool { return len(m.Errors) > 0 }

// ErrorList returns the errors carried by the merge status.
func (m MergeStatus) ErrorList() []Error { return m.Errors }

func (m MergeStatus) isNeutral() bool {
	return !m.CanMerge && !m.Conflicted && m.Vetoes == nil
}

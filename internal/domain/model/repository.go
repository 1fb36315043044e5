package model

// Link is a single hyperlink in a Links collection.
type Link struct {
	Href string  `json:"href"`
	Name *string `json:"name"`
}

// Links groups the self and clone links of a project or repository.
type Links struct {
	Self  []Link `json:"self"`
	Clone []Link `json:"clone"`
}

// Project is a Bitbucket project, the container of repositories.
type Project struct {
	Key         *string `json:"key"`
	ID          int     `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Public      bool    `json:"public"`
	Type        *string `json:"type"`
	Links       *Links  `json:"links"`
	Errors      []Error `json:"errors,omitempty"`
}

// GetKey returns the Key field if it's non-nil, zero value otherwise.
func (p Project) GetKey() string {
	if p.Key == nil {
		return ""
	}
	return *p.Key
}

// HasErrors reports whether the project is a sentinel carrying remote errors.
func (p Project) HasErrors() bool { return len(p.Errors) > 0 }

// ErrorList returns the errors carried by the project.
func (p Project) ErrorList() []Error { return p.Errors }

func (p Project) isNeutral() bool {
	return p.Key == nil &&
		p.ID == -1 &&
		p.Name == nil &&
		p.Description == nil &&
		!p.Public &&
		p.Type == nil &&
		p.Links == nil
}

// Repository is a Bitbucket repository.
type Repository struct {
	Slug          *string  `json:"slug"`
	ID            int      `json:"id"`
	Name          *string  `json:"name"`
	ScmID         *string  `json:"scmId"`
	State         *string  `json:"state"`
	StatusMessage *string  `json:"statusMessage"`
	Forkable      bool     `json:"forkable"`
	Project       *Project `json:"project"`
	Public        bool     `json:"public"`
	Links         *Links   `json:"links"`
	Errors        []Error  `json:"errors,omitempty"`
}

// GetSlug returns the Slug field if it's non-nil, zero value otherwise.
func (r Repository) GetSlug() string {
	if r.Slug == nil {
		return ""
	}
	return *r.Slug
}

// HasErrors reports whether the repository is a sentinel carrying remote errors.
func (r Repository) HasErrors() bool { return len(r.Errors) > 0 }

// ErrorList returns the errors carried by the repository.
func (r Repository) ErrorList() []Error { return r.Errors }

func (r Repository) isNeutral() bool {
	return r.Slug == nil &&
		r.ID == -1 &&
		r.Name == nil &&
		r.ScmID == nil &&
		r.State == nil &&
		r.StatusMessage == nil &&
		!r.Forkable &&
		r.Project == nil &&
		!r.Public &&
		r.Links == nil
}

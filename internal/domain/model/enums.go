package model

// LineType classifies the diff line a comment anchor points at.
type LineType string

const (
	LineTypeAdded   LineType = "ADDED"
	LineTypeRemoved LineType = "REMOVED"
	LineTypeContext LineType = "CONTEXT"
)

// Valid reports whether t is one of the known line types.
func (t LineType) Valid() bool {
	switch t {
	case LineTypeAdded, LineTypeRemoved, LineTypeContext:
		return true
	}
	return false
}

// FileType identifies which side of the diff an anchor refers to.
type FileType string

const (
	FileTypeFrom FileType = "FROM" // Source side of the diff.
	FileTypeTo   FileType = "TO"   // Destination side of the diff.
)

// Valid reports whether t is one of the known file types.
func (t FileType) Valid() bool {
	return t == FileTypeFrom || t == FileTypeTo
}

// Pull request states as reported in the "state" field.
const (
	PRStateOpen     = "OPEN"
	PRStateMerged   = "MERGED"
	PRStateDeclined = "DECLINED"
)

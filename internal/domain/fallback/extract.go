// Package fallback turns failed Bitbucket calls into typed sentinel records.
//
// The transport layer hands a failure's raw body to a Fallback, which parses
// the {"errors":[...]} payload and builds a record of the operation's
// declared type whose real fields are neutral defaults and whose Errors list
// carries what the server reported. Payloads that cannot be interpreted are
// never papered over: they propagate as *PayloadError.
package fallback

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/ericfisherdev/mybitbucket/internal/domain/model"
)

// Fatal extraction conditions. Use errors.Is against a returned error.
var (
	ErrMalformedFailurePayload = errors.New("failure payload is not valid JSON")
	ErrUnexpectedFailureShape  = errors.New("failure payload is not a JSON object")
	ErrMissingErrorsArray      = errors.New("failure payload has no errors array")
	ErrMalformedErrorEntry     = errors.New("failure payload has a malformed error entry")
)

// PayloadError reports a failure body that could not be turned into errors.
// Raw holds the original text so callers can diagnose the remote failure.
type PayloadError struct {
	Kind  error  // One of the Err* conditions above.
	Raw   string // The failure text as received.
	Index int    // Offending entry index for ErrMalformedErrorEntry, else -1.
	Field string // Offending entry field, if any.
}

func (e *PayloadError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%v: entry %d field %q:\n%s", e.Kind, e.Index, e.Field, e.Raw)
	case e.Index >= 0:
		return fmt.Sprintf("%v: entry %d:\n%s", e.Kind, e.Index, e.Raw)
	default:
		return fmt.Sprintf("%v:\n%s", e.Kind, e.Raw)
	}
}

// Unwrap returns the condition for errors.Is support.
func (e *PayloadError) Unwrap() error { return e.Kind }

// maxNesting bounds how deeply a failure body may nest objects and arrays.
// gjson validates recursively, so deeper input is rejected before it runs.
const maxNesting = 64

// errorFields are read from every entry, in record order.
var errorFields = [...]string{"context", "message", "exceptionName"}

// ExtractErrors parses a failure body of the form
//
//	{"errors":[{"context":...,"message":...,"exceptionName":...}, ...]}
//
// and returns one Error per array element in document order. Explicit null
// and missing keys both become nil fields. An empty array yields an empty,
// non-nil slice.
func ExtractErrors(failureText string) ([]model.Error, error) {
	if nestedDeeperThan(failureText, maxNesting) || !gjson.Valid(failureText) {
		return nil, &PayloadError{Kind: ErrMalformedFailurePayload, Raw: failureText, Index: -1}
	}

	root := gjson.Parse(failureText)
	if !root.IsObject() {
		return nil, &PayloadError{Kind: ErrUnexpectedFailureShape, Raw: failureText, Index: -1}
	}

	// Absent, null and non-array members are all treated as missing.
	member := root.Get("errors")
	if !member.IsArray() {
		return nil, &PayloadError{Kind: ErrMissingErrorsArray, Raw: failureText, Index: -1}
	}

	entries := member.Array()
	out := make([]model.Error, 0, len(entries))

	for i, entry := range entries {
		if !entry.IsObject() {
			return nil, &PayloadError{Kind: ErrMalformedErrorEntry, Raw: failureText, Index: i}
		}

		var values [len(errorFields)]*string
		for j, name := range errorFields {
			v, ok := scalarString(entry.Get(name))
			if !ok {
				return nil, &PayloadError{Kind: ErrMalformedErrorEntry, Raw: failureText, Index: i, Field: name}
			}
			values[j] = v
		}

		out = append(out, model.NewError(values[0], values[1], values[2]))
	}

	return out, nil
}

// scalarString maps a JSON value to a nullable string. Numbers and booleans
// are taken in their textual form; objects and arrays are rejected.
func scalarString(v gjson.Result) (*string, bool) {
	switch v.Type {
	case gjson.Null:
		return nil, true
	case gjson.String:
		s := v.Str
		return &s, true
	case gjson.Number, gjson.True, gjson.False:
		s := v.Raw
		return &s, true
	default:
		return nil, false
	}
}

// nestedDeeperThan reports whether s opens more than limit objects or arrays
// at once. Brackets inside strings are ignored.
func nestedDeeperThan(s string, limit int) bool {
	depth := 0
	inString, escaped := false, false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString:
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{' || c == '[':
			depth++
			if depth > limit {
				return true
			}
		case c == '}' || c == ']':
			depth--
		}
	}

	return false
}

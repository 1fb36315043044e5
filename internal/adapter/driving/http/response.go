package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/mybitbucket/internal/application"
	"github.com/ericfisherdev/mybitbucket/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// recordStatus is 502 for a sentinel and 200 otherwise.
func recordStatus(hasErrors bool) int {
	if hasErrors {
		return http.StatusBadGateway
	}
	return http.StatusOK
}

// CommentResponse is a comment in its wire shape plus rendered text. Replies
// are converted recursively so each carries its own textHtml.
type CommentResponse struct {
	model.PullRequestComment
	Comments   []CommentResponse `json:"comments"`
	TextHTML   string            `json:"textHtml,omitempty"`
	ReplyCount int               `json:"replyCount"`
}

func toCommentResponse(c model.PullRequestComment) CommentResponse {
	var replies []CommentResponse
	if c.Comments != nil {
		replies = make([]CommentResponse, 0, len(c.Comments))
		for _, reply := range c.Comments {
			replies = append(replies, toCommentResponse(reply))
		}
	}

	return CommentResponse{
		PullRequestComment: c,
		Comments:           replies,
		TextHTML:           commentHTML(c.GetText()),
		ReplyCount:         application.CountReplies(c),
	}
}

// CommentPageResponse is one page of rendered comments.
type CommentPageResponse struct {
	Start         int               `json:"start"`
	Size          int               `json:"size"`
	Limit         int               `json:"limit"`
	IsLastPage    bool              `json:"isLastPage"`
	NextPageStart *int              `json:"nextPageStart"`
	Values        []CommentResponse `json:"values"`
}

func toCommentPageResponse(p model.Page[model.PullRequestComment]) CommentPageResponse {
	values := make([]CommentResponse, 0, len(p.Values))
	for _, c := range p.Values {
		values = append(values, toCommentResponse(c))
	}
	return CommentPageResponse{
		Start:         p.Start,
		Size:          p.Size,
		Limit:         p.Limit,
		IsLastPage:    p.IsLastPage,
		NextPageStart: p.NextPageStart,
		Values:        values,
	}
}

// DeleteResponse reports the outcome of a comment delete.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// FailureResponse is the JSON representation of a journal entry.
type FailureResponse struct {
	ID         int64         `json:"id"`
	Operation  string        `json:"operation"`
	Record     string        `json:"record"`
	Resource   string        `json:"resource"`
	Message    string        `json:"message"`
	Errors     []model.Error `json:"errors"`
	OccurredAt string        `json:"occurred_at"`
}

func toFailureResponse(f model.FailureRecord) FailureResponse {
	errs := f.Errors
	if errs == nil {
		errs = []model.Error{}
	}
	return FailureResponse{
		ID:         f.ID,
		Operation:  f.Operation,
		Record:     f.Record,
		Resource:   f.Resource,
		Message:    f.PrimaryMessage(),
		Errors:     errs,
		OccurredAt: f.OccurredAt.UTC().Format(time.RFC3339),
	}
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
	Error  string `json:"error,omitempty"`
}

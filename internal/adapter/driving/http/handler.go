// Package httphandler serves the REST API over net/http.
package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/mybitbucket/internal/application"
	"github.com/ericfisherdev/mybitbucket/internal/domain/model"
	"github.com/ericfisherdev/mybitbucket/internal/domain/port/driven"
)

// maxRequestBody bounds create-comment bodies.
const maxRequestBody = 1 << 20

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	lookup *application.LookupService
	db     Pinger
	logger *slog.Logger
}

// NewHandler creates a Handler. db may be nil when no journal is configured.
func NewHandler(lookup *application.LookupService, db Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		lookup: lookup,
		db:     db,
		logger: logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with request ID, logging and recovery middleware. Metrics are served from
// gatherer.
func NewServeMux(h *Handler, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	const repo = "/api/v1/projects/{project}/repos/{repo}"
	const pr = repo + "/pull-requests/{id}"

	mux.HandleFunc("GET /api/v1/projects/{project}", h.GetProject)
	mux.HandleFunc("GET "+repo, h.GetRepository)
	mux.HandleFunc("GET "+repo+"/branches/default", h.GetDefaultBranch)
	mux.HandleFunc("GET "+repo+"/tags/{tag}", h.GetTag)
	mux.HandleFunc("GET "+pr, h.GetPullRequest)
	mux.HandleFunc("GET "+pr+"/merge", h.GetMergeStatus)
	mux.HandleFunc("GET "+pr+"/comments", h.ListComments)
	mux.HandleFunc("POST "+pr+"/comments", h.CreateComment)
	mux.HandleFunc("GET "+pr+"/comments/{commentID}", h.GetComment)
	mux.HandleFunc("DELETE "+pr+"/comments/{commentID}", h.DeleteComment)
	mux.HandleFunc("GET /api/v1/failures", h.ListFailures)
	mux.HandleFunc("GET /api/v1/failures/counts", h.FailureCounts)
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// GetProject returns a project.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.lookup.Project(r.Context(), r.PathValue("project"))
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	writeJSON(w, recordStatus(project.HasErrors()), project)
}

// GetRepository returns a repository.
func (h *Handler) GetRepository(w http.ResponseWriter, r *http.Request) {
	repo, err := h.lookup.Repository(r.Context(), r.PathValue("project"), r.PathValue("repo"))
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	writeJSON(w, recordStatus(repo.HasErrors()), repo)
}

// GetDefaultBranch returns a repository's default branch.
func (h *Handler) GetDefaultBranch(w http.ResponseWriter, r *http.Request) {
	branch, err := h.lookup.DefaultBranch(r.Context(), r.PathValue("project"), r.PathValue("repo"))
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	writeJSON(w, recordStatus(branch.HasErrors()), branch)
}

// GetTag returns a tag.
func (h *Handler) GetTag(w http.ResponseWriter, r *http.Request) {
	tag, err := h.lookup.Tag(r.Context(), r.PathValue("project"), r.PathValue("repo"), r.PathValue("tag"))
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	writeJSON(w, recordStatus(tag.HasErrors()), tag)
}

// GetPullRequest returns a pull request.
func (h *Handler) GetPullRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	pr, err := h.lookup.PullRequest(r.Context(), r.PathValue("project"), r.PathValue("repo"), id)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	writeJSON(w, recordStatus(pr.HasErrors()), pr)
}

// GetMergeStatus returns whether a pull request can be merged.
func (h *Handler) GetMergeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	status, err := h.lookup.MergeStatus(r.Context(), r.PathValue("project"), r.PathValue("repo"), id)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	writeJSON(w, recordStatus(status.HasErrors()), status)
}

// GetComment returns a comment with rendered text and replies.
func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	commentID, ok := pathInt(w, r, "commentID")
	if !ok {
		return
	}

	comment, err := h.lookup.Comment(r.Context(), r.PathValue("project"), r.PathValue("repo"), id, commentID)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	writeJSON(w, recordStatus(comment.HasErrors()), toCommentResponse(comment))
}

// ListComments returns one page of comments on the file named by ?path=.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	q := r.URL.Query()
	opts := driven.CommentListOptions{Path: q.Get("path")}
	if opts.Path == "" {
		writeError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}
	var err error
	if opts.Start, err = queryInt(q.Get("start")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid start")
		return
	}
	if opts.Limit, err = queryInt(q.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	page, err := h.lookup.Comments(r.Context(), r.PathValue("project"), r.PathValue("repo"), id, opts)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentPageResponse(page))
}

// CreateComment posts a comment from a model.CommentRequest body.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	var req model.CommentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := model.ValidateCommentRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.lookup.CreateComment(r.Context(), r.PathValue("project"), r.PathValue("repo"), id, req)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}

	status := http.StatusCreated
	if comment.HasErrors() {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, toCommentResponse(comment))
}

// DeleteComment deletes a comment at ?version=.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	commentID, ok := pathInt(w, r, "commentID")
	if !ok {
		return
	}
	version, err := queryInt(r.URL.Query().Get("version"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid version")
		return
	}

	deleted, err := h.lookup.DeleteComment(r.Context(), r.PathValue("project"), r.PathValue("repo"), id, commentID, version)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	writeJSON(w, recordStatus(!deleted), DeleteResponse{Deleted: deleted})
}

// ListFailures returns the newest journal entries, up to ?limit=.
func (h *Handler) ListFailures(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	failures, err := h.lookup.RecentFailures(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list failures", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]FailureResponse, 0, len(failures))
	for _, f := range failures {
		resp = append(resp, toFailureResponse(f))
	}
	writeJSON(w, http.StatusOK, resp)
}

// FailureCounts returns journalled failures per record type.
func (h *Handler) FailureCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.lookup.FailureCounts(r.Context())
	if err != nil {
		h.logger.Error("failed to count failures", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// Health reports liveness and journal reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}

	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Error = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// upstreamError answers a call whose exchange with Bitbucket failed outright.
func (h *Handler) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}

	h.logger.Error("bitbucket call failed",
		"request_id", RequestID(r.Context()),
		"path", r.URL.Path,
		"error", err,
	)

	if errors.Is(err, context.DeadlineExceeded) {
		writeError(w, http.StatusGatewayTimeout, "bitbucket did not respond in time")
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

// pathInt parses a numeric path value, writing a 400 on failure.
func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil || v < 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}

// queryInt parses an optional non-negative query value; empty means zero.
func queryInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, strconv.ErrRange
	}
	return v, nil
}

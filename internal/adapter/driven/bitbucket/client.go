// Package bitbucket implements the BitbucketClient port against the
// Bitbucket Server REST API 1.0.
package bitbucket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/mybitbucket/internal/domain/fallback"
	"github.com/ericfisherdev/mybitbucket/internal/domain/model"
	"github.com/ericfisherdev/mybitbucket/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.BitbucketClient = (*Client)(nil)

const apiPath = "rest/api/1.0"

// Read limits for response bodies. Failure bodies are small JSON documents;
// anything past maxFailureBody is cut off and fails extraction.
const (
	maxResponseBody = 8 << 20
	maxFailureBody  = 1 << 20
)

// Config holds the connection settings for a Bitbucket Server instance.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client implements the driven.BitbucketClient port over plain net/http.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	token   string
}

// NewClient creates a Bitbucket client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (sleeps on 429 and secondary rate limits)
//  3. net/http with bearer token auth
func NewClient(cfg Config) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	rateLimitClient.Timeout = cfg.Timeout

	return NewClientWithHTTPClient(rateLimitClient, cfg.BaseURL, cfg.Token)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing base URL: %q is not absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	return &Client{http: httpClient, baseURL: u, token: token}, nil
}

// GetProject retrieves a project by key.
func (c *Client) GetProject(ctx context.Context, projectKey string) (model.Project, error) {
	return fetch[model.Project](ctx, c, http.MethodGet, projectPath(projectKey), nil, nil)
}

// GetRepository retrieves a repository by project key and slug.
func (c *Client) GetRepository(ctx context.Context, projectKey, repoSlug string) (model.Repository, error) {
	return fetch[model.Repository](ctx, c, http.MethodGet, repoPath(projectKey, repoSlug), nil, nil)
}

// GetDefaultBranch retrieves the repository's default branch.
func (c *Client) GetDefaultBranch(ctx context.Context, projectKey, repoSlug string) (model.Branch, error) {
	p := repoPath(projectKey, repoSlug) + "/branches/default"
	return fetch[model.Branch](ctx, c, http.MethodGet, p, nil, nil)
}

// GetTag retrieves a tag by name.
func (c *Client) GetTag(ctx context.Context, projectKey, repoSlug, tagName string) (model.Tag, error) {
	p := repoPath(projectKey, repoSlug) + "/tags/" + url.PathEscape(tagName)
	return fetch[model.Tag](ctx, c, http.MethodGet, p, nil, nil)
}

// GetPullRequest retrieves a pull request by ID.
func (c *Client) GetPullRequest(ctx context.Context, projectKey, repoSlug string, prID int) (model.PullRequest, error) {
	return fetch[model.PullRequest](ctx, c, http.MethodGet, prPath(projectKey, repoSlug, prID), nil, nil)
}

// GetMergeStatus tests whether a pull request can be merged.
func (c *Client) GetMergeStatus(ctx context.Context, projectKey, repoSlug string, prID int) (model.MergeStatus, error) {
	p := prPath(projectKey, repoSlug, prID) + "/merge"
	return fetch[model.MergeStatus](ctx, c, http.MethodGet, p, nil, nil)
}

// GetPullRequestComment retrieves a single comment, replies included.
func (c *Client) GetPullRequestComment(ctx context.Context, projectKey, repoSlug string, prID, commentID int) (model.PullRequestComment, error) {
	p := commentPath(projectKey, repoSlug, prID) + "/" + strconv.Itoa(commentID)
	return fetch[model.PullRequestComment](ctx, c, http.MethodGet, p, nil, nil)
}

// CreatePullRequestComment adds a comment, optionally anchored to a diff line.
// An invalid request is rejected locally and never sent.
func (c *Client) CreatePullRequestComment(ctx context.Context, projectKey, repoSlug string, prID int, req model.CommentRequest) (model.PullRequestComment, error) {
	if err := model.ValidateCommentRequest(req); err != nil {
		return model.PullRequestComment{}, err
	}
	return fetch[model.PullRequestComment](ctx, c, http.MethodPost, commentPath(projectKey, repoSlug, prID), nil, req)
}

// ListPullRequestComments retrieves one page of comments on a file path.
func (c *Client) ListPullRequestComments(ctx context.Context, projectKey, repoSlug string, prID int, opts driven.CommentListOptions) (model.Page[model.PullRequestComment], error) {
	var page model.Page[model.PullRequestComment]

	query := url.Values{}
	query.Set("path", opts.Path)
	if opts.Start > 0 {
		query.Set("start", strconv.Itoa(opts.Start))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	p := commentPath(projectKey, repoSlug, prID)
	body, err := c.do(ctx, http.MethodGet, p, query, nil)
	if err != nil {
		return page, fmt.Errorf("listing comments for %s: %w", p, err)
	}

	if err := json.Unmarshal(body, &page); err != nil {
		return page, fmt.Errorf("decoding comments page for %s: %w", p, err)
	}
	for i, comment := range page.Values {
		if _, err := model.New(comment); err != nil {
			return page, fmt.Errorf("comments page for %s, value %d: %w", p, i, err)
		}
	}

	return page, nil
}

// DeletePullRequestComment deletes a comment at the given version. Any
// remote failure yields false without an error.
func (c *Client) DeletePullRequestComment(ctx context.Context, projectKey, repoSlug string, prID, commentID, version int) (bool, error) {
	p := commentPath(projectKey, repoSlug, prID) + "/" + strconv.Itoa(commentID)
	query := url.Values{"version": {strconv.Itoa(version)}}

	_, err := c.do(ctx, http.MethodDelete, p, query, nil)
	if err == nil {
		return true, nil
	}

	var failure *TransportError
	if errors.As(err, &failure) {
		return fallback.FalseOnError(failure)
	}
	return false, err
}

// fetch performs one exchange and decodes the result as T. A non-2xx
// response is handed to T's fallback and comes back as a sentinel record;
// an unreadable failure body is returned as the fallback's error.
func fetch[T model.Record](ctx context.Context, c *Client, method, p string, query url.Values, payload any) (T, error) {
	var zero T

	body, err := c.do(ctx, method, p, query, payload)

	var failure *TransportError
	if errors.As(err, &failure) {
		sentinel, ferr := fallback.For[T]()(failure)
		if ferr != nil {
			return zero, ferr
		}

		slog.Info("bitbucket call failed",
			"method", method,
			"path", p,
			"status", failure.StatusCode,
			"errors", len(sentinel.ErrorList()),
		)
		return sentinel, nil
	}
	if err != nil {
		return zero, err
	}

	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return zero, fmt.Errorf("decoding %s %s: %w", method, p, err)
	}
	return model.New(v)
}

// do sends one request and returns the response body. Non-2xx responses
// come back as *TransportError.
func (c *Client) do(ctx context.Context, method, p string, query url.Values, payload any) ([]byte, error) {
	u, err := url.Parse(c.baseURL.String() + apiPath + p)
	if err != nil {
		return nil, fmt.Errorf("building %s %s URL: %w", method, p, err)
	}
	u.RawQuery = query.Encode()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s body: %w", method, p, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating %s %s request: %w", method, p, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, p, err)
	}
	defer resp.Body.Close()

	failed := resp.StatusCode < 200 || resp.StatusCode > 299

	limit := int64(maxResponseBody)
	if failed {
		limit = maxFailureBody
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("reading %s %s response: %w", method, p, err)
	}

	logExchange(resp, method, p, time.Since(start))

	if failed {
		return nil, &TransportError{
			Method:     method,
			Path:       p,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	return body, nil
}

// logExchange logs one API call and warns when the server's rate limit
// headers report little headroom.
func logExchange(resp *http.Response, method, p string, elapsed time.Duration) {
	slog.Debug("bitbucket api call",
		"method", method,
		"path", p,
		"status", resp.StatusCode,
		"duration", elapsed.Round(time.Millisecond),
		"cached", resp.Header.Get(httpcache.XFromCache) != "",
	)

	remaining, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	if err != nil {
		return
	}
	if remaining < 10 {
		slog.Warn("bitbucket rate limit low",
			"remaining", remaining,
			"limit", resp.Header.Get("X-RateLimit-Limit"),
		)
	}
}

func projectPath(projectKey string) string {
	return "/projects/" + url.PathEscape(projectKey)
}

func repoPath(projectKey, repoSlug string) string {
	return projectPath(projectKey) + "/repos/" + url.PathEscape(repoSlug)
}

func prPath(projectKey, repoSlug string, prID int) string {
	return repoPath(projectKey, repoSlug) + "/pull-requests/" + strconv.Itoa(prID)
}

func commentPath(projectKey, repoSlug string, prID int) string {
	return prPath(projectKey, repoSlug, prID) + "/comments"
}

// Package api is the HTTP client for the remote blog backend. It only
// reads posts; the backend owns creating and updating them.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	opListPosts  = "list posts"
	opGetPost    = "get post"
	opFetchPhoto = "fetch photo"

	userAgent = "blogfront/1.0"
)

// Config holds backend client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// ListOptions constrains ListPosts.
type ListOptions struct {
	PublishedOnly bool
}

// Client talks to the posts API. It does not cache responses.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// New creates a Client for the backend at cfg.BaseURL.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger.With("component", "api"),
	}
}

// ListPosts returns the post summaries, newest first as ordered by the backend.
func (c *Client) ListPosts(ctx context.Context, opts ListOptions) ([]PostSummary, error) {
	endpoint := c.baseURL + "/api/posts"
	if opts.PublishedOnly {
		endpoint += "?" + url.Values{"published": {"true"}}.Encode()
	}

	resp, err := c.get(ctx, opListPosts, endpoint, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return nil, &NetworkError{Op: opListPosts, StatusCode: resp.StatusCode}
	}

	var posts []PostSummary
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil && !errors.Is(err, io.EOF) {
		return nil, &NetworkError{Op: opListPosts, Err: fmt.Errorf("decode response: %w", err)}
	}
	if posts == nil {
		posts = []PostSummary{}
	}
	return posts, nil
}

// GetPost returns the post with the given slug.
func (c *Client) GetPost(ctx context.Context, slug string) (Post, error) {
	if strings.TrimSpace(slug) == "" {
		return Post{}, &NotFoundError{Resource: "post", Key: slug}
	}

	resp, err := c.get(ctx, opGetPost, c.baseURL+"/api/posts/"+url.PathEscape(slug), "application/json")
	if err != nil {
		return Post{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Post{}, &NotFoundError{Resource: "post", Key: slug}
	case !success(resp.StatusCode):
		return Post{}, &NetworkError{Op: opGetPost, StatusCode: resp.StatusCode}
	}

	var post Post
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return Post{}, &NetworkError{Op: opGetPost, Err: fmt.Errorf("decode response: %w", err)}
	}
	return post, nil
}

// FetchPhoto opens the named photo on the backend. The caller must close
// the returned body.
func (c *Client) FetchPhoto(ctx context.Context, filename string) (io.ReadCloser, string, error) {
	resp, err := c.get(ctx, opFetchPhoto, c.baseURL+"/photos/"+url.PathEscape(filename), "image/*")
	if err != nil {
		return nil, "", err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, "", &NotFoundError{Resource: "photo", Key: filename}
	case !success(resp.StatusCode):
		resp.Body.Close()
		return nil, "", &NetworkError{Op: opFetchPhoto, StatusCode: resp.StatusCode}
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func success(code int) bool {
	return code >= 200 && code <= 299
}

func (c *Client) get(ctx context.Context, op, endpoint, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.logger.Debug("request canceled", "op", op, "url", endpoint)
		}
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("execute request: %w", err)}
	}

	c.logger.Debug("backend request",
		"op", op,
		"url", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return resp, nil
}

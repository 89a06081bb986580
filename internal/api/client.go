// Package api implements the Raindrop.io REST client. All commands go
// through Client: it injects the bearer token, retries rate limits and
// server errors, maps failures onto the CLI error taxonomy, and
// short-circuits mutating requests under dry-run.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	errs "raindrip/internal/errors"
	"raindrip/internal/logging"
)

const (
	// DefaultBaseURL is the Raindrop.io REST API root.
	DefaultBaseURL = "https://api.raindrop.io/rest/v1"
	// DefaultWaybackURL is the archive.org availability endpoint.
	DefaultWaybackURL = "https://archive.org/wayback/available"

	maxRetries        = 3
	defaultRetryAfter = 10 * time.Second
	serverRetryDelay  = 2 * time.Second
	maxBodySize       = 16 << 20
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	WaybackURL string
	Timeout    time.Duration // default 30s
	DryRun     bool
	PageSize   int // search page size, default 50 (the API cap)
	Logger     *logging.Logger
}

// Client talks to the Raindrop.io API on behalf of one token.
type Client struct {
	baseURL    string
	waybackURL string
	http       *http.Client // bearer-authenticated
	plain      *http.Client // unauthenticated, for covers and wayback
	dryRun     bool
	pageSize   int
	logger     *logging.Logger

	// sleep is swapped out in tests so retry paths run instantly.
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a Client for token.
func New(token string, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.WaybackURL == "" {
		opts.WaybackURL = DefaultWaybackURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.PageSize <= 0 || opts.PageSize > 50 {
		opts.PageSize = 50
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.InfoLevel})
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	authed := oauth2.NewClient(context.Background(), src)
	authed.Timeout = opts.Timeout

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		waybackURL: opts.WaybackURL,
		http:       authed,
		plain:      &http.Client{Timeout: opts.Timeout},
		dryRun:     opts.DryRun,
		pageSize:   opts.PageSize,
		logger:     opts.Logger,
		sleep:      sleepCtx,
	}
}

// DryRun reports whether the client is in dry-run mode.
func (c *Client) DryRun() bool {
	return c.dryRun
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// request issues one API call and returns the raw JSON body. Mutating
// methods short-circuit under dry-run before any network I/O. Rate
// limits honor Retry-After, 5xx responses are retried with a fixed
// delay, 4xx responses are never retried.
func (c *Client) request(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if c.dryRun && isMutating(method) {
		return c.dryRunResponse(method, path, payload)
	}

	var bodyBytes []byte
	if payload != nil {
		var err error
		bodyBytes, err = json.Marshal(payload)
		if err != nil {
			return nil, errs.NewInternalError(fmt.Errorf("marshaling request body: %w", err))
		}
	}

	retries := maxRetries
	for retries > 0 {
		var bodyReader io.Reader
		if bodyBytes != nil {
			bodyReader = bytes.NewReader(bodyBytes)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return nil, errs.NewInternalError(err)
		}
		req.Header.Set("Accept", "application/json")
		if bodyBytes != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		requestID := uuid.NewString()
		req.Header.Set("X-Request-Id", requestID)

		c.logger.Debug("API request", map[string]interface{}{
			"method":    method,
			"path":      path,
			"requestId": requestID,
		})

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, errs.NewNetworkError(err)
		}

		data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			retries--
			if retries == 0 {
				break
			}
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			c.logger.Warn("Rate limited, retrying", map[string]interface{}{
				"retryAfter":  retryAfter.String(),
				"retriesLeft": retries,
			})
			if err := c.sleep(ctx, retryAfter); err != nil {
				return nil, err
			}
			continue

		case resp.StatusCode >= 500:
			retries--
			if retries == 0 {
				return nil, errs.NewServerError(resp.StatusCode)
			}
			c.logger.Warn("Server error, retrying", map[string]interface{}{
				"status":      resp.StatusCode,
				"retriesLeft": retries,
			})
			if err := c.sleep(ctx, serverRetryDelay); err != nil {
				return nil, err
			}
			continue

		case resp.StatusCode >= 400:
			return nil, apiError(resp.StatusCode, data)

		default:
			if readErr != nil {
				return nil, errs.NewNetworkError(readErr)
			}
			if !json.Valid(data) {
				return nil, errs.NewAPIError(502, "Invalid JSON response from API")
			}
			return data, nil
		}
	}

	return nil, errs.NewRetriesExhausted()
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return defaultRetryAfter
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}

// apiError maps a 4xx response to the taxonomy, preferring the API's own
// errorMessage field when the body carries one.
func apiError(status int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	var parsed struct {
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.ErrorMessage != "" {
		detail = parsed.ErrorMessage
	}
	return errs.NewAPIError(status, fmt.Sprintf("API Error %d: %s", status, detail))
}

// dryRunResponse logs the intended mutation and fabricates a success
// payload so downstream formatting still works. Token-like keys never
// reach the log.
func (c *Client) dryRunResponse(method, path string, payload any) ([]byte, error) {
	fields := map[string]interface{}{
		"method": method,
		"path":   path,
	}
	if scrubbed := scrubPayload(payload); scrubbed != nil {
		fields["payload"] = scrubbed
	}
	c.logger.Info("[DRY RUN] skipping write request", fields)

	if method == http.MethodDelete {
		return []byte(`{"result":true}`), nil
	}
	return []byte(`{"result":true,"item":{"_id":0,"title":"Dry Run Item","link":"http://dryrun.com"},"items":[]}`), nil
}

// scrubPayload renders a payload for logging with token-bearing keys
// removed.
func scrubPayload(payload any) map[string]interface{} {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	for k := range m {
		if strings.Contains(strings.ToLower(k), "token") {
			delete(m, k)
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// download fetches an arbitrary URL (icon images) without auth headers.
func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.NewInternalError(err)
	}
	resp, err := c.plain.Do(req)
	if err != nil {
		return nil, errs.NewNetworkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, errs.NewAPIError(resp.StatusCode, fmt.Sprintf("downloading %s: HTTP %d", url, resp.StatusCode))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

// resultResponse is the {"result": bool} envelope most write endpoints
// return. Some endpoints omit the field on success, hence the pointer.
type resultResponse struct {
	Result *bool `json:"result"`
}

func parseResult(body []byte, missingMeans bool) (bool, error) {
	var resp resultResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, errs.NewInternalError(fmt.Errorf("parsing response: %w", err))
	}
	if resp.Result == nil {
		return missingMeans, nil
	}
	return *resp.Result, nil
}

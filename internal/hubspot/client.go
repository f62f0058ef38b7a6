// Package hubspot is a thin client for the CRM v3/v4 REST API, covering the
// endpoint surface the migration tool needs: object CRUD and search,
// properties and property groups, pipelines, schemas, and associations.
package hubspot

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

	"github.com/cenkalti/backoff/v4"
)

// DefaultBaseURL is the public HubSpot API host.
const DefaultBaseURL = "https://api.hubapi.com"

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3

	// Backoff caps per failure class. Retry-After on a 429 is honored up
	// to five minutes; without the header the exponential schedule is
	// capped at one minute for 429s and thirty seconds for server errors.
	maxRetryAfterWait  = 300 * time.Second
	maxRateLimitWait   = 60 * time.Second
	maxServerErrorWait = 30 * time.Second
	maxNetworkWait     = 10 * time.Second
)

// APIError describes a failed API call after any retries were exhausted.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Message    string
	Category   string
	Body       string
	Retriable  bool

	// retryAfter carries the parsed Retry-After header so the retry loop
	// can honor it after the response has been drained.
	retryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("hubspot: %s %s: %s", e.Method, e.URL, e.Message)
	}
	return fmt.Sprintf("hubspot: %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
}

// errorBody is the error envelope HubSpot returns for failed requests.
type errorBody struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	Category      string `json:"category"`
	CorrelationID string `json:"correlationId"`
}

// Client talks to a single portal with a single bearer token. The production
// and sandbox portals each get their own Client; tokens are never mixed.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
	sleep      func(time.Duration)
	newBackOff func() backoff.BackOff
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host. Tests use this to
// target a local fake portal.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries sets how many times a retryable failure is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithSleep replaces the sleep function used between retries.
func WithSleep(fn func(time.Duration)) Option {
	return func(c *Client) { c.sleep = fn }
}

// New returns a client for the portal the token belongs to.
func New(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		sleep:      time.Sleep,
	}
	c.newBackOff = func() backoff.BackOff {
		// BackOff implementations are stateful; always return a fresh one.
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = 500 * time.Millisecond
		bo.MaxInterval = maxRateLimitWait
		bo.MaxElapsedTime = 0
		return bo
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs one API call with retry on 429 and 5xx responses and on
// transport errors. 2xx decodes the body into out when out is non-nil; 204
// succeeds with no body; 409 is treated as success with the conflict payload
// (creates are idempotent by convention in this domain). Other statuses
// return a *APIError.
func (c *Client) Do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
	}

	bo := c.newBackOff()
	var lastErr *APIError

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := bo.NextBackOff()
			if wait == backoff.Stop {
				break
			}
			if lastErr != nil {
				wait = clampWait(wait, lastErr)
			}
			slog.Warn("retrying request",
				"method", method,
				"path", path,
				"attempt", attempt,
				"wait", wait,
			)
			c.sleep(wait)
		}

		done, err := c.attempt(ctx, method, reqURL, payload, out)
		if done {
			return err
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			lastErr = apiErr
		}
	}

	if lastErr == nil {
		lastErr = &APIError{Method: method, URL: reqURL, Message: "max retries exceeded", Retriable: true}
	}
	lastErr.Message = fmt.Sprintf("max retries (%d) exceeded: %s", c.maxRetries, lastErr.Message)
	return lastErr
}

// attempt performs a single request. done reports whether the outcome is
// final (success or non-retryable failure).
func (c *Client) attempt(ctx context.Context, method, reqURL string, payload []byte, out any) (done bool, err error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return true, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		return false, &APIError{Method: method, URL: reqURL, Message: err.Error(), Retriable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, &APIError{Method: method, URL: reqURL, Message: "read body: " + err.Error(), Retriable: true}
	}

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return true, nil

	case resp.StatusCode >= 200 && resp.StatusCode < 300,
		resp.StatusCode == http.StatusConflict:
		// 409 means the resource already exists, which the migrators
		// treat as success.
		if out != nil && len(raw) > 0 {
			if decodeErr := json.Unmarshal(raw, out); decodeErr != nil && resp.StatusCode != http.StatusConflict {
				// Non-JSON success bodies are allowed; leave out zeroed.
				slog.Debug("non-JSON success response", "url", reqURL, "status", resp.StatusCode)
			}
		}
		return true, nil

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return false, apiErrorFrom(resp, method, reqURL, raw, true)

	default:
		return true, apiErrorFrom(resp, method, reqURL, raw, false)
	}
}

func apiErrorFrom(resp *http.Response, method, reqURL string, raw []byte, retriable bool) *APIError {
	e := &APIError{
		StatusCode: resp.StatusCode,
		Method:     method,
		URL:        reqURL,
		Body:       string(raw),
		Message:    http.StatusText(resp.StatusCode),
		Retriable:  retriable,
	}
	var parsed errorBody
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Message != "" {
		e.Message = parsed.Message
		e.Category = parsed.Category
	}
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
			e.retryAfter = time.Duration(secs) * time.Second
		}
	}
	return e
}

func clampWait(wait time.Duration, last *APIError) time.Duration {
	switch {
	case last.StatusCode == http.StatusTooManyRequests && last.retryAfter > 0:
		return minDuration(last.retryAfter, maxRetryAfterWait)
	case last.StatusCode == http.StatusTooManyRequests:
		return minDuration(wait, maxRateLimitWait)
	case last.StatusCode >= 500:
		return minDuration(wait, maxServerErrorWait)
	default:
		return minDuration(wait, maxNetworkWait)
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

// IsNotFound reports whether err is an API error with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

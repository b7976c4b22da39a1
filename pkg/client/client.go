// Package client is the Go SDK of the citation network HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/turtacn/keyip-citation-network/pkg/errors"
)

const Version = "0.1.0"

// Logger receives request traces.  The zero Client logs nothing.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

// Client talks to one citenet API server.  It is safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	apiKey       string
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	citations *CitationsClient
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("citenet: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, e.Message, e.RequestID)
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *APIError) IsBadRequest() bool {
	return e.StatusCode == http.StatusBadRequest
}

func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// NewClient validates baseURL.  apiKey is optional and sent as a bearer token
// for deployments that front the server with an authenticating proxy.
func NewClient(baseURL string, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.InvalidParam("baseURL is required")
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.InvalidParam("invalid baseURL").WithCause(err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, errors.InvalidParam("baseURL scheme must be http or https")
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		userAgent:    fmt.Sprintf("citenet-go-sdk/%s", Version),
		logger:       noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.citations = &CitationsClient{client: c}
	return c, nil
}

// Citations groups the citation network endpoints.
func (c *Client) Citations() *CitationsClient {
	return c.citations
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryWaitMin
	b.MaxInterval = c.retryWaitMax
	b.RandomizationFactor = 0.25
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.retryMax)), ctx)
}

// get issues a GET and decodes a 2xx body into result.  Transport errors,
// 429 and 5xx are retried; other statuses fail at once.
func (c *Client) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	attempt := 0
	op := func() error {
		attempt++
		err := c.once(ctx, fullURL, path, result)
		if err == nil {
			return nil
		}
		if apiErr, ok := err.(*APIError); ok && !apiErr.IsServerError() && !apiErr.IsRateLimited() {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Debugf("attempt %d of GET %s failed (%v), retrying in %v", attempt, path, err, wait)
	}
	return backoff.RetryNotify(op, c.newBackOff(ctx), notify)
}

func (c *Client) once(ctx context.Context, fullURL, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	requestID := uuid.New().String()
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("GET %s failed: %v", path, err)
		return err
	}
	defer resp.Body.Close()
	c.logger.Debugf("GET %s %d (%v)", path, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: requestID}
		if len(body) > 0 {
			if jsonErr := json.Unmarshal(body, apiErr); jsonErr != nil || apiErr.Message == "" {
				apiErr.Message = strings.TrimSpace(string(body))
			}
			// the body overwrote these
			apiErr.StatusCode = resp.StatusCode
			if apiErr.RequestID == "" {
				apiErr.RequestID = requestID
			}
		}
		return apiErr
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to unmarshal response: %w", err))
		}
	}
	return nil
}

//Personal.AI order the ending

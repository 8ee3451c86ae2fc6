package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultQueueURL   = "https://queue.fal.run"
	DefaultStorageURL = "https://rest.alpha.fal.ai"

	StatusInQueue    = "IN_QUEUE"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// ErrMissingCredentials is returned before any request is made when no API key is configured.
var ErrMissingCredentials = errors.New("fal: API key is not configured (set FAL_KEY)")

// HTTPStatusError captures non-2xx responses from fal.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fal: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

type LogEntry struct {
	Message   string `json:"message"`
	Level     string `json:"level,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// QueueStatus is one poll result of a queued request.
type QueueStatus struct {
	RequestID     string     `json:"-"`
	Status        string     `json:"status"`
	QueuePosition *int       `json:"queue_position,omitempty"`
	ResponseURL   string     `json:"response_url,omitempty"`
	Logs          []LogEntry `json:"logs,omitempty"`
}

type submitResponse struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

// Client talks to the fal queue and storage REST APIs.
type Client struct {
	apiKey        string
	queueURL      string
	storageURL    string
	httpClient    *http.Client
	pollInterval  time.Duration
	onQueueUpdate func(QueueStatus)
}

type Option func(*Client)

func WithQueueURL(queueURL string) Option {
	return func(c *Client) {
		if queueURL = strings.TrimSpace(queueURL); queueURL != "" {
			c.queueURL = strings.TrimRight(queueURL, "/")
		}
	}
}

func WithStorageURL(storageURL string) Option {
	return func(c *Client) {
		if storageURL = strings.TrimSpace(storageURL); storageURL != "" {
			c.storageURL = strings.TrimRight(storageURL, "/")
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithQueueUpdateHandler registers a callback invoked after every status poll.
func WithQueueUpdateHandler(fn func(QueueStatus)) Option {
	return func(c *Client) {
		c.onQueueUpdate = fn
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       strings.TrimSpace(apiKey),
		queueURL:     DefaultQueueURL,
		storageURL:   DefaultStorageURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Subscribe submits input to the model queue, polls until the request is
// completed and decodes the result into out. Cancel ctx to bound the wait.
func (c *Client) Subscribe(ctx context.Context, model string, input any, out any) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingCredentials
	}
	model = strings.Trim(strings.TrimSpace(model), "/")
	if model == "" {
		return "", errors.New("fal: model must not be empty")
	}

	submitted, err := c.submit(ctx, model, input)
	if err != nil {
		return "", err
	}

	status, err := c.waitForCompletion(ctx, model, submitted)
	if err != nil {
		return submitted.RequestID, err
	}

	responseURL := firstNonEmpty(status.ResponseURL, submitted.ResponseURL, c.requestURL(model, submitted.RequestID))
	raw, err := c.doRequest(ctx, http.MethodGet, responseURL, nil, "")
	if err != nil {
		return submitted.RequestID, fmt.Errorf("fal: fetch result: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return submitted.RequestID, fmt.Errorf("fal: decode result: %w", err)
	}
	return submitted.RequestID, nil
}

func (c *Client) submit(ctx context.Context, model string, input any) (*submitResponse, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("fal: marshal input: %w", err)
	}

	raw, err := c.doRequest(ctx, http.MethodPost, c.queueURL+"/"+model, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, fmt.Errorf("fal: submit: %w", err)
	}

	var res submitResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("fal: decode submit response: %w", err)
	}
	if res.RequestID == "" {
		return nil, errors.New("fal: submit response has no request_id")
	}
	return &res, nil
}

func (c *Client) waitForCompletion(ctx context.Context, model string, submitted *submitResponse) (*QueueStatus, error) {
	statusURL := firstNonEmpty(submitted.StatusURL, c.requestURL(model, submitted.RequestID)+"/status")
	statusURL = withQuery(statusURL, "logs", "1")

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		raw, err := c.doRequest(ctx, http.MethodGet, statusURL, nil, "")
		if err != nil {
			return nil, fmt.Errorf("fal: poll status: %w", err)
		}

		var status QueueStatus
		if err := json.Unmarshal(raw, &status); err != nil {
			return nil, fmt.Errorf("fal: decode status: %w", err)
		}
		status.RequestID = submitted.RequestID

		if c.onQueueUpdate != nil {
			c.onQueueUpdate(status)
		}

		switch status.Status {
		case StatusCompleted:
			return &status, nil
		case StatusInQueue, StatusInProgress:
		default:
			return nil, fmt.Errorf("fal: unexpected queue status %q", status.Status)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) requestURL(model, requestID string) string {
	return fmt.Sprintf("%s/%s/requests/%s", c.queueURL, model, requestID)
}

func (c *Client) doRequest(ctx context.Context, method, target string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	target := req.URL.String()
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        target,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

func withQuery(target, key, value string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

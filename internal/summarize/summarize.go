// Package summarize talks to an external summarization service over HTTP.
// The engine never calls it; callers fetch a summary and decide what to do
// with the text themselves.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"mindcanvas/internal/config"
	"mindcanvas/internal/logging"
)

var (
	// ErrDisabled is returned when no endpoint is configured.
	ErrDisabled = errors.New("no summarization endpoint configured")
	// ErrEmptyContent is returned before any request when there is nothing to send.
	ErrEmptyContent = errors.New("nothing to summarize")
	// ErrBusy is returned while an earlier request is still in flight.
	ErrBusy = errors.New("a summarization request is already in flight")
)

const (
	baseRetryDelay = 250 * time.Millisecond
	maxRetryDelay  = 5 * time.Second
	maxBodyBytes   = 1 << 20

	defaultTimeout = 30 * time.Second
	defaultRetries = 2
)

// RequestError describes a failed request to the summarization service.
// Transient failures (network errors, 5xx) are retried; permanent ones
// (4xx, unusable responses) are not.
type RequestError struct {
	StatusCode int // zero when the request never reached the service
	Message    string
	Transient  bool
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("summarization request failed: %s", e.Message)
	}
	return fmt.Sprintf("summarization service returned %d: %s", e.StatusCode, e.Message)
}

// IsTransient reports whether err is a RequestError worth retrying.
func IsTransient(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Transient
}

// Client posts node content to the summarization endpoint. At most one
// request runs at a time; concurrent calls fail fast with ErrBusy.
type Client struct {
	endpoint   string
	apiKey     string
	maxRetries int
	httpClient *http.Client
	logger     logging.Logger
	inFlight   atomic.Bool
}

// NewClient builds a client from the summarize section of the config.
// A client with an empty endpoint is valid but reports Enabled() == false.
func NewClient(cfg config.SummarizeConfig, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNoop()
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	retries := defaultRetries
	if cfg.MaxRetries >= 0 {
		retries = cfg.MaxRetries
	}
	return &Client{
		endpoint:   strings.TrimSpace(cfg.Endpoint),
		apiKey:     cfg.APIKey,
		maxRetries: retries,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

type summarizeRequest struct {
	Content string `json:"content"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// Summarize sends content to the service and returns the summary text.
// Transient failures are retried with exponential backoff until the retry
// budget runs out; permanent failures return immediately.
func (c *Client) Summarize(ctx context.Context, content string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer c.inFlight.Store(false)

	payload, err := json.Marshal(summarizeRequest{Content: content})
	if err != nil {
		return "", fmt.Errorf("failed to encode summarization request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
			c.logger.Debug("retrying summarization request", "attempt", attempt+1, "delay", delay)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		summary, err := c.post(ctx, payload)
		if err == nil {
			return summary, nil
		}
		if !IsTransient(err) {
			return "", err
		}
		lastErr = err
	}
	if c.maxRetries == 0 {
		return "", lastErr
	}
	return "", fmt.Errorf("summarization failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) post(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &RequestError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &RequestError{Message: err.Error(), Transient: true}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &RequestError{StatusCode: resp.StatusCode, Message: err.Error(), Transient: true}
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return "", &RequestError{StatusCode: resp.StatusCode, Message: errorMessage(body), Transient: true}
	case resp.StatusCode >= http.StatusBadRequest:
		return "", &RequestError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	var out summarizeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &RequestError{StatusCode: resp.StatusCode, Message: "unparseable response body"}
	}
	summary := strings.TrimSpace(out.Summary)
	if summary == "" {
		return "", &RequestError{StatusCode: resp.StatusCode, Message: "response carried no summary"}
	}
	return summary, nil
}

func errorMessage(body []byte) string {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "no error detail"
	}
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

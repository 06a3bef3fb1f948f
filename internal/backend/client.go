// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the client for the remote solution-architect API.
//
// The backend answers conversation queries and generates AWS architecture
// diagrams, process flowcharts, and visualizations. This package implements
// the client for its chat endpoint and for fetching generated diagram images.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jeranaias/scribe-tui/internal/model"
)

// Configuration constants for the backend API.
const (
	// ChatPath is the conversation endpoint, relative to the base URL.
	ChatPath = "/app/api/v1/conversation/chat"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 120 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum allowed chat response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// MaxImageSize is the maximum allowed diagram image size.
	MaxImageSize = 25 * 1024 * 1024 // 25MB

	// AnswerFallback replaces an empty or missing answer field so the
	// transcript never shows a blank assistant turn.
	AnswerFallback = "I apologize, but I didn't receive a proper response."
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// Shared HTTP client with connection pooling for all backend requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	Timeout: DefaultTimeout,
}

// Error variables for common backend errors.
var (
	// ErrNotConfigured indicates the base URL is not set.
	ErrNotConfigured = errors.New("backend URL not configured")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates the backend could not be reached.
	ErrUnavailable = errors.New("backend unavailable")
)

// BackendError represents an error response from the backend API.
type BackendError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatRequest is the payload for the conversation endpoint.
type ChatRequest struct {
	History []model.HistoryEntry `json:"history"`
	Query   string               `json:"query"`
}

// chatResponse is the raw wire response from the conversation endpoint.
type chatResponse struct {
	Answer           string `json:"answer"`
	VisualizationURL string `json:"visualization_url"`
	ArchitectureURL  string `json:"architecture_url"`
	FlowchartURL     string `json:"flowchart_url"`
	HasArchitecture  bool   `json:"has_architecture"`
	HasFlowchart     bool   `json:"has_flowchart"`
	HasBothDiagrams  bool   `json:"has_both_diagrams"`
}

// ChatResult is the decoded, validated result of a chat call. Answer is
// never empty (the fallback is substituted); Diagrams is nil when the
// response carried nothing displayable.
type ChatResult struct {
	Answer   string
	Diagrams *model.DiagramSet
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a client for the remote solution-architect API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	timeout    time.Duration
}

// NewClient creates a new backend client for the given base URL.
//
// The base URL comes from configuration; if it is empty the client is still
// created but calls will fail with ErrNotConfigured.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: sharedHTTPClient,
		maxRetries: DefaultMaxRetries,
		timeout:    DefaultTimeout,
	}
}

// WithTimeout sets the request timeout.
// Replaces the shared pooled client with a client-local one so the shared
// transport keeps its pooling but the timeout applies only here.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	c.httpClient = &http.Client{
		Transport: sharedHTTPClient.Transport,
		Timeout:   timeout,
	}
	return c
}

// WithMaxRetries sets the maximum number of retry attempts.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	c.maxRetries = maxRetries
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsConfigured returns true if the client has a base URL configured.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// ResolveAssetURL host-qualifies a backend-relative asset path. Absolute
// URLs pass through unchanged.
func (c *Client) ResolveAssetURL(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return c.baseURL + ref
}

// =============================================================================
// LOGGING (without payload data)
// =============================================================================

// logRequest logs an API request without the body (may contain user content).
func (c *Client) logRequest(req *http.Request) {
	log.Printf("BACKEND | request method=%s path=%s", req.Method, req.URL.Path)
}

// logResponse logs an API response with duration, never the body.
func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("BACKEND | response status=%d duration=%v", resp.StatusCode, duration)
}

// =============================================================================
// CHAT
// =============================================================================

// Chat sends the conversation history and the new query to the backend and
// returns the decoded result.
//
// Transient errors (5xx, rate limiting) are retried with exponential
// backoff. Context cancellation is never retried.
func (c *Client) Chat(ctx context.Context, history []model.HistoryEntry, query string) (*ChatResult, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	reqBody := ChatRequest{
		History: history,
		Query:   query,
	}
	if reqBody.History == nil {
		reqBody.History = []model.HistoryEntry{}
	}

	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		// Apply backoff delay after first attempt
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.calculateBackoff(attempt)):
			}
		}

		result, err := c.doChat(ctx, reqBody)
		if err != nil {
			if c.isRetryable(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return result, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return nil, errors.New("max retries exceeded")
}

// doChat performs a single HTTP request to the conversation endpoint.
func (c *Client) doChat(ctx context.Context, reqBody ChatRequest) (*ChatResult, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ChatPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "scribe/1.0")

	c.logRequest(req)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(start))

	body, err := readResponse(resp, MaxResponseSize)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.handleErrorResponse(resp.StatusCode, body)
	}

	var wire chatResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return wire.toResult(), nil
}

// toResult applies answer defaulting and diagram validation.
func (r *chatResponse) toResult() *ChatResult {
	answer := strings.TrimSpace(r.Answer)
	if answer == "" {
		answer = AnswerFallback
	}

	diagrams := &model.DiagramSet{
		VisualizationURL: r.VisualizationURL,
		ArchitectureURL:  r.ArchitectureURL,
		FlowchartURL:     r.FlowchartURL,
		HasArchitecture:  r.HasArchitecture,
		HasFlowchart:     r.HasFlowchart,
		HasBothDiagrams:  r.HasBothDiagrams,
	}
	if diagrams.IsEmpty() {
		diagrams = nil
	}

	return &ChatResult{
		Answer:   answer,
		Diagrams: diagrams,
	}
}

// =============================================================================
// RAW RELAY
// =============================================================================

// RelayChat forwards an already-encoded request body to the conversation
// endpoint and returns the raw response body and status, without decoding.
// The proxy uses this for verbatim pass-through.
func (c *Client) RelayChat(ctx context.Context, body []byte) ([]byte, int, error) {
	if !c.IsConfigured() {
		return nil, 0, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ChatPath, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "scribe/1.0")

	c.logRequest(req)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(start))

	respBody, err := readResponse(resp, MaxResponseSize)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return respBody, resp.StatusCode, nil
}

// CheckReachable probes the backend host. Any HTTP response counts as
// reachable; only transport failures count against it.
func (c *Client) CheckReachable(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "scribe/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return nil
}

// =============================================================================
// IMAGE FETCH
// =============================================================================

// FetchImage downloads a diagram image. Relative refs are resolved against
// the base URL; absolute URLs are fetched as given.
func (c *Client) FetchImage(ctx context.Context, ref string) ([]byte, error) {
	target := c.ResolveAssetURL(ref)
	if target == "" {
		return nil, errors.New("empty image url")
	}
	if _, err := url.Parse(target); err != nil {
		return nil, fmt.Errorf("invalid image url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "scribe/1.0")

	c.logRequest(req)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &BackendError{
			Status:  resp.StatusCode,
			Message: "image fetch failed",
		}
	}

	return readResponse(resp, MaxImageSize)
}

// =============================================================================
// HELPERS
// =============================================================================

// readResponse reads the response body with a size limit.
//
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response, limit int64) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, limit)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Hitting the limit means the response was truncated
	if int64(len(body)) == limit {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", limit)
	}

	return body, nil
}

// handleErrorResponse converts HTTP error responses to appropriate Go errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	// Try the backend's {"detail": "..."} and {"error": "..."} shapes
	var detail struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	message := ""
	if err := json.Unmarshal(body, &detail); err == nil {
		if detail.Detail != "" {
			message = detail.Detail
		} else if detail.Error != "" {
			message = detail.Error
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}

	if statusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ErrRateLimited, message)
	}

	return &BackendError{
		Status:  statusCode,
		Message: message,
	}
}

// isRetryable determines if an error should trigger a retry.
func (c *Client) isRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		return backendErr.Status >= 500 && backendErr.Status < 600
	}

	// Context cancellation is never retried
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Transport-level failures get another chance
	return errors.Is(err, ErrUnavailable)
}

// calculateBackoff returns the delay to wait before the next retry.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	// Exponential backoff: 500ms, 1000ms, 2000ms, etc.
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

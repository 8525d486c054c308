// Package client talks to the archive backend over its three REST endpoints:
// /start for the greeting, /query for prompts and /send for file uploads.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/archiveai/pkg/llm"
)

// ErrInvalidResponse is returned when a JSON response lacks a usable
// "response" field.
var ErrInvalidResponse = llm.ErrInvalidResponse

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Body)
}

// Client is the HTTP backend client.
type Client struct {
	config     Config
	logger     *zap.Logger
	httpClient *http.Client
}

// New creates a new Client. An empty BaseURL falls back to DefaultBaseURL.
func New(config Config, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// BaseURL returns the backend origin requests are sent to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Start fetches the greeting.
func (c *Client) Start(ctx context.Context) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/start", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.doJSON(httpReq)
}

// Query sends a prompt and returns the assistant's response text.
func (c *Client) Query(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(llm.QueryRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/query", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending query",
		zap.Int("prompt_len", len(prompt)),
	)

	return c.doJSON(httpReq)
}

// Send uploads a file as the multipart field "file". Success is judged on
// the status code alone; the response body is discarded.
func (c *Client) Send(ctx context.Context, filename string, r io.Reader) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/send", &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	c.logger.Debug("uploading file",
		zap.String("filename", filename),
		zap.Int("body_size", body.Len()),
	)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	if !isSuccess(httpResp.StatusCode) {
		return &StatusError{StatusCode: httpResp.StatusCode, Body: readSnippet(httpResp.Body)}
	}

	_, _ = io.Copy(io.Discard, httpResp.Body)
	return nil
}

// doJSON performs req and extracts the "response" field of the JSON body.
func (c *Client) doJSON(req *http.Request) (string, error) {
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	if !isSuccess(httpResp.StatusCode) {
		return "", &StatusError{StatusCode: httpResp.StatusCode, Body: readSnippet(httpResp.Body)}
	}

	var resp llm.Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.Response == "" {
		return "", ErrInvalidResponse
	}

	c.logger.Debug("received response",
		zap.String("path", req.URL.Path),
		zap.String("content_preview", truncate(resp.Response, 100)),
	)

	return resp.Response, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// readSnippet returns the start of an error body, preferring the backend's
// {"error": "..."} message when there is one.
func readSnippet(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, 4096))

	var errResp llm.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	return truncate(strings.TrimSpace(string(body)), 200)
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

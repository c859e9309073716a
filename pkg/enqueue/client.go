// Package enqueue submits serialized batch payloads to the image-generation
// host's queue API over local HTTP.
package enqueue

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// APIError reports a non-2xx response from the queue API. Any such response
// fails the whole call.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("queue API returned status %d: %s", e.StatusCode, e.Body)
}

// Result is the decoded outcome of a successful enqueue.
type Result struct {
	StatusCode int
	Message    string
	Body       []byte
}

// Client performs synchronous enqueue requests. Responses compressed with
// gzip or deflate are decoded transparently.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client. A nil config uses DefaultConfig; a nil logger
// discards log output.
func NewClient(config *Config, logger *zap.Logger) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

// Enqueue POSTs the payload as JSON and returns the decoded response.
func (c *Client) Enqueue(ctx context.Context, payload interface{}) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize payload: %w", err)
	}

	url := c.config.BaseURL() + c.config.Path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	req.Header.Set("User-Agent", c.config.UserAgent)

	c.logger.Info("Submitting batch payload",
		zap.String("url", url),
		zap.Int("size_bytes", len(body)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("queue API request failed: %w", err)
	}
	defer resp.Body.Close()

	decoded, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Queue API rejected the batch",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", decoded))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(decoded)}
	}

	result := &Result{
		StatusCode: resp.StatusCode,
		Body:       decoded,
		Message:    "Batch enqueued successfully!",
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal(decoded, &parsed); err == nil {
		if message, ok := parsed["message"].(string); ok && message != "" {
			result.Message = message
		}
	}

	c.logger.Info("Batch enqueued", zap.Int("status", resp.StatusCode))
	return result, nil
}

// decodeBody reads the response body, decompressing gzip and deflate
// encodings.
func decodeBody(resp *http.Response) ([]byte, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		reader, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to decode gzip response: %w", err)
		}
		defer reader.Close()
		return io.ReadAll(reader)
	case "deflate":
		// Servers send both zlib-wrapped and raw deflate under this name.
		if reader, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			defer reader.Close()
			return io.ReadAll(reader)
		}
		reader := flate.NewReader(bytes.NewReader(raw))
		defer reader.Close()
		return io.ReadAll(reader)
	default:
		return raw, nil
	}
}

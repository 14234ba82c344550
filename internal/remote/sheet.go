// Package remote talks to the two external collaborators of the sound map:
// the sheet-backed record store and the media upload API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/joeblew999/plat-soundmap/internal/markers"
)

// ErrUnexpectedStatus is wrapped by every non-2xx response error.
var ErrUnexpectedStatus = errors.New("unexpected status")

// ErrNotConfigured is returned when the endpoint URL is empty.
var ErrNotConfigured = errors.New("remote endpoint not configured")

const defaultTimeout = 30 * time.Second

// SheetClient reads and appends records on the sheet endpoint.
type SheetClient struct {
	url        string
	httpClient *http.Client
}

// NewSheetClient creates a client for the endpoint at url.
func NewSheetClient(url string) *SheetClient {
	return &SheetClient{
		url:        url,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *SheetClient) WithHTTPClient(hc *http.Client) *SheetClient {
	c.httpClient = hc
	return c
}

// Fetch returns every stored record. The endpoint answers with either a
// bare array or an object carrying a "markers" array.
func (c *SheetClient) Fetch(ctx context.Context) ([]markers.Record, error) {
	if c.url == "" {
		return nil, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch: %w %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return DecodeRecords(body)
}

// DecodeRecords parses a record list in either accepted shape. Anything
// that is neither yields an empty list.
func DecodeRecords(body []byte) ([]markers.Record, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var list []markers.Record
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("failed to decode records: %w", err)
		}
		return list, nil
	}

	var wrapped struct {
		Markers []markers.Record `json:"markers"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	if wrapped.Markers == nil {
		return []markers.Record{}, nil
	}
	return wrapped.Markers, nil
}

// Append posts one record as JSON.
func (c *SheetClient) Append(ctx context.Context, rec markers.Record) error {
	if c.url == "" {
		return ErrNotConfigured
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("append request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 399 {
		return fmt.Errorf("append: %w %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

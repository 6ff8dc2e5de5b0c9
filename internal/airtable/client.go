// Package airtable is a minimal REST client for the Airtable Web API,
// covering the operations the wine-list pipeline needs: paginated list,
// single-record fetch, batch create and attachment upload.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	defaultBaseURL    = "https://api.airtable.com/v0"
	defaultContentURL = "https://content.airtable.com/v0"

	// MaxPageSize is the server-enforced ceiling on list page sizes.
	MaxPageSize = 100

	// MaxRecordsPerCreate is the server-enforced batch ceiling on record creation.
	MaxRecordsPerCreate = 10
)

// Client talks to a single Airtable base.
type Client struct {
	// BaseURL and ContentURL are overridable for tests.
	BaseURL    string
	ContentURL string

	// HTTPClient is the underlying transport, overridable for tests.
	HTTPClient *http.Client

	apiKey string
	baseID string
}

func NewClient(apiKey, baseID string) *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		ContentURL: defaultContentURL,
		HTTPClient: newHTTPClient(30 * time.Second),
		apiKey:     apiKey,
		baseID:     baseID,
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// doJSON performs a request against the API, marshalling body (when non-nil)
// and unmarshalling the response into out (when non-nil). Non-2xx responses
// are returned as *APIError.
func (c *Client) doJSON(ctx context.Context, method, url string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, resp.Status, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}
	return nil
}

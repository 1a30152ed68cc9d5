// Package client is the Go client for the Social Circles API. It mirrors
// what a browser front end does: credentials travel in an HTTP-only cookie
// held by the cookie jar, never read by this code, and every payload is
// parsed into typed records at the boundary.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
)

// Client wraps HTTP access to a Social Circles server.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New creates a client for the server at baseURL (scheme://host[:port],
// without the /api suffix). The cookie jar plays the role of the browser's
// cookie store.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Jar: jar},
	}, nil
}

// APIError is a failed server response. Detail carries the server's
// human-readable message when it sent one; Status is zero for transport
// failures that never produced a response.
type APIError struct {
	Status int
	Detail string
	cause  error
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("server returned status %d", e.Status)
}

func (e *APIError) Unwrap() error { return e.cause }

// do performs one API round trip. Paths are relative to the /api root.
// Non-2xx responses become *APIError with the server's detail message;
// success bodies are decoded into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &APIError{cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var failure struct {
			Detail string `json:"detail"`
		}
		json.NewDecoder(resp.Body).Decode(&failure)
		return &APIError{Status: resp.StatusCode, Detail: failure.Detail}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

// apiFailure fills in a fallback message on failures the server gave no
// detail for, so callers always have something presentable.
func apiFailure(err error, fallback string) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail == "" {
		apiErr.Detail = fallback
	}
	return err
}

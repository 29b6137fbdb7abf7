// Package upstream is the thin HTTP client for the EHR REST API. It attaches
// the caller's bearer credential to every request and centralizes the base
// address; it deliberately adds no retry, backoff, or caching.
package upstream

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
	"strings"
	"time"
)

// Config holds the client settings supplied by the environment.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client issues JSON request/response cycles against the upstream API.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

// New validates the base URL and constructs a Client.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("upstream base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("upstream base URL %q must be absolute", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:   base,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

// APIError carries a non-2xx upstream response back to the initiating view.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream api: %d", e.Status)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// requestParams groups the pieces of one upstream call.
type requestParams struct {
	Method string
	Path   string
	Query  url.Values
	Token  string
	Body   any
}

// Get issues an authenticated GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, p GetParams, out any) error {
	return c.do(ctx, requestParams{
		Method: http.MethodGet,
		Path:   p.Path,
		Query:  p.Query,
		Token:  p.Token,
	}, out)
}

// GetParams names the inputs of Get.
type GetParams struct {
	Path  string
	Query url.Values
	Token string
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, p MutateParams, out any) error {
	return c.do(ctx, requestParams{
		Method: http.MethodPost,
		Path:   p.Path,
		Token:  p.Token,
		Body:   p.Body,
	}, out)
}

// Patch issues an authenticated partial update with a JSON body.
func (c *Client) Patch(ctx context.Context, p MutateParams, out any) error {
	return c.do(ctx, requestParams{
		Method: http.MethodPatch,
		Path:   p.Path,
		Token:  p.Token,
		Body:   p.Body,
	}, out)
}

// MutateParams names the inputs of Post and Patch.
type MutateParams struct {
	Path  string
	Token string
	Body  any
}

func (c *Client) do(ctx context.Context, p requestParams, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + p.Path
	if p.Query != nil {
		u.RawQuery = p.Query.Encode()
	}

	var body io.Reader
	if p.Body != nil {
		encoded, err := json.Marshal(p.Body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, p.Method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", p.Method, p.Path, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("close upstream response body", "error", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", p.Method, p.Path, err)
	}
	return nil
}

// decodeAPIError extracts the server's structured message when present. The
// API answers either {"error": "..."} or {"message": "..."} depending on the
// failing layer.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}

	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(payload, &parsed) == nil {
		apiErr.Code = parsed.Error
		apiErr.Message = parsed.Message
		if apiErr.Message == "" {
			apiErr.Message = parsed.Error
		}
	}
	return apiErr
}

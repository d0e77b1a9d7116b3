package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/hashicorp/go-retryablehttp"
)

// Client talks to the orchestrator that fronts the confidential executor.
// Transient transport failures are retried with bounded backoff; callers
// own any higher-level retry policy.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewClient creates a client for the orchestrator at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    rc,
	}
}

// BaseURL returns the orchestrator base URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// apiError is returned for non-2xx orchestrator responses. It carries the
// method, path, status, and the detail message when the body has one.
type apiError struct {
	Method string
	Path   string
	Status int
	Detail string
}

func (e *apiError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Status)
}

// StatusCode reports the HTTP status of an orchestrator error response, or
// 0 if err is not an orchestrator response error.
func StatusCode(err error) int {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// doJSON performs a request against the orchestrator and decodes the JSON
// response into out (which may be nil to discard the body).
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", cerrors.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apiError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Detail: readDetail(resp.Body),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}

	return nil
}

// readDetail extracts the orchestrator's error message from a response body.
// The orchestrator reports errors as {"detail": "..."}; anything else is
// returned as a trimmed snippet.
func readDetail(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(body) == 0 {
		return ""
	}

	var detail struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &detail); err == nil {
		if detail.Detail != "" {
			return detail.Detail
		}
		if detail.Message != "" {
			return detail.Message
		}
	}

	return strings.TrimSpace(string(body))
}

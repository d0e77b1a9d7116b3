package orchestrator

import (
	"context"
	"net/http"
	"net/url"
)

// FetchLogs returns the full execution log for a workflow run. The log is
// an append-only sequence on the executor side; each fetch returns the
// complete sequence so far and replaces any previously fetched copy.
func (c *Client) FetchLogs(ctx context.Context, workflowID string) ([]string, error) {
	var resp struct {
		Logs []string `json:"logs"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/logs/"+url.PathEscape(workflowID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Logs, nil
}

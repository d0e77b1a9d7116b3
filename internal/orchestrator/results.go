package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
)

// Result is a single result artifact produced by a workflow run.
type Result struct {
	WorkflowID   string `json:"workflow_id"`
	ResultPath   string `json:"result_path"`
	ExecutedPath string `json:"executed_notebook_path,omitempty"`
	CreatedAt    string `json:"created_at"`
	DownloadURL  string `json:"download_url,omitempty"`
}

// ListResults lists the result artifacts of a completed workflow. Content
// is fetched lazily per artifact via DownloadURL/GetObject.
func (c *Client) ListResults(ctx context.Context, workflowID string) ([]Result, error) {
	var resp struct {
		WorkflowID string   `json:"workflow_id"`
		Results    []Result `json:"results"`
	}
	path := "/workflows/" + url.PathEscape(workflowID) + "/result"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: no results for %s", cerrors.ErrResultFetch, workflowID)
		}
		return nil, err
	}
	return resp.Results, nil
}

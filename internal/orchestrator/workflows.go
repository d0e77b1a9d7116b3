package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
)

// WorkflowInfo is the orchestrator's view of a workflow.
type WorkflowInfo struct {
	WorkflowID    string   `json:"workflow_id"`
	Creator       string   `json:"creator"`
	Collaborators []string `json:"collaborator"`
	WorkloadPath  string   `json:"workload_path"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"created_at"`
}

// WorkflowAck acknowledges a workflow lifecycle action.
type WorkflowAck struct {
	WorkflowID string `json:"workflow_id"`
	Status     string `json:"status"`
}

// ExecutionResult is returned when a run is triggered.
type ExecutionResult struct {
	Status          string   `json:"status"`
	ExecutedPath    string   `json:"executed_notebook,omitempty"`
	ResultJSONPaths []string `json:"result_json_paths,omitempty"`
	ModelPath       string   `json:"model_gcs_path,omitempty"`
}

// CreateWorkflow registers a new workflow with its collaborator set. Each
// collaborator is passed as a repeated query parameter, matching the
// orchestrator's contract.
func (c *Client) CreateWorkflow(ctx context.Context, workflowID, creator string, collaborators []string) (*WorkflowAck, error) {
	q := url.Values{}
	q.Set("workflow_id", workflowID)
	q.Set("creator", creator)
	for _, collaborator := range collaborators {
		q.Add("collaborator", collaborator)
	}

	var ack WorkflowAck
	if err := c.doJSON(ctx, http.MethodPost, "/workflows", q, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// GetWorkflow fetches a workflow's current state.
func (c *Client) GetWorkflow(ctx context.Context, workflowID, requester string) (*WorkflowInfo, error) {
	q := url.Values{}
	q.Set("workflow_id", workflowID)
	q.Set("creator", requester)

	var info WorkflowInfo
	err := c.doJSON(ctx, http.MethodGet, "/workflows/"+url.PathEscape(workflowID), q, &info)
	if err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", cerrors.ErrWorkflowNotFound, workflowID)
		}
		return nil, err
	}
	return &info, nil
}

// ApproveWorkflow records clientID's approval of the workflow.
func (c *Client) ApproveWorkflow(ctx context.Context, workflowID, clientID string) (*WorkflowAck, error) {
	return c.approvalAction(ctx, workflowID, clientID, "approve")
}

// RejectWorkflow records clientID's rejection of the workflow. Rejection is
// terminal on the orchestrator side.
func (c *Client) RejectWorkflow(ctx context.Context, workflowID, clientID string) (*WorkflowAck, error) {
	return c.approvalAction(ctx, workflowID, clientID, "reject")
}

func (c *Client) approvalAction(ctx context.Context, workflowID, clientID, action string) (*WorkflowAck, error) {
	q := url.Values{}
	q.Set("client_id", clientID)

	var ack WorkflowAck
	path := "/workflows/" + url.PathEscape(workflowID) + "/" + action
	if err := c.doJSON(ctx, http.MethodPost, path, q, &ack); err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", cerrors.ErrWorkflowNotFound, workflowID)
		}
		return nil, err
	}
	return &ack, nil
}

// RunWorkflow asks the orchestrator to hand the workflow to the executor.
// The orchestrator refuses with 403 until every collaborator has approved;
// that refusal is surfaced as ErrApprovalNotComplete so callers can render
// the blocking condition specifically.
func (c *Client) RunWorkflow(ctx context.Context, workflowID, requester string, collaborators []string) (*ExecutionResult, error) {
	q := url.Values{}
	q.Set("workflow_id", workflowID)
	q.Set("creator", requester)
	for _, collaborator := range collaborators {
		q.Add("collaborators", collaborator)
	}

	var result ExecutionResult
	path := "/workflows/" + url.PathEscape(workflowID) + "/run"
	if err := c.doJSON(ctx, http.MethodPost, path, q, &result); err != nil {
		switch StatusCode(err) {
		case http.StatusForbidden:
			return nil, fmt.Errorf("%w: %s", cerrors.ErrApprovalNotComplete, workflowID)
		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", cerrors.ErrWorkflowNotFound, workflowID)
		}
		return nil, err
	}
	return &result, nil
}

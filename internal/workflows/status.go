package workflows

import (
	"context"
	"fmt"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/cleanroom-sh/cleanroom/internal/orchestrator"
	"github.com/cleanroom-sh/cleanroom/internal/workflow"
)

// StatusOptions configures a workflow status query.
type StatusOptions struct {
	WorkflowID string

	// Requester defaults to the configured client id.
	Requester string
}

// StatusResult combines the orchestrator's record with the local mirror.
type StatusResult struct {
	// Remote is the orchestrator's authoritative record.
	Remote *orchestrator.WorkflowInfo

	// State is the local view, reconciled to the remote status, when a
	// mirror exists.
	State    workflow.State
	Mirrored bool
}

// Status fetches the workflow's authoritative record and reconciles the
// local mirror against it.
func Status(ctx context.Context, opts StatusOptions) (*StatusResult, error) {
	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	requester := opts.Requester
	if requester == "" {
		requester = sess.config.Client.ID
	}
	if opts.WorkflowID == "" {
		return nil, fmt.Errorf("%w: no workflow id given", cerrors.ErrWorkflowNotFound)
	}

	remote, err := sess.client.GetWorkflow(ctx, opts.WorkflowID, requester)
	if err != nil {
		return nil, err
	}

	result := &StatusResult{Remote: remote}

	state, mirrored, err := loadMirror(opts.WorkflowID)
	if err != nil {
		return nil, err
	}
	if mirrored {
		state = adoptStatus(state, remote.Status)
		if err := saveMirror(state); err != nil {
			return nil, err
		}
		result.State = state
		result.Mirrored = true
	}

	return result, nil
}

// Logs fetches the current execution log once.
func Logs(ctx context.Context, workflowID string) ([]string, error) {
	sess, err := newSession()
	if err != nil {
		return nil, err
	}
	return sess.client.FetchLogs(ctx, workflowID)
}

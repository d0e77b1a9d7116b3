package workflows

import (
	"context"
	"fmt"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/cleanroom-sh/cleanroom/internal/journal"
	"github.com/cleanroom-sh/cleanroom/internal/orchestrator"
	"github.com/cleanroom-sh/cleanroom/internal/workflow"
)

// RunOptions configures a run trigger.
type RunOptions struct {
	WorkflowID string

	// Requester is the party triggering the run. Defaults to the configured
	// client id.
	Requester string

	// Collaborators are the parties whose inputs the executor should
	// expect. Defaults to the local mirror's collaborator set when one
	// exists.
	Collaborators []string
}

// RunResult contains the outcome of triggering a run.
type RunResult struct {
	// Execution is the orchestrator's acknowledgment.
	Execution *orchestrator.ExecutionResult

	// State is the updated local view when a mirror exists.
	State    workflow.State
	Mirrored bool
}

// Run asks the orchestrator to execute the workflow.
//
// Approval completeness is judged by the orchestrator, which sees every
// party's decision; its refusal surfaces as ErrApprovalNotComplete,
// distinct from all other failures so the caller can explain the blocking
// condition. A locally known rejection fails fast with
// ErrWorkflowRejected before any network call.
func Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
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

	state, mirrored, err := loadMirror(opts.WorkflowID)
	if err != nil {
		return nil, err
	}
	if mirrored && state.Status == workflow.StatusRejected {
		return nil, fmt.Errorf("%w: %s", cerrors.ErrWorkflowRejected, opts.WorkflowID)
	}

	collaborators := opts.Collaborators
	if len(collaborators) == 0 && mirrored {
		collaborators = state.Collaborators
	}

	execution, err := sess.client.RunWorkflow(ctx, opts.WorkflowID, requester, collaborators)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Execution: execution, Mirrored: mirrored}
	if mirrored {
		// The orchestrator accepted the run, so every party has approved;
		// catch the mirror up on the approvals it could not observe before
		// recording the transition.
		for clientID := range state.Approvals {
			state, err = workflow.Apply(state, workflow.Approved{ClientID: clientID})
			if err != nil {
				return nil, err
			}
		}
		state, err = workflow.Apply(state, workflow.RunStarted{Requester: requester})
		if err != nil {
			return nil, err
		}
		if err := saveMirror(state); err != nil {
			return nil, err
		}
		result.State = state
	}

	entry := journal.ForClient("run", sess.config)
	entry.WorkflowID = opts.WorkflowID
	entry.Status = string(workflow.StatusRunning)
	journal.Log(entry)

	return result, nil
}

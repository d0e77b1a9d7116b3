package workflows

import (
	"context"
	"fmt"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/cleanroom-sh/cleanroom/internal/journal"
	"github.com/cleanroom-sh/cleanroom/internal/workflow"
)

// ApprovalOptions configures an approve or reject operation.
type ApprovalOptions struct {
	WorkflowID string

	// ClientID is the party acting. Defaults to the configured client id.
	ClientID string
}

// ApprovalResult contains the outcome of an approve or reject operation.
type ApprovalResult struct {
	// State is the updated local view when a mirror exists for this
	// workflow; zero otherwise (Mirrored reports which).
	State    workflow.State
	Mirrored bool

	// RemoteStatus is the status string the orchestrator acknowledged with.
	RemoteStatus string
}

// Approve records this party's approval of the workflow with the
// orchestrator and advances the local mirror. Approving a workflow this
// party already approved is a no-op on both sides.
func Approve(ctx context.Context, opts ApprovalOptions) (*ApprovalResult, error) {
	return approvalAction(ctx, opts, false)
}

// Reject records this party's rejection. Rejection is terminal: the
// workflow can never advance afterwards.
func Reject(ctx context.Context, opts ApprovalOptions) (*ApprovalResult, error) {
	return approvalAction(ctx, opts, true)
}

func approvalAction(ctx context.Context, opts ApprovalOptions, reject bool) (*ApprovalResult, error) {
	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	clientID := opts.ClientID
	if clientID == "" {
		clientID = sess.config.Client.ID
	}
	if opts.WorkflowID == "" {
		return nil, fmt.Errorf("%w: no workflow id given", cerrors.ErrWorkflowNotFound)
	}

	// Refuse locally before contacting the orchestrator when the mirror
	// already knows the action is invalid.
	state, mirrored, err := loadMirror(opts.WorkflowID)
	if err != nil {
		return nil, err
	}
	var next workflow.State
	if mirrored {
		ev := workflow.Event(workflow.Approved{ClientID: clientID})
		if reject {
			ev = workflow.Rejected{ClientID: clientID}
		}
		next, err = workflow.Apply(state, ev)
		if err != nil {
			return nil, err
		}
	}

	var remoteStatus string
	if reject {
		ack, err := sess.client.RejectWorkflow(ctx, opts.WorkflowID, clientID)
		if err != nil {
			return nil, err
		}
		remoteStatus = ack.Status
	} else {
		ack, err := sess.client.ApproveWorkflow(ctx, opts.WorkflowID, clientID)
		if err != nil {
			return nil, err
		}
		remoteStatus = ack.Status
	}

	if mirrored {
		if err := saveMirror(next); err != nil {
			return nil, err
		}
	}

	op := "approve"
	if reject {
		op = "reject"
	}
	entry := journal.ForClient(op, sess.config)
	entry.WorkflowID = opts.WorkflowID
	entry.Status = remoteStatus
	journal.Log(entry)

	result := &ApprovalResult{RemoteStatus: remoteStatus, Mirrored: mirrored}
	if mirrored {
		result.State = next
	}
	return result, nil
}

package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/cleanroom-sh/cleanroom/internal/journal"
	"github.com/cleanroom-sh/cleanroom/internal/workflow"
	"github.com/google/uuid"
)

// CreateOptions configures the create workflow operation.
type CreateOptions struct {
	// WorkflowID identifies the new workflow. Generated when empty.
	WorkflowID string

	// Creator is the party creating the workflow. Defaults to the
	// configured client id.
	Creator string

	// Collaborators are the parties whose approval gates execution. The
	// creator is added if absent; the creator's own approval is still
	// explicit.
	Collaborators []string
}

// CreateResult contains the outcome of a create operation.
type CreateResult struct {
	// State is the initial local view of the workflow.
	State workflow.State

	// RemoteStatus is the status the orchestrator acknowledged with.
	RemoteStatus string
}

// Create registers a new workflow with the orchestrator and seeds the
// local mirror.
//
// Collaborator membership is validated locally before the orchestrator is
// contacted, so a malformed collaborator set never reaches the network.
func Create(ctx context.Context, opts CreateOptions) (*CreateResult, error) {
	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	creator := opts.Creator
	if creator == "" {
		creator = sess.config.Client.ID
	}

	workflowID := opts.WorkflowID
	if workflowID == "" {
		workflowID = uuid.New().String()
	}

	collaborators := append([]string(nil), opts.Collaborators...)
	if !contains(collaborators, creator) {
		collaborators = append([]string{creator}, collaborators...)
	}

	state, err := workflow.New(workflow.Created{
		ID:            workflowID,
		Creator:       creator,
		Collaborators: collaborators,
		At:            time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	ack, err := sess.client.CreateWorkflow(ctx, workflowID, creator, collaborators)
	if err != nil {
		return nil, fmt.Errorf("creating workflow %s: %w", workflowID, err)
	}

	state = adoptStatus(state, ack.Status)
	if err := saveMirror(state); err != nil {
		return nil, err
	}

	entry := journal.ForClient("create", sess.config)
	entry.WorkflowID = workflowID
	entry.Collaborators = collaborators
	entry.Status = ack.Status
	journal.Log(entry)

	return &CreateResult{State: state, RemoteStatus: ack.Status}, nil
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}

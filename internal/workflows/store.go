package workflows

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cleanroom-sh/cleanroom/internal/configs"
	"github.com/cleanroom-sh/cleanroom/internal/workflow"
)

// stateRecord is the TOML shape of a locally mirrored workflow state.
type stateRecord struct {
	ID            string          `toml:"workflow_id"`
	Creator       string          `toml:"creator"`
	Collaborators []string        `toml:"collaborators"`
	Status        string          `toml:"status"`
	CreatedAt     time.Time       `toml:"created_at"`
	Approvals     map[string]bool `toml:"approvals"`
}

func mirrorPath(workflowID string) string {
	return filepath.Join(configs.UserCleanroomSettings.UserDataPath, "workflows", workflowID+".toml")
}

// saveMirror persists this party's view of a workflow.
func saveMirror(state workflow.State) error {
	record := stateRecord{
		ID:            state.ID,
		Creator:       state.Creator,
		Collaborators: state.Collaborators,
		Status:        string(state.Status),
		CreatedAt:     state.CreatedAt,
		Approvals:     state.Approvals,
	}
	if err := configs.SaveTOML(mirrorPath(state.ID), record); err != nil {
		return fmt.Errorf("failed to save workflow mirror: %w", err)
	}
	return nil
}

// loadMirror loads this party's view of a workflow. The second return is
// false when no mirror exists, which is normal for workflows created by
// another party.
func loadMirror(workflowID string) (workflow.State, bool, error) {
	path := mirrorPath(workflowID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return workflow.State{}, false, nil
	}

	var record stateRecord
	if err := configs.LoadTOML(path, &record); err != nil {
		return workflow.State{}, false, fmt.Errorf("failed to load workflow mirror: %w", err)
	}

	return workflow.State{
		ID:            record.ID,
		Creator:       record.Creator,
		Collaborators: record.Collaborators,
		Status:        workflow.Status(record.Status),
		CreatedAt:     record.CreatedAt,
		Approvals:     record.Approvals,
	}, true, nil
}

// adoptStatus overwrites the mirror's status with the orchestrator's. The
// orchestrator record is authoritative; other parties' approvals are not
// visible locally, so the mirror adopts rather than derives statuses it
// learns remotely.
func adoptStatus(state workflow.State, remote string) workflow.State {
	if remote == "" {
		return state
	}
	state.Status = workflow.Status(remote)
	return state
}

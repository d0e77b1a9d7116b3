package cmd

import (
	"errors"
	"fmt"
	"sort"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/cleanroom-sh/cleanroom/internal/ui"
	"github.com/cleanroom-sh/cleanroom/internal/workflow"
	"github.com/cleanroom-sh/cleanroom/internal/workflows"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <workflow-id>",
	Short: "Shows a workflow's status and approval progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting workflow status command")
		spinner, cleanup := startSpinner("Fetching workflow status...", verbose)
		defer cleanup()

		result, err := workflows.Status(cmd.Context(), workflows.StatusOptions{WorkflowID: args[0]})
		if errors.Is(err, cerrors.ErrNotConfigured) {
			finalMessage := color.RedString("✗") + " Cleanroom has not been configured\n" +
				color.CyanString("→") + " Run " + color.YellowString("cleanroom init") + " first"
			spinner.FinalMSG = finalMessage
			return nil
		}
		if errors.Is(err, cerrors.ErrWorkflowNotFound) {
			spinner.FinalMSG = color.RedString("✗") + " Workflow " + color.YellowString(args[0]) + " was not found"
			return nil
		}
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to fetch workflow status: %v", err)
		}

		spinner.FinalMSG = renderStatus(result)
		return nil
	},
}

func renderStatus(result *workflows.StatusResult) string {
	remote := result.Remote

	out := ui.Success.Sprint("✓") + " Workflow " + ui.Highlight.Sprint(remote.WorkflowID) + "\n"
	out += "  Status:   " + statusBadge(workflow.Status(remote.Status)) + "\n"
	out += "  Creator:  " + ui.Highlight.Sprint(remote.Creator) + "\n"
	if remote.CreatedAt != "" {
		out += "  Created:  " + remote.CreatedAt + "\n"
	}

	if result.Mirrored {
		out += "  Approvals observed from this machine:\n"
		ids := make([]string, 0, len(result.State.Approvals))
		for id := range result.State.Approvals {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			mark := ui.Muted.Sprint("pending")
			if result.State.Approvals[id] {
				mark = ui.Success.Sprint("approved")
			}
			out += fmt.Sprintf("    %s  %s\n", ui.Highlight.Sprint(id), mark)
		}
	} else if len(remote.Collaborators) > 0 {
		out += "  Collaborators:\n"
		for _, id := range remote.Collaborators {
			out += "    " + ui.Highlight.Sprint(id) + "\n"
		}
	}

	return out
}

func statusBadge(status workflow.Status) string {
	switch status {
	case workflow.StatusPendingApproval:
		return ui.Warning.Sprint(string(status))
	case workflow.StatusRejected:
		return ui.Error.Sprint(string(status))
	case workflow.StatusApproved, workflow.StatusRunning, workflow.StatusCompleted:
		return ui.Success.Sprint(string(status))
	default:
		return ui.Muted.Sprint(string(status))
	}
}

package cmd

import (
	"errors"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/cleanroom-sh/cleanroom/internal/workflows"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var approveCmd = &cobra.Command{
	Use:   "approve <workflow-id>",
	Short: "Approves a workflow as this party",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting workflow approve command")
		spinner, cleanup := startSpinner("Recording approval...", verbose)
		defer cleanup()

		result, err := workflows.Approve(cmd.Context(), workflows.ApprovalOptions{
			WorkflowID: args[0],
		})
		if errors.Is(err, cerrors.ErrNotConfigured) {
			finalMessage := color.RedString("✗") + " Cleanroom has not been configured\n" +
				color.CyanString("→") + " Run " + color.YellowString("cleanroom init") + " first"
			spinner.FinalMSG = finalMessage
			return nil
		}
		if errors.Is(err, cerrors.ErrWorkflowRejected) {
			spinner.FinalMSG = color.RedString("✗") + " This workflow was rejected and cannot advance"
			return nil
		}
		if errors.Is(err, cerrors.ErrWorkflowNotFound) {
			spinner.FinalMSG = color.RedString("✗") + " Workflow " + color.YellowString(args[0]) + " was not found"
			return nil
		}
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to approve workflow: %v", err)
		}

		finalMessage := color.GreenString("✓") + " Approval recorded for " + color.YellowString(args[0])
		if result.Mirrored {
			if pending := result.State.Pending(); len(pending) > 0 {
				finalMessage += "\n" + color.CyanString("→") + " Approvals still outstanding: " + joinIDs(pending)
			}
		}
		spinner.FinalMSG = finalMessage
		return nil
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <workflow-id>",
	Short: "Rejects a workflow; rejection is final",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting workflow reject command")
		spinner, cleanup := startSpinner("Recording rejection...", verbose)
		defer cleanup()

		_, err := workflows.Reject(cmd.Context(), workflows.ApprovalOptions{
			WorkflowID: args[0],
		})
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
			return Logger.ErrorfAndReturn("Failed to reject workflow: %v", err)
		}

		spinner.FinalMSG = color.GreenString("✓") + " Workflow " + color.YellowString(args[0]) + " rejected. " +
			"No run can be triggered for it."
		return nil
	},
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ", "
		}
		out += color.YellowString(id)
	}
	return out
}

package cmd

import (
	"errors"
	"fmt"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/cleanroom-sh/cleanroom/internal/workflows"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var runFollow bool

var runCmd = &cobra.Command{
	Use:   "run <workflow-id>",
	Short: "Triggers execution once every collaborator has approved",
	Long: `Asks the orchestrator to hand the workflow to the confidential executor.
The run is refused until every collaborator has approved. With --follow the
command then watches execution logs until the run completes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting workflow run command")
		workflowID := args[0]

		spinner, cleanup := startSpinner("Triggering workflow run...", verbose)
		defer cleanup()

		_, err := workflows.Run(cmd.Context(), workflows.RunOptions{WorkflowID: workflowID})
		if errors.Is(err, cerrors.ErrNotConfigured) {
			finalMessage := color.RedString("✗") + " Cleanroom has not been configured\n" +
				color.CyanString("→") + " Run " + color.YellowString("cleanroom init") + " first"
			spinner.FinalMSG = finalMessage
			return nil
		}
		if errors.Is(err, cerrors.ErrApprovalNotComplete) {
			// This refusal gets its own rendering: the workflow is fine, it
			// is just not approved by everyone yet.
			finalMessage := color.RedString("✗") + " Not every collaborator has approved this workflow\n" +
				color.CyanString("→") + " Ask each collaborator to run " +
				color.YellowString("cleanroom workflow approve "+workflowID) + "\n" +
				color.CyanString("→") + " Check progress with " +
				color.YellowString("cleanroom workflow status "+workflowID)
			spinner.FinalMSG = finalMessage
			return nil
		}
		if errors.Is(err, cerrors.ErrWorkflowRejected) {
			spinner.FinalMSG = color.RedString("✗") + " This workflow was rejected and can never run"
			return nil
		}
		if errors.Is(err, cerrors.ErrWorkflowNotFound) {
			spinner.FinalMSG = color.RedString("✗") + " Workflow " + color.YellowString(workflowID) + " was not found"
			return nil
		}
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to run workflow: %v", err)
		}

		if !runFollow {
			finalMessage := color.GreenString("✓") + " Workflow " + color.YellowString(workflowID) + " is running\n" +
				color.CyanString("→") + " Follow progress with " +
				color.YellowString("cleanroom workflow logs "+workflowID+" --follow")
			spinner.FinalMSG = finalMessage
			return nil
		}

		spinner.Suffix = " Workflow running, watching logs..."
		watch, err := watchLogs(cmd, workflowID)
		if err != nil {
			return err
		}

		finalMessage := color.GreenString("✓") + " Workflow " + color.YellowString(workflowID) + " completed\n" +
			color.CyanString("→") + fmt.Sprintf(" %d result artifact(s) available", len(watch.Results)) + "\n" +
			color.CyanString("→") + " Fetch them with " + color.YellowString("cleanroom workflow results "+workflowID)
		spinner.FinalMSG = finalMessage
		return nil
	},
}

// watchLogs follows a running workflow's logs to completion, printing each
// newly observed line.
func watchLogs(cmd *cobra.Command, workflowID string) (*workflows.WatchResult, error) {
	printed := 0
	watch, err := workflows.Watch(cmd.Context(), workflows.WatchOptions{
		WorkflowID: workflowID,
		OnUpdate: func(logs []string) {
			// The fetch replaces the whole log; only print the tail we have
			// not shown yet.
			for ; printed < len(logs); printed++ {
				fmt.Printf("  %s %s\n", color.CyanString("│"), logs[printed])
			}
		},
	})
	if errors.Is(err, cerrors.ErrPollTimeout) {
		return nil, Logger.ErrorfAndReturn("Gave up waiting for completion: %v", err)
	}
	if err != nil {
		return nil, Logger.ErrorfAndReturn("Failed while watching logs: %v", err)
	}
	if watch.ResultsErr != nil {
		Logger.WarnfAlways("Run completed but results could not be listed: %v", watch.ResultsErr)
	}
	return watch, nil
}

func init() {
	runCmd.Flags().BoolVarP(&runFollow, "follow", "f", true, "watch execution logs until the run completes")
}

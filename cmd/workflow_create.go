package cmd

import (
	"errors"
	"strings"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/cleanroom-sh/cleanroom/internal/workflows"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	createCollaborators []string
	createWorkflowID    string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Creates a new workflow gated on collaborator approval",
	Long: `Registers a workflow with the orchestrator. Every collaborator, including
the creator, must approve the workflow explicitly before it can run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting workflow create command")
		spinner, cleanup := startSpinner("Creating workflow...", verbose)
		defer cleanup()

		result, err := workflows.Create(cmd.Context(), workflows.CreateOptions{
			WorkflowID:    createWorkflowID,
			Collaborators: createCollaborators,
		})
		if errors.Is(err, cerrors.ErrNotConfigured) {
			finalMessage := color.RedString("✗") + " Cleanroom has not been configured\n" +
				color.CyanString("→") + " Run " + color.YellowString("cleanroom init") + " first"
			spinner.FinalMSG = finalMessage
			return nil
		}
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to create workflow: %v", err)
		}

		Logger.Infof("Workflow %s created", result.State.ID)
		finalMessage := color.GreenString("✓") + " Workflow " + color.YellowString(result.State.ID) + " created\n" +
			color.CyanString("→") + " Waiting on approval from: " + strings.Join(result.State.Pending(), ", ") + "\n" +
			color.CyanString("→") + " Each collaborator approves with " +
			color.YellowString("cleanroom workflow approve "+result.State.ID)
		spinner.FinalMSG = finalMessage
		return nil
	},
}

func init() {
	createCmd.Flags().StringSliceVarP(&createCollaborators, "collaborators", "c", nil,
		"collaborator client ids (the creator is always included)")
	createCmd.Flags().StringVar(&createWorkflowID, "id", "", "workflow id (generated when omitted)")
}

package cmd

import (
	"errors"
	"fmt"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/cleanroom-sh/cleanroom/internal/workflows"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var logsFollow bool

var logsCmd = &cobra.Command{
	Use:   "logs <workflow-id>",
	Short: "Shows a workflow run's execution logs",
	Long: `Fetches the execution log for a workflow run. With --follow the log is
polled until the executor signals completion.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting workflow logs command")
		workflowID := args[0]

		if logsFollow {
			spinner, cleanup := startSpinner("Watching execution logs...", verbose)
			defer cleanup()

			watch, err := watchLogs(cmd, workflowID)
			if err != nil {
				return err
			}
			spinner.FinalMSG = color.GreenString("✓") + " Workflow " + color.YellowString(workflowID) + " completed" +
				fmt.Sprintf(" with %d result artifact(s)", len(watch.Results))
			return nil
		}

		logs, err := workflows.Logs(cmd.Context(), workflowID)
		if errors.Is(err, cerrors.ErrNotConfigured) {
			Logger.Errorf("Cleanroom has not been configured. Run 'cleanroom init' first.")
			return nil
		}
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to fetch logs: %v", err)
		}

		if len(logs) == 0 {
			fmt.Println(color.CyanString("→") + " No log output yet")
			return nil
		}
		for _, line := range logs {
			fmt.Printf("  %s %s\n", color.CyanString("│"), line)
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "poll logs until the run completes")
}

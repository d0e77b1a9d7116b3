package cmd

import (
	logger "github.com/cleanroom-sh/cleanroom/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	WorkflowCmd = &cobra.Command{
		Use:   "workflow",
		Short: "Manage confidential workflows",
		Long:  `Provides creation, approval, rejection, running, and inspection of multi-party workflows.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing workflow command with verbose=%t, debug=%t", verbose, debug)
		},
	}
)

func init() {
	WorkflowCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	WorkflowCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	WorkflowCmd.AddCommand(createCmd)
	WorkflowCmd.AddCommand(approveCmd)
	WorkflowCmd.AddCommand(rejectCmd)
	WorkflowCmd.AddCommand(runCmd)
	WorkflowCmd.AddCommand(statusCmd)
	WorkflowCmd.AddCommand(logsCmd)
	WorkflowCmd.AddCommand(resultsCmd)
}

// Helper functions for testing

// GetWorkflowCmd returns the WorkflowCmd for testing.
func GetWorkflowCmd() *cobra.Command {
	return WorkflowCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	createCollaborators = nil
	createWorkflowID = ""
	runFollow = false
	logsFollow = false
	resultsDownloadDir = ""
	resultsShowContent = false
	uploadWorkflowID = ""
}

// SetVerbose sets the verbose flag for testing.
func SetVerbose(v bool) {
	verbose = v
}

// SetDebug sets the debug flag for testing.
func SetDebug(d bool) {
	debug = d
}

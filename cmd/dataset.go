package cmd

import (
	logger "github.com/cleanroom-sh/cleanroom/internal/logging"
	"github.com/spf13/cobra"
)

var DatasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Submit encrypted datasets into a workflow",
	Long: `Seals local dataset files against the executor's attested public key and
uploads the ciphertext and wrapped key. Plaintext never leaves this machine.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		Logger = logger.Logger{
			Verbose: verbose,
			Debug:   debug,
		}
		Logger.Debugf("Initializing dataset command with verbose=%t, debug=%t", verbose, debug)
	},
}

func init() {
	DatasetCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	DatasetCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	DatasetCmd.AddCommand(uploadCmd)
}

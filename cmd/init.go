package cmd

import (
	"fmt"

	"github.com/cleanroom-sh/cleanroom/internal/configs"
	logger "github.com/cleanroom-sh/cleanroom/internal/logging"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	initOrchestratorURL string
	initClientID        string
)

var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Configures this machine as a cleanroom party",
	Long: `Writes the client configuration: which orchestrator to talk to and which
party this machine acts as. Polling and transfer bounds get sensible
defaults that can be edited in the config file afterwards.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		Logger = logger.Logger{Verbose: verbose, Debug: debug}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := configs.LoadClientConfig()
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to load existing config: %v", err)
		}

		if initOrchestratorURL != "" {
			config.Client.OrchestratorURL = initOrchestratorURL
		}
		if initClientID != "" {
			config.Client.ID = initClientID
		}

		if config.Client.OrchestratorURL == "" || config.Client.ID == "" {
			finalMessage := color.RedString("✗") + " Both an orchestrator URL and a client id are required\n" +
				color.CyanString("→") + " Run " + color.YellowString("cleanroom init --orchestrator <url> --client-id <id>")
			Logger.Errorf("%s", finalMessage)
			return nil
		}

		if err := configs.SaveClientConfig(config); err != nil {
			return Logger.ErrorfAndReturn("Failed to save config: %v", err)
		}

		Logger.Infof("Configuration saved")
		fmt.Printf("%s Configured as %s against %s\n",
			color.GreenString("✓"), color.CyanString(config.Client.ID),
			color.YellowString(config.Client.OrchestratorURL))
		return nil
	},
}

func init() {
	InitCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	InitCmd.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	InitCmd.Flags().StringVar(&initOrchestratorURL, "orchestrator", "", "orchestrator base URL")
	InitCmd.Flags().StringVar(&initClientID, "client-id", "", "this party's client id, e.g. ClientA")
}

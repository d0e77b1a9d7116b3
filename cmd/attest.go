package cmd

import (
	"errors"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	logger "github.com/cleanroom-sh/cleanroom/internal/logging"
	"github.com/cleanroom-sh/cleanroom/internal/ui"
	"github.com/cleanroom-sh/cleanroom/internal/workflows"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var attestShowKey bool

var AttestCmd = &cobra.Command{
	Use:   "attest",
	Short: "Fetches the executor's public key and attestation token",
	Long: `Fetches the confidential executor's current public key and its attestation
token via the orchestrator. Verify the attestation token and the key
fingerprint out of band before submitting sensitive datasets.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		Logger = logger.Logger{Verbose: verbose, Debug: debug}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		spinner, cleanup := startSpinner("Fetching executor attestation...", verbose)
		defer cleanup()

		result, err := workflows.Attest(cmd.Context())
		if errors.Is(err, cerrors.ErrNotConfigured) {
			finalMessage := color.RedString("✗") + " Cleanroom has not been configured\n" +
				color.CyanString("→") + " Run " + color.YellowString("cleanroom init") + " first"
			spinner.FinalMSG = finalMessage
			return nil
		}
		if errors.Is(err, cerrors.ErrInvalidPublicKey) {
			return Logger.ErrorfAndReturn("Executor published an unusable public key: %v", err)
		}
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to fetch attestation: %v", err)
		}

		finalMessage := ui.Success.Sprint("✓") + " Executor attestation fetched\n" +
			"  RSA key size:    " + ui.Highlight.Sprintf("%d bits", result.KeyBits) + "\n" +
			"  Key fingerprint: " + ui.Highlight.Sprint(result.Fingerprint) + "\n" +
			"  Token:           " + ui.Muted.Sprint(result.AttestationToken) + "\n"
		if attestShowKey {
			finalMessage += result.PublicKeyPEM
		}
		spinner.FinalMSG = finalMessage
		return nil
	},
}

func init() {
	AttestCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	AttestCmd.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	AttestCmd.Flags().BoolVar(&attestShowKey, "show-key", false, "print the full PEM public key")
}

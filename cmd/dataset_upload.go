package cmd

import (
	"errors"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/cleanroom-sh/cleanroom/internal/workflows"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var uploadWorkflowID string

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Encrypts dataset files and uploads them to a workflow",
	Long: `Each file is encrypted with a fresh one-time key against the executor's
attested public key. The encrypted data and the wrapped key are uploaded to
signed storage locations; the plaintext and the raw key never leave this
machine.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting dataset upload command for %d file(s)", len(args))
		spinner, cleanup := startSpinner("Encrypting and uploading datasets...", verbose)
		defer cleanup()

		finalMessage := ""
		failed := 0

		for _, path := range args {
			Logger.Debugf("Submitting dataset %s", path)
			spinner.Suffix = " Encrypting and uploading " + path + "..."

			result, err := workflows.Submit(cmd.Context(), workflows.SubmitOptions{
				WorkflowID: uploadWorkflowID,
				Path:       path,
			})
			if errors.Is(err, cerrors.ErrNotConfigured) {
				finalMessage = color.RedString("✗") + " Cleanroom has not been configured\n" +
					color.CyanString("→") + " Run " + color.YellowString("cleanroom init") + " first"
				spinner.FinalMSG = finalMessage
				return nil
			}
			if err != nil {
				Logger.Errorf("Failed to submit %s: %v", path, err)
				finalMessage += color.RedString("✗") + " " + path + ": " + submitFailureReason(err) + "\n"
				failed++
				continue
			}

			if result.CSVWarning {
				Logger.WarnfAlways("%s does not look like a CSV file; the executor currently consumes CSV datasets", path)
			}

			Logger.Infof("Dataset %s uploaded as %s", path, result.Upload.DatasetID)
			finalMessage += color.GreenString("✓") + " " + path +
				" (" + formatBytes(result.PlaintextBytes) + ") uploaded as dataset " +
				color.YellowString(result.Upload.DatasetID) + "\n"
		}

		if failed == 0 {
			finalMessage += color.CyanString("→") + " All datasets are encrypted end to end; only the executor can read them"
		} else {
			finalMessage += color.RedString("✗") + color.RedString(" %d of %d file(s) failed", failed, len(args))
		}
		spinner.FinalMSG = finalMessage

		if failed > 0 {
			return errors.New("one or more datasets failed to upload")
		}
		return nil
	},
}

// submitFailureReason maps pipeline errors to the short renderings shown
// per failed file.
func submitFailureReason(err error) string {
	switch {
	case errors.Is(err, cerrors.ErrDatasetTooLarge):
		return "file exceeds the configured size limit"
	case errors.Is(err, cerrors.ErrAttestation), errors.Is(err, cerrors.ErrInvalidPublicKey):
		return "executor attestation is unavailable or invalid"
	case errors.Is(err, cerrors.ErrEncryptFailed), errors.Is(err, cerrors.ErrKeyWrapFailed):
		return "encryption failed"
	case errors.Is(err, cerrors.ErrUploadURL):
		return "could not obtain upload locations"
	case errors.Is(err, cerrors.ErrTransfer):
		return "transfer failed: " + err.Error()
	case errors.Is(err, cerrors.ErrNetwork):
		return "orchestrator is unreachable"
	default:
		return err.Error()
	}
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadWorkflowID, "workflow", "w", "", "workflow to submit the datasets to (required)")
	_ = uploadCmd.MarkFlagRequired("workflow")
}

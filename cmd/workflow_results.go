package cmd

import (
	"errors"
	"fmt"
	"strings"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/cleanroom-sh/cleanroom/internal/results"
	"github.com/cleanroom-sh/cleanroom/internal/ui"
	"github.com/cleanroom-sh/cleanroom/internal/workflows"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	resultsDownloadDir string
	resultsShowContent bool
)

var resultsCmd = &cobra.Command{
	Use:   "results <workflow-id>",
	Short: "Lists and fetches a completed workflow's result artifacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting workflow results command")
		spinner, cleanup := startSpinner("Fetching results...", verbose)
		defer cleanup()

		result, err := workflows.Results(cmd.Context(), workflows.ResultsOptions{
			WorkflowID:  args[0],
			LoadContent: resultsShowContent,
			DownloadDir: resultsDownloadDir,
		})
		if errors.Is(err, cerrors.ErrNotConfigured) {
			finalMessage := color.RedString("✗") + " Cleanroom has not been configured\n" +
				color.CyanString("→") + " Run " + color.YellowString("cleanroom init") + " first"
			spinner.FinalMSG = finalMessage
			return nil
		}
		if errors.Is(err, cerrors.ErrResultFetch) {
			spinner.FinalMSG = color.RedString("✗") + " No results found for workflow " + color.YellowString(args[0])
			return nil
		}
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to fetch results: %v", err)
		}

		spinner.FinalMSG = renderResults(args[0], result)
		return nil
	},
}

func renderResults(workflowID string, result *workflows.ResultsResult) string {
	if len(result.Entries) == 0 {
		return ui.Info.Sprint("→") + " No result artifacts for workflow " + ui.Highlight.Sprint(workflowID)
	}

	out := ui.Success.Sprint("✓") + fmt.Sprintf(" %d result artifact(s) for ", len(result.Entries)) +
		ui.Highlight.Sprint(workflowID) + "\n"

	for _, entry := range result.Entries {
		out += "  " + ui.Path.Sprint(entry.Result.ResultPath) + "\n"
		if entry.Result.CreatedAt != "" {
			out += "    created: " + ui.Muted.Sprint(entry.Result.CreatedAt) + "\n"
		}
		if entry.Err != nil {
			out += "    " + ui.Error.Sprint("✗") + " failed to load: " + entry.Err.Error() + "\n"
			continue
		}
		if entry.SavedTo != "" {
			out += "    " + ui.Success.Sprint("✓") + " saved to " + ui.Path.Sprint(entry.SavedTo) + "\n"
		}
		if entry.Content != nil {
			out += renderContent(entry.Content)
		}
	}

	if result.Failed > 0 {
		out += ui.Warning.Sprintf("! %d artifact(s) could not be loaded", result.Failed) + "\n"
	}
	return out
}

func renderContent(content *results.Content) string {
	switch content.Kind {
	case results.KindTabular:
		out := "    " + ui.Muted.Sprintf("tabular, %d row(s)", content.TotalRows) + "\n"
		out += "      " + strings.Join(content.Header, " | ") + "\n"
		for _, row := range content.Rows {
			out += "      " + strings.Join(row, " | ") + "\n"
		}
		if content.TotalRows > len(content.Rows) {
			out += "      " + ui.Muted.Sprintf("… %d more row(s)", content.TotalRows-len(content.Rows)) + "\n"
		}
		return out
	case results.KindJSON:
		return "    " + ui.Muted.Sprintf("json, %s", formatBytes(int64(len(content.Raw)))) + "\n" +
			indentLines(string(content.Raw), "      ")
	case results.KindText:
		return "    " + ui.Muted.Sprintf("text, %s", formatBytes(int64(len(content.Raw)))) + "\n" +
			indentLines(content.Text, "      ")
	default:
		return "    " + ui.Muted.Sprintf("binary, %s", formatBytes(int64(len(content.Raw)))) + "\n"
	}
}

func indentLines(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	out := ""
	for _, line := range lines {
		out += prefix + line + "\n"
	}
	return out
}

// formatBytes renders a byte count in human-readable units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}

func init() {
	resultsCmd.Flags().StringVar(&resultsDownloadDir, "download", "", "directory to save raw artifacts to")
	resultsCmd.Flags().BoolVar(&resultsShowContent, "content", false, "fetch and display artifact content")
}

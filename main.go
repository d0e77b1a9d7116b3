package main

import (
	"fmt"
	"os"

	"github.com/cleanroom-sh/cleanroom/cmd"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cleanroom",
	Short: "Cleanroom - A CLI for confidential multi-party data collaboration.",
	Long: `Cleanroom lets mutually distrusting parties submit datasets into a
confidential-computing workload without exposing plaintext outside their
own control, and coordinates multi-party approval before the workload runs.

Features:
  - Envelope-encrypt datasets against an attested executor key
  - Gate execution on explicit approval from every collaborator
  - Follow execution logs and fetch result artifacts

Usage:
  cleanroom <command> [flags]

Available Commands:
  init       Configure the orchestrator URL and client identity
  attest     Fetch the executor's public key and attestation token
  dataset    Encrypt and upload datasets
  workflow   Create, approve, run, and inspect workflows

Run 'cleanroom help <command>' for more details on a specific command.
`,
	Run: func(cmd *cobra.Command, args []string) {
		banner := figure.NewColorFigure("cleanroom", "alligator2", "green", true)
		banner.Print()
		fmt.Println()
		fmt.Println("Welcome to Cleanroom! Run 'cleanroom --help' to see available commands.")
	},
}

func main() {
	rootCmd.AddCommand(cmd.InitCmd)
	rootCmd.AddCommand(cmd.AttestCmd)
	rootCmd.AddCommand(cmd.DatasetCmd)
	rootCmd.AddCommand(cmd.WorkflowCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

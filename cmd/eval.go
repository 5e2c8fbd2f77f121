package cmd

import (
	"github.com/lehigh-university-libraries/htrbench/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "HTR evaluation tools",
		Long: `Evaluation tools for measuring the accuracy of handwritten text recognition.

Supports transcribing datasets with a provider, scoring predictions against
ground truth, comparing single texts, and browsing the history of past runs.`,
	}

	cmd.AddCommand(evalcmd.NewRunCmd())
	cmd.AddCommand(evalcmd.NewReportCmd())
	cmd.AddCommand(evalcmd.NewCompareCmd())
	cmd.AddCommand(evalcmd.NewInspectCmd())
	cmd.AddCommand(evalcmd.NewHistoryCmd())

	return cmd
}

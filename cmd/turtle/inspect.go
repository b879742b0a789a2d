package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/turtle/internal/cli"
	"github.com/aretw0/turtle/internal/presentation/tui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <program>",
	Short: "Summarize what a program draws",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")
		width, _ := cmd.Flags().GetInt("width")

		return cli.Inspect(cli.InspectOptions{
			ProgramPath: args[0],
			Style:       tui.Style(cmd.OutOrStdout(), plain),
			WordWrap:    width,
			Output:      cmd.OutOrStdout(),
			Config:      cfg,
		})
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Bool("plain", false, "Disable terminal styling")
	inspectCmd.Flags().Int("width", 80, "Word wrap width")
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/turtle/internal/cli"
)

var runCmd = &cobra.Command{
	Use:   "run <program>",
	Short: "Run a drawing program",
	Long: `Runs a YAML or JSON program and prints the drawing as SVG, the command log as
JSON or a markdown summary. With --session the program continues a stored
session instead of starting from a fresh turtle.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		sessionID, _ := cmd.Flags().GetString("session")
		outPath, _ := cmd.Flags().GetString("output")

		out := cmd.OutOrStdout()
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			defer f.Close()
			out = f
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.Run(ctx, cli.RunOptions{
			ProgramPath: args[0],
			Format:      format,
			SessionID:   sessionID,
			Output:      out,
			Config:      cfg,
			Logger:      logger,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("format", "f", cli.FormatSVG, "Output format: svg, json or md")
	runCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	runCmd.Flags().StringP("session", "s", "", "Continue a stored session")
}

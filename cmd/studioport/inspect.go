package main

import (
	"fmt"

	"github.com/harunnryd/studioport/internal/render"

	"github.com/spf13/cobra"
)

var inspectInputs inputPaths

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the reconstructed conversation as a table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd, inspectInputs)
	},
}

func runInspect(cmd *cobra.Command, in inputPaths) error {
	_, res, err := convertInputs(cmd, in)
	if err != nil {
		return err
	}

	table := render.NewTableFormatter()
	fmt.Fprintln(cmd.OutOrStdout(), table.FormatMessages(res))
	fmt.Fprintln(cmd.ErrOrStderr(), table.StatusLine(res))
	return nil
}

func init() {
	addInputFlags(inspectCmd, &inspectInputs)
	rootCmd.AddCommand(inspectCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/meetingmind/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.GetVersionInfo()
		if outputFormat == outputJSON {
			return writeJSON(cmd.OutOrStdout(), info)
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())
		return err
	},
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"havoc/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the havoc version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), version.VersionString())
		return nil
	},
}

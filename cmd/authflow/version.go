package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/authflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of authflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "authflow version %s\n", strings.TrimSpace(authflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

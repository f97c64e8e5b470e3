package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/botflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of botflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "botflow version %s\n", strings.TrimSpace(botflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/aretw0/botflow/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "botflow",
	Short: "botflow answers chat-bot flows with conditional responses",
	Long: `botflow loads a flow of nodes and conditional rules, resolves each user's
variables across durable and session tiers, and replies with the matching
text and keyboard.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	if err := config.SetupFlags(rootCmd.PersistentFlags(), v); err != nil {
		panic(err)
	}
}

// flowPath prefers a positional argument over --flow.
func flowPath(args []string) string {
	if len(args) > 0 && !rootCmd.PersistentFlags().Changed("flow") {
		return args[0]
	}
	return v.GetString("flow")
}

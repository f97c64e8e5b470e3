package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/botflow/internal/cli"
	"github.com/aretw0/botflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var respondCmd = &cobra.Command{
	Use:   "respond <node-id>",
	Short: "Preview the response a node gives a user",
	Long:  `Resolves the node's conditional rules against the user's stored variables and prints the response. Waiting states are recorded as they would be in a conversation.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bot, _, _, err := cli.Open(v)
		if err != nil {
			return err
		}
		defer bot.Close()

		userID, _ := cmd.Flags().GetString("user")
		resp, err := bot.Respond(context.Background(), args[0], userID)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		out, err := tui.RenderResponse(resp, tui.NewRenderer(tui.IsInteractive(os.Stdout)))
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(respondCmd)
	respondCmd.Flags().StringP("user", "u", "local", "User id to resolve variables for")
	respondCmd.Flags().Bool("json", false, "Print the response as JSON")
}

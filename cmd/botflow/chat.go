package main

import (
	"context"
	"os"

	"github.com/aretw0/botflow/internal/cli"
	"github.com/aretw0/botflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat [flow]",
	Short: "Talk to the flow from the terminal",
	Long: `Starts an interactive session as a single user. Lines starting with "/" are
commands, "!" sends button callback data, "@photo:ID" simulates a media upload
and anything else is a text message. Type "quit" to leave.

With --json the session is headless: each input line is a JSON event (or a plain
line as above) and each reply is one JSON object on stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			v.Set("flow", flowPath(args))
		}
		bot, _, _, err := cli.Open(v)
		if err != nil {
			return err
		}
		defer bot.Close()

		userID, _ := cmd.Flags().GetString("user")
		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return cli.RunJSON(sigCtx, bot, userID, os.Stdin, os.Stdout)
		}

		interactive := tui.IsInteractive(os.Stdout)
		if interactive {
			tui.PrintBanner(os.Stdout)
		}

		return cli.RunChat(sigCtx, bot, cli.ChatOptions{
			UserID: userID,
			In:     os.Stdin,
			Out:    os.Stdout,
			Render: tui.NewRenderer(interactive),
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("user", "u", "local", "User id of the session")
	chatCmd.Flags().Bool("json", false, "Exchange JSON-Lines on stdin/stdout instead of the interactive prompt")

	// Chat is the default when no command is provided.
	rootCmd.RunE = chatCmd.RunE
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())
}

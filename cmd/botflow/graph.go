package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/botflow"
	"github.com/aretw0/botflow/internal/cli"
	"github.com/aretw0/botflow/internal/presentation/graph"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [flow]",
	Short: "Export the flow graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the flow. With --user, the user's current node and pending wait are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		if userID == "" {
			loader, err := botflow.OpenLoader(flowPath(args), nil)
			if err != nil {
				return err
			}
			nodes, err := loader.ListNodes()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(nodes, nil))
			return nil
		}

		if len(args) > 0 {
			v.Set("flow", flowPath(args))
		}
		bot, _, _, err := cli.Open(v)
		if err != nil {
			return err
		}
		defer bot.Close()

		nodes, err := bot.Loader.ListNodes()
		if err != nil {
			return err
		}
		overlay := &graph.GraphOverlay{}
		state, err := bot.Sessions.Load(context.Background(), userID)
		switch {
		case err == nil:
			overlay.CurrentNode = state.LastNodeID
			if state.Conditional != nil {
				overlay.WaitingNode = state.Conditional.NextNodeID
			}
		case errors.Is(err, domain.ErrStateNotFound):
		default:
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(nodes, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("user", "u", "", "Highlight this user's position in the flow")
}

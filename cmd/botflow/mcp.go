package main

import (
	"context"
	"fmt"

	"github.com/aretw0/botflow"
	"github.com/aretw0/botflow/internal/cli"
	"github.com/aretw0/botflow/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the botflow engine as an MCP Server so agents can drive conversations as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		bot, _, logger, err := cli.Open(v)
		if err != nil {
			return err
		}
		defer bot.Close()

		srv := mcp.NewServer(bot, bot.Sessions, bot.Loader, botflow.Version, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			logger.Info("Starting MCP Server (stdio)", "flow", bot.Name)
			return srv.ServeStdio()
		case "sse":
			sigCtx := cli.NewSignalContext(context.Background())
			defer sigCtx.Cancel()
			if err := srv.ServeSSE(sigCtx, port); err != nil {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("transport", "t", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().IntP("port", "p", 8081, "Port for the sse transport")
}

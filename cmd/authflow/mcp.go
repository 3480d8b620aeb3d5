package main

import (
	"github.com/aretw0/authflow/internal/cli"
	"github.com/aretw0/authflow/pkg/runner"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts authflow as an MCP Server, exposing the list_automata,
describe_automaton and simulate tools to AI agents.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()

		return app.ServeMCP(signals.Context(), transport, port)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("transport", "t", cli.TransportStdio, "Transport: stdio or sse")
	mcpCmd.Flags().IntP("port", "p", 8080, "Port for the SSE transport")
}

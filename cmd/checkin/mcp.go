package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	mcpadapter "github.com/barfet/wellbeing-check-in-agent/internal/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the check-in agent as an MCP server over stdio.
This allows AI hosts (like Claude Desktop) to start and continue reflection
conversations as tools.`,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := buildApp(cmd.Context(), cmd, false)
		if err != nil {
			fmt.Printf("Error initializing checkin: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		// Ensure logs don't corrupt JSON-RPC on Stdout.
		log.SetOutput(os.Stderr)

		srv := mcpadapter.NewServer(app.orc, Version, mcpadapter.WithLogger(app.logger))
		app.logger.Info("starting checkin MCP server (stdio)")
		if err := srv.ServeStdio(); err != nil {
			app.logger.Error("MCP server execution failed", "err", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs a stdio MCP server acting as the logged-in user.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/vitals/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server acts on behalf of the logged-in user; log in with
"vitals user login" first. It communicates via stdin/stdout.

CLAUDE DESKTOP CONFIGURATION:

  Add this to your Claude Desktop config (claude_desktop_config.json):

  {
    "mcpServers": {
      "vitals": {
        "command": "vitals",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  add_measurement     Record a measurement
  list_measurements   List recent measurements
  dashboard           Latest reading of each kind
  statistics          Averages, minimums and maximums
  compute_bmi         Body mass index from latest weight and height
  list_advice         Search the advice feed
  delete_measurement  Delete a measurement (admin sessions)

AVAILABLE RESOURCES:

  vitals://recent     Ten most recent measurements
  vitals://today      Today's measurements
  vitals://summary    Statistics and BMI`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}
		server, err := mcp.NewServer(svc, sess, version)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		logger.Info("mcp server started", "user", sess.Name)
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

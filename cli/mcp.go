// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/schoolcrm/handlers"
)

// MCPCommand serves CRM tools, resources, and prompts over stdio.
func MCPCommand(opts handlers.Options) error {
	log.Info("starting CRM MCP server", "version", opts.Version)

	server := handlers.NewServer(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return server.Run(ctx, &mcp.StdioTransport{})
}

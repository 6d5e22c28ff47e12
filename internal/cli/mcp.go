package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	pdbmcp "github.com/valter-silva-au/procurement-dashboard/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the pdb MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pdb MCP server on stdio",
	Long: `Start the pdb MCP server on stdio transport.

The server exposes the dashboard as MCP tools that AI assistants can call:
get_timeline, list_schedule_tasks, get_schedule_summary, list_vendors,
list_materials, get_workflow_progress, get_metrics, get_alerts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ScheduleMgr == nil || Procurement == nil {
			return fmt.Errorf("schedule and procurement services not initialized")
		}

		srv := pdbmcp.NewServer(ScheduleMgr, Procurement, Zoom, MetricsCalc, AlertEngine, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

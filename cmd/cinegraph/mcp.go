package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/aretw0/cinegraph/internal/cli"
	"github.com/aretw0/cinegraph/internal/logging"
	"github.com/aretw0/cinegraph/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts cinegraph as an MCP server over stdio.
Agents get the send_message, resume_review and get_thread tools; a review
suspends the thread until resume_review is called.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, dir := loadConfig(cmd)
		debug, _ := cmd.Flags().GetBool("debug")

		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		logger := logging.New(level)
		log.SetOutput(os.Stderr)

		engine, backend, err := cli.NewEngine(context.Background(), cfg, cli.EngineOptions{
			Dir:    dir,
			Debug:  debug,
			Logger: logger,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer backend.Close()

		logger.Info("Starting cinegraph MCP server (stdio)", "store", backend.Kind)
		if err := mcp.NewServer(engine, logger).ServeStdio(); err != nil {
			logger.Error("MCP server execution failed", "err", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

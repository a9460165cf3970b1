// Package main implements the jupyter-mcp server executable.
// It provides a Model Context Protocol server that manages a Jupyter
// notebook and its kernel for external applications.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/nbserve/jupyter-mcp/internal/config"
	"github.com/nbserve/jupyter-mcp/internal/logging"
	"github.com/nbserve/jupyter-mcp/internal/server"
	"github.com/nbserve/jupyter-mcp/pkg/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jupyter-mcp",
	Short: "Jupyter notebook MCP server",
	Long: `jupyter-mcp provides a Model Context Protocol server that manages a
Jupyter notebook and its kernel: opening, editing, executing, and
inspecting cells through MCP tool invocations.`,
	RunE: runServer,
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information and exit")

	rootCmd.AddCommand(callCmd)
}

// runServer starts the MCP server on the stdio transport.
func runServer(cmd *cobra.Command, args []string) error {
	if versionFlag, _ := cmd.Flags().GetBool("version"); versionFlag {
		fmt.Println(version.GetVersion().String())
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.NewLogger(cfg.Logging.Level)

	srv, err := server.New(&server.Options{
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		logger.Error("Failed to create server", slog.Any("error", err))
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		logger.Error("Failed to start server", slog.Any("error", err))
		return fmt.Errorf("failed to start server: %w", err)
	}

	transport := mcp.NewStdioTransport()

	logger.Info("Jupyter MCP server starting",
		slog.String("version", version.GetVersion().Version),
		slog.String("transport", fmt.Sprintf("%T", transport)),
		slog.Int("tools_available", srv.GetRegistry().Count()))

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx, transport)
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Server error", slog.Any("error", err))
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping server", slog.Any("error", err))
	}

	logger.Info("Jupyter MCP server stopped")
	return nil
}
